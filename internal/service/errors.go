package service

import (
	"errors"
	"fmt"
)

// 业务层错误。Handler 层负责把这些错误转换成用户可见的闪现消息和重定向，
// 任何错误都不会以堆栈或内部细节的形式暴露给客户端。
var (
	ErrUserNotFound     = errors.New("user does not exist")
	ErrEntryNotFound    = errors.New("entry does not exist")
	ErrUploadNotFound   = errors.New("file does not exist")
	ErrWrongPassword    = errors.New("wrong password")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrPasswordRequired = errors.New("password must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPostingDisabled  = errors.New("posting is disabled for this account")
	ErrInvalidFile      = errors.New("invalid filename or file type")
	ErrInvalidTheme     = errors.New("unknown theme")
	ErrInternalServer   = errors.New("internal server error")
)

// NotAuthorizedError 表示当前会话没有以目标用户身份登录。
// 携带目标用户名以便生成提示消息。
type NotAuthorizedError struct {
	Name string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("must be logged in as %s", e.Name)
}
