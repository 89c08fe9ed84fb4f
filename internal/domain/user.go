// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// User 表示博客系统中的一个用户账号。
type User struct {
	ID             uint      `gorm:"primaryKey"`                                     // 用户唯一标识符 (主键)
	Name           string    `gorm:"type:varchar(80);uniqueIndex:idx_name;not null"` // 用户名，唯一标识一个用户
	PasswordHash   string    `gorm:"type:varchar(160);not null"`                     // bcrypt 哈希后的密码，绝不存储明文
	CreationDate   time.Time `gorm:"not null"`                                       // 账号创建时间，创建后不再修改
	PostingEnabled bool      `gorm:"not null;default:true"`                          // 是否允许发帖/上传 (可变)
	Theme          string    `gorm:"type:varchar(80);not null"`                      // 当前显示主题 (可变)
}
