// Package tasks 定义后台任务的类型常量和载荷构造。
package tasks

import "encoding/json"

// 任务类型常量
const (
	// TypeUploadReap 孤儿文件清理任务：删除失去数据库记录的存储文件
	TypeUploadReap = "upload:reap_orphans"
)

// UploadReapPayload 定义孤儿文件清理任务的数据结构。
// 周期任务无需携带参数，保留结构体以便将来扩展 (例如限定扫描前缀)。
type UploadReapPayload struct{}

// NewUploadReapTask 构造孤儿文件清理任务的载荷。
func NewUploadReapTask() ([]byte, error) {
	return json.Marshal(UploadReapPayload{})
}
