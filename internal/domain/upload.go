package domain

// Upload 表示一个用户上传的文件。
// 数据库记录是文件存在性的权威依据；文件字节存放在磁盘存储目录中。
type Upload struct {
	ID       uint   `gorm:"primaryKey"`                                          // 上传记录唯一标识符
	UserID   string `gorm:"type:varchar(80);index;not null"`                     // 所属用户名 (逻辑外键，指向 User.Name)
	Filename string `gorm:"type:varchar(160);uniqueIndex:idx_filename;not null"` // 存储文件名，上传时已解决冲突，全局唯一
	Filetype string `gorm:"type:varchar(16)"`                                    // 文件扩展名 (小写)
}
