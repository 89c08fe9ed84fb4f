package domain

// Entry 表示一篇博客文章。
// 文章由所属用户创建，只能被所属用户删除，创建后内容不再修改。
type Entry struct {
	ID     uint   `gorm:"primaryKey"`                      // 文章唯一标识符 (由存储层分配)
	UserID string `gorm:"type:varchar(80);index;not null"` // 所属用户名 (逻辑外键，指向 User.Name)
	Title  string `gorm:"type:varchar(32)"`                // 文章标题
	Text   string `gorm:"type:text"`                       // 文章正文，存储前已经过 urlify 处理
}
