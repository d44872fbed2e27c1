package reviewer

import (
	"time"
)

// Reviewer 评论人实体
// 设计说明:
// 1. 姓名、邮箱必填,邮箱需满足格式约束(与其他必填字段同样声明式校验)
// 2. Version用于乐观锁,并发修改时由存储层检测冲突
// 3. ReviewedBookCount是读取时计算的派生值,从不落库
type Reviewer struct {
	ID        uint
	Name      string // 姓名(必填)
	Email     string // 邮箱(必填,合法邮箱格式)
	Version   int    // 乐观锁版本号
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReviewer 创建新评论人(工厂方法)
func NewReviewer(name, email string) *Reviewer {
	now := time.Now().UTC()
	return &Reviewer{
		Name:      name,
		Email:     email,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateInfo 全量替换姓名与邮箱(领域行为)
func (r *Reviewer) UpdateInfo(name, email string) {
	r.Name = name
	r.Email = email
	r.UpdatedAt = time.Now().UTC()
}

// WithCount 评论人读取模型:评论人 + 其书评数量
type WithCount struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	ReviewedBookCount int64  `json:"reviewed_book_count"` // 派生值,等于引用该评论人的书评行数
}

// ReviewItem 评论人详情中打平的书评条目
type ReviewItem struct {
	ID       uint      `json:"id"`
	BookName string    `json:"book_name"` // 引用无法解析时为"Unknown"
	Text     string    `json:"text"`
	Date     time.Time `json:"date"`
}

// Detail 评论人详情读取模型:评论人 + 其全部书评
type Detail struct {
	ID      uint         `json:"id"`
	Name    string       `json:"name"`
	Email   string       `json:"email"`
	Reviews []ReviewItem `json:"reviews"`
}
