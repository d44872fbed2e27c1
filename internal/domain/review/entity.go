package review

import (
	"time"
)

// Review 书评实体
// 设计说明:
// 1. 创建时BookID与ReviewerID都必须解析到已存在的实体,
//    任一引用无法解析则创建整体失败(不会产生半创建的书评)
// 2. 创建之后引用在本服务层面保持非空(遗留数据的悬空引用
//    由读取路径的哨兵回退兜底)
// 3. IsApproved默认false,审核通过是幂等操作
type Review struct {
	ID         uint
	Text       string    // 书评内容(必填,≤1000字符)
	Date       time.Time // 创建时间戳(插入时打点,UTC)
	BookID     uint      // 被评图书ID(必填引用)
	ReviewerID uint      // 评论人ID(必填引用)
	IsApproved bool      // 审核状态,默认false
	Version    int       // 乐观锁版本号
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReview 创建新书评(工厂方法)
// 创建时间戳在此处打点(插入时),不接受调用方传入
func NewReview(text string, bookID, reviewerID uint) *Review {
	now := time.Now().UTC()
	return &Review{
		Text:       text,
		Date:       now,
		BookID:     bookID,
		ReviewerID: reviewerID,
		IsApproved: false,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// UpdateText 替换书评内容(Update操作唯一可变的字段)
func (r *Review) UpdateText(text string) {
	r.Text = text
	r.UpdatedAt = time.Now().UTC()
}

// Approve 审核通过(幂等:已通过时无状态变化)
func (r *Review) Approve() {
	if r.IsApproved {
		return
	}
	r.IsApproved = true
	r.UpdatedAt = time.Now().UTC()
}

// Detail 书评读取模型:书评 + 解析后的图书名与评论人名
type Detail struct {
	ID           uint      `json:"id"`
	Text         string    `json:"text"`
	Date         time.Time `json:"date"`
	BookID       uint      `json:"book_id"`
	ReviewerID   uint      `json:"reviewer_id"`
	BookName     string    `json:"book_name"`     // 引用无法解析时为"Unknown"
	ReviewerName string    `json:"reviewer_name"` // 引用无法解析时为"Unknown"
	IsApproved   bool      `json:"is_approved"`
}
