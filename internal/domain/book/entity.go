package book

import (
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. CategoryID是必填引用,创建时必须解析到已存在的分类
// 2. PicturePath保存封面资产的存储键("{id}{ext}"),为空表示尚无封面
// 3. Version用于乐观锁,并发修改时由存储层检测冲突
// 4. ReviewCount等派生值从不落库,读取时实时计算
type Book struct {
	ID               uint
	Name             string // 书名(必填,≤50字符)
	Author           string // 作者(必填,≤50字符)
	CategoryID       uint   // 所属分类ID(必填引用)
	PicturePath      string // 封面资产存储键(可选)
	HasPicture       bool   // 是否已有封面
	IsBookOfTheMonth bool   // 本月之书标记
	Version          int    // 乐观锁版本号
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBook 创建新图书(工厂方法)
// 封面初始为空:封面只能通过UploadBookImage设置
func NewBook(name, author string, categoryID uint, isBookOfTheMonth bool) *Book {
	now := time.Now().UTC()
	return &Book{
		Name:             name,
		Author:           author,
		CategoryID:       categoryID,
		PicturePath:      "",
		HasPicture:       false,
		IsBookOfTheMonth: isBookOfTheMonth,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// UpdateInfo 全量替换可变字段(领域行为)
// 不支持部分更新:每次Update都必须提供全部字段的新值
func (b *Book) UpdateInfo(name, author string, categoryID uint, isBookOfTheMonth bool) {
	b.Name = name
	b.Author = author
	b.CategoryID = categoryID
	b.IsBookOfTheMonth = isBookOfTheMonth
	b.UpdatedAt = time.Now().UTC()
}

// SetPicture 更新封面指针
func (b *Book) SetPicture(path string) {
	b.PicturePath = path
	b.HasPicture = true
	b.UpdatedAt = time.Now().UTC()
}

// CategoryRef 图书视角下的分类引用
type CategoryRef struct {
	ID   uint
	Name string
}

// ReviewSummary 图书详情中的书评摘要(打平的读取模型)
type ReviewSummary struct {
	ID           uint      `json:"id"`
	Text         string    `json:"text"`
	Date         time.Time `json:"date"`
	ReviewerName string    `json:"reviewer_name"` // 引用无法解析时为"Unknown"
}

// WithReviews 图书读取模型:图书 + 分类名 + 书评数量与摘要
type WithReviews struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Author           string          `json:"author"`
	CategoryID       uint            `json:"category_id"`
	CategoryName     string          `json:"category_name"` // 引用无法解析时为"Unknown"
	PicturePath      string          `json:"picture_path,omitempty"`
	HasPicture       bool            `json:"has_picture"`
	IsBookOfTheMonth bool            `json:"is_book_of_the_month"`
	ReviewCount      int64           `json:"review_count"` // 派生值,等于引用该书的书评行数
	Reviews          []ReviewSummary `json:"reviews"`
}
