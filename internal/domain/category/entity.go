package category

import (
	"time"
)

// Category 图书分类实体
// 设计说明:
// 1. 分类是Book的被引用方,每本书必须归属一个存在的分类(引用完整性)
// 2. Version用于乐观锁,并发修改时由存储层检测冲突
// 3. BookCount是读取时计算的派生值,从不落库
type Category struct {
	ID        uint
	Name      string // 分类名称(必填,≤25字符)
	Version   int    // 乐观锁版本号
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory 创建新分类(工厂方法)
func NewCategory(name string) *Category {
	now := time.Now().UTC()
	return &Category{
		Name:      name,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rename 修改分类名称(领域行为)
func (c *Category) Rename(name string) {
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
}

// WithBookCount 分类读取模型:分类 + 引用它的图书数量
type WithBookCount struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	BookCount int64  `json:"book_count"` // 派生值,等于引用该分类的图书行数
}

// BookRef 分类视角下的图书引用(GetBooksByCategory返回项)
type BookRef struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
}
