package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 跨实体的读取(分类名解析、书评摘要)通过显式的存储调用完成,
//    而不是隐式的延迟加载——I/O点保持可见、可测试
// 3. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, b *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Update 更新图书(乐观锁:版本不一致返回ErrConflict)
	Update(ctx context.Context, b *Book) error

	// Delete 删除图书(不处理级联,级联由领域服务在事务中编排)
	Delete(ctx context.Context, id uint) error

	// List 查询全部图书(插入顺序,无分页)
	List(ctx context.Context) ([]*Book, error)

	// FindCategory 解析分类引用(不存在返回ErrCategoryNotFound)
	FindCategory(ctx context.Context, id uint) (*CategoryRef, error)

	// CountReviews 统计引用该图书的书评数量(派生值,读取时计算)
	CountReviews(ctx context.Context, bookID uint) (int64, error)

	// ListReviewSummaries 查询该图书的书评摘要(含评论人名称,已预加载)
	// 评论人引用无法解析时ReviewerName为空串,哨兵回退由服务层负责
	ListReviewSummaries(ctx context.Context, bookID uint) ([]ReviewSummary, error)

	// DeleteReviewsByBook 删除引用该图书的全部书评(删除图书时的级联第一步)
	DeleteReviewsByBook(ctx context.Context, bookID uint) (int64, error)
}

// Transactor 事务执行接口(由基础设施层的TxManager实现)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ImageStore 封面资产存储契约
// 设计说明:
// 1. 按"图书ID+扩展名"的键存取字节,本地磁盘实现用于生产,
//    内存实现用于测试
// 2. Delete对不存在的键不报错(契约约定)
type ImageStore interface {
	// Exists 判断键是否存在
	Exists(key string) (bool, error)

	// Write 写入字节(覆盖同名键)
	Write(key string, data []byte) error

	// Delete 删除键(键不存在不是错误)
	Delete(key string) error
}
