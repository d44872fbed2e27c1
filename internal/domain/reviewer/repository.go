package reviewer

import (
	"context"
)

// Repository 评论人仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 书评数量聚合与嵌套书评列表通过显式的存储调用完成
// 3. 删除评论人时其书评的级联删除由领域服务在事务中编排
type Repository interface {
	// Create 创建评论人
	Create(ctx context.Context, r *Reviewer) error

	// FindByID 根据ID查找评论人
	FindByID(ctx context.Context, id uint) (*Reviewer, error)

	// Update 更新评论人(乐观锁:版本不一致返回ErrConflict)
	Update(ctx context.Context, r *Reviewer) error

	// Delete 删除评论人(不处理级联,级联由领域服务在事务中编排)
	Delete(ctx context.Context, id uint) error

	// List 查询全部评论人(插入顺序)
	List(ctx context.Context) ([]*Reviewer, error)

	// CountReviews 统计引用该评论人的书评数量(派生值,读取时计算)
	CountReviews(ctx context.Context, reviewerID uint) (int64, error)

	// ListReviewItems 查询该评论人的全部书评(含图书名,已预加载)
	// 图书引用无法解析时BookName为空串,哨兵回退由服务层负责
	ListReviewItems(ctx context.Context, reviewerID uint) ([]ReviewItem, error)

	// DeleteReviewsByReviewer 删除引用该评论人的全部书评(级联第一步)
	DeleteReviewsByReviewer(ctx context.Context, reviewerID uint) (int64, error)
}

// Transactor 事务执行接口(由基础设施层的TxManager实现)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
