package category

import (
	"context"
)

// Repository 分类仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 接口覆盖分类服务对存储协作方的全部需求,
//    包括跨实体的计数与级联删除原语(引用检查保持在本服务边界内)
// 3. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建分类
	Create(ctx context.Context, c *Category) error

	// FindByID 根据ID查找分类
	FindByID(ctx context.Context, id uint) (*Category, error)

	// Update 更新分类(乐观锁:版本不一致返回ErrConflict)
	Update(ctx context.Context, c *Category) error

	// Delete 删除分类(不处理级联,级联由领域服务在事务中编排)
	Delete(ctx context.Context, id uint) error

	// List 查询全部分类(插入顺序)
	List(ctx context.Context) ([]*Category, error)

	// CountBooks 统计引用该分类的图书数量(派生值,读取时计算)
	CountBooks(ctx context.Context, categoryID uint) (int64, error)

	// ListBooksByCategory 查询引用该分类的全部图书
	ListBooksByCategory(ctx context.Context, categoryID uint) ([]BookRef, error)

	// DeleteReviewsByCategory 删除该分类下所有图书的书评(级联第一步)
	// 返回删除的行数
	DeleteReviewsByCategory(ctx context.Context, categoryID uint) (int64, error)

	// DeleteBooksByCategory 删除引用该分类的全部图书(级联第二步)
	// 返回删除的行数
	DeleteBooksByCategory(ctx context.Context, categoryID uint) (int64, error)
}

// Transactor 事务执行接口
// fn返回error时回滚,返回nil时提交;由基础设施层的TxManager实现
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
