package review

import (
	"context"
)

// Repository 书评仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 图书/评论人的存在性检查通过存储层完成,
//    引用校验保持在本服务边界内(服务之间不直接互调)
// 3. 读取模型的名称解析走显式的预加载查询,不做隐式延迟加载
type Repository interface {
	// Create 创建书评
	Create(ctx context.Context, r *Review) error

	// FindByID 根据ID查找书评
	FindByID(ctx context.Context, id uint) (*Review, error)

	// Update 更新书评(乐观锁:版本不一致返回ErrConflict)
	Update(ctx context.Context, r *Review) error

	// Delete 删除书评(书评没有依赖方,无级联)
	Delete(ctx context.Context, id uint) error

	// List 查询全部书评,附带解析后的图书名与评论人名
	// 引用无法解析时名称为空串,哨兵回退由服务层负责
	List(ctx context.Context) ([]*Detail, error)

	// ListByBook 查询某本图书的全部书评(同样的富化)
	ListByBook(ctx context.Context, bookID uint) ([]*Detail, error)

	// FindDetail 根据ID查询单条书评的读取模型
	FindDetail(ctx context.Context, id uint) (*Detail, error)

	// BookExists 图书存在性检查(AddReview的引用校验)
	BookExists(ctx context.Context, id uint) (bool, error)

	// ReviewerExists 评论人存在性检查(AddReview的引用校验)
	ReviewerExists(ctx context.Context, id uint) (bool, error)
}
