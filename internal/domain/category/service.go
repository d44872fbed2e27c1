package category

import (
	"context"
	"errors"
	"log"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
	"github.com/xiebiao/reviewclub/pkg/result"
	"github.com/xiebiao/reviewclub/pkg/validator"
)

// Service 分类领域服务接口
// 设计说明:
// 1. 封装分类CRUD、图书数量聚合与级联删除的业务规则
// 2. 写操作统一返回*result.Result,错误不会越过领域边界
// 3. 服务无状态,只持有存储协作方的引用
type Service interface {
	// ListCategoriesWithBookCount 查询全部分类及各自的图书数量
	ListCategoriesWithBookCount(ctx context.Context) ([]*WithBookCount, error)

	// FindCategory 根据ID查询分类及图书数量
	FindCategory(ctx context.Context, id uint) (*WithBookCount, error)

	// AddCategory 创建分类
	// 业务规则:名称必填(非空白)且≤25字符
	AddCategory(ctx context.Context, name string) *result.Result

	// UpdateCategory 更新分类名称(全量替换)
	UpdateCategory(ctx context.Context, id uint, name string) *result.Result

	// DeleteCategory 删除分类,并级联删除其全部图书及这些图书的书评
	// 级联在单个事务中显式编排:先删书评,再删图书,最后删分类
	DeleteCategory(ctx context.Context, id uint) *result.Result

	// GetBooksByCategory 查询引用该分类的全部图书
	// 没有匹配时返回空集合而不是错误(调用方另行调用FindCategory区分"分类不存在")
	GetBooksByCategory(ctx context.Context, id uint) ([]BookRef, error)
}

type service struct {
	repo Repository
	tx   Transactor
}

// NewService 创建分类领域服务
func NewService(repo Repository, tx Transactor) Service {
	return &service{repo: repo, tx: tx}
}

// ListCategoriesWithBookCount 查询全部分类及图书数量
func (s *service) ListCategoriesWithBookCount(ctx context.Context) ([]*WithBookCount, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*WithBookCount, 0, len(categories))
	for _, c := range categories {
		count, err := s.repo.CountBooks(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		list = append(list, &WithBookCount{
			ID:        c.ID,
			Name:      c.Name,
			BookCount: count,
		})
	}

	return list, nil
}

// FindCategory 根据ID查询分类及图书数量
func (s *service) FindCategory(ctx context.Context, id uint) (*WithBookCount, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBooks(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	return &WithBookCount{
		ID:        c.ID,
		Name:      c.Name,
		BookCount: count,
	}, nil
}

// AddCategory 创建分类
func (s *service) AddCategory(ctx context.Context, name string) *result.Result {
	// 1. 字段校验(校验失败时不触碰存储)
	v := validator.New()
	v.Required("Category name", name)
	v.MaxLen("Category name", name, 25)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 持久化
	c := NewCategory(name)
	if err := s.repo.Create(ctx, c); err != nil {
		return result.Error("There was an error adding the category.", apperrors.GetAppError(err).Message)
	}

	return result.Created(c.ID)
}

// UpdateCategory 更新分类名称
func (s *service) UpdateCategory(ctx context.Context, id uint, name string) *result.Result {
	// 1. 字段校验
	v := validator.New()
	v.Required("Category name", name)
	v.MaxLen("Category name", name, 25)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 查询目标
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Category not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 3. 持久化(乐观锁冲突转换为Error结果)
	c.Rename(name)
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, ErrConflict) {
			return result.Error("An error occurred updating the category.")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Updated()
}

// DeleteCategory 删除分类(显式级联)
// 设计说明:级联策略写在代码里而不是藏在外键配置里——
// 删除顺序:成员图书的书评 → 成员图书 → 分类本身,整体在一个事务内
func (s *service) DeleteCategory(ctx context.Context, id uint) *result.Result {
	// 1. 确认目标存在
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Category cannot be deleted because it does not exist.")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 2. 事务内编排级联删除
	var booksRemoved int64
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.DeleteReviewsByCategory(ctx, id); err != nil {
			return err
		}
		n, err := s.repo.DeleteBooksByCategory(ctx, id)
		if err != nil {
			return err
		}
		booksRemoved = n
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return result.Error("Error encountered while deleting the category: " + apperrors.GetAppError(err).Message)
	}

	if booksRemoved > 0 {
		log.Printf("category %d deleted with %d dependent books", id, booksRemoved)
	}

	return result.Deleted()
}

// GetBooksByCategory 查询引用该分类的全部图书
func (s *service) GetBooksByCategory(ctx context.Context, id uint) ([]BookRef, error) {
	return s.repo.ListBooksByCategory(ctx, id)
}
