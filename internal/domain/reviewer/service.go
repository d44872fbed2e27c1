package reviewer

import (
	"context"
	"errors"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
	"github.com/xiebiao/reviewclub/pkg/result"
	"github.com/xiebiao/reviewclub/pkg/validator"
)

// UnknownName 引用无法解析时的哨兵名称
const UnknownName = "Unknown"

// Service 评论人领域服务接口
// 设计说明:
// 1. 封装评论人CRUD、书评数量聚合与嵌套书评列表
// 2. 删除评论人时级联删除其书评(策略决策:孤儿书评会违反
//    创建时"两个引用都必须解析"的约束,因此不允许存在)
// 3. 写操作统一返回*result.Result,错误不会越过领域边界
type Service interface {
	// GetAllReviewers 查询全部评论人及各自的书评数量
	GetAllReviewers(ctx context.Context) ([]*WithCount, error)

	// GetReviewerByID 查询单个评论人及其全部书评(打平列表)
	GetReviewerByID(ctx context.Context, id uint) (*Detail, error)

	// AddReviewer 创建评论人
	// 业务规则:姓名、邮箱必填,邮箱需满足格式约束
	AddReviewer(ctx context.Context, name, email string) *result.Result

	// UpdateReviewer 全量替换姓名与邮箱
	UpdateReviewer(ctx context.Context, id uint, name, email string) *result.Result

	// DeleteReviewer 删除评论人及其全部书评(事务内显式级联)
	DeleteReviewer(ctx context.Context, id uint) *result.Result
}

type service struct {
	repo Repository
	tx   Transactor
}

// NewService 创建评论人领域服务
func NewService(repo Repository, tx Transactor) Service {
	return &service{repo: repo, tx: tx}
}

// GetAllReviewers 查询全部评论人及书评数量
func (s *service) GetAllReviewers(ctx context.Context) ([]*WithCount, error) {
	reviewers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*WithCount, 0, len(reviewers))
	for _, r := range reviewers {
		count, err := s.repo.CountReviews(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		list = append(list, &WithCount{
			ID:                r.ID,
			Name:              r.Name,
			Email:             r.Email,
			ReviewedBookCount: count,
		})
	}

	return list, nil
}

// GetReviewerByID 查询单个评论人及其书评
func (s *service) GetReviewerByID(ctx context.Context, id uint) (*Detail, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListReviewItems(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].BookName == "" {
			items[i].BookName = UnknownName
		}
	}

	return &Detail{
		ID:      r.ID,
		Name:    r.Name,
		Email:   r.Email,
		Reviews: items,
	}, nil
}

// AddReviewer 创建评论人
func (s *service) AddReviewer(ctx context.Context, name, email string) *result.Result {
	// 1. 字段校验(校验失败时不触碰存储)
	v := validator.New()
	v.Required("Reviewer name", name)
	v.Required("Reviewer email", email)
	v.Email("Reviewer email", email)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 持久化
	r := NewReviewer(name, email)
	if err := s.repo.Create(ctx, r); err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Created(r.ID)
}

// UpdateReviewer 全量替换姓名与邮箱
func (s *service) UpdateReviewer(ctx context.Context, id uint, name, email string) *result.Result {
	// 1. 字段校验
	v := validator.New()
	v.Required("Reviewer name", name)
	v.Required("Reviewer email", email)
	v.Email("Reviewer email", email)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 查询目标
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Reviewer not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 3. 持久化
	r.UpdateInfo(name, email)
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrConflict) {
			return result.Error("An error occurred updating the reviewer")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Updated()
}

// DeleteReviewer 删除评论人及其书评(显式级联)
func (s *service) DeleteReviewer(ctx context.Context, id uint) *result.Result {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Reviewer not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 事务内编排:先删该评论人的书评,再删评论人
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.DeleteReviewsByReviewer(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Deleted()
}
