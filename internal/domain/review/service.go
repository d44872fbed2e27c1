package review

import (
	"context"
	"errors"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
	"github.com/xiebiao/reviewclub/pkg/result"
	"github.com/xiebiao/reviewclub/pkg/validator"
)

// UnknownName 引用无法解析时的哨兵名称
const UnknownName = "Unknown"

// Service 书评领域服务接口
// 设计说明:
// 1. 封装书评CRUD、跨实体引用校验与审核流程
// 2. 两个引用检查都在任何持久化之前完成,不会产生半创建的书评
// 3. 写操作统一返回*result.Result,错误不会越过领域边界
type Service interface {
	// ListAllReviews 查询全部书评(附带图书名与评论人名)
	ListAllReviews(ctx context.Context) ([]*Detail, error)

	// ListReviewsForBook 查询某本图书的全部书评
	ListReviewsForBook(ctx context.Context, bookID uint) ([]*Detail, error)

	// GetReviewByID 根据ID查询单条书评
	GetReviewByID(ctx context.Context, id uint) (*Detail, error)

	// AddReview 创建书评
	// 业务规则:
	// - 内容必填且≤1000字符
	// - BookID与ReviewerID都必须解析,两个检查都在持久化之前执行
	// - 创建时间戳在插入时打点
	AddReview(ctx context.Context, text string, bookID, reviewerID int) *result.Result

	// UpdateReview 替换书评内容(其余字段不可通过Update修改)
	UpdateReview(ctx context.Context, id uint, newText string) *result.Result

	// DeleteReview 删除书评(无级联:书评没有依赖方)
	DeleteReview(ctx context.Context, id uint) *result.Result

	// ApproveReview 审核通过
	// 幂等:对已通过的书评再次调用成功且状态不变
	ApproveReview(ctx context.Context, id uint) *result.Result
}

type service struct {
	repo Repository
}

// NewService 创建书评领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ListAllReviews 查询全部书评
func (s *service) ListAllReviews(ctx context.Context) ([]*Detail, error) {
	details, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	applySentinels(details)
	return details, nil
}

// ListReviewsForBook 查询某本图书的全部书评
func (s *service) ListReviewsForBook(ctx context.Context, bookID uint) ([]*Detail, error) {
	details, err := s.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	applySentinels(details)
	return details, nil
}

// GetReviewByID 根据ID查询单条书评
func (s *service) GetReviewByID(ctx context.Context, id uint) (*Detail, error) {
	d, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	applySentinels([]*Detail{d})
	return d, nil
}

// AddReview 创建书评
func (s *service) AddReview(ctx context.Context, text string, bookID, reviewerID int) *result.Result {
	// 1. 字段校验(校验失败时不触碰存储)
	v := validator.New()
	v.Required("Review text", text)
	v.MaxLen("Review text", text, 1000)
	v.PositiveID("Book id", bookID)
	v.PositiveID("Reviewer id", reviewerID)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 引用校验:两个检查都在任何写入之前完成
	bookOK, err := s.repo.BookExists(ctx, uint(bookID))
	if err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}
	if !bookOK {
		return result.Error("Book not found")
	}

	reviewerOK, err := s.repo.ReviewerExists(ctx, uint(reviewerID))
	if err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}
	if !reviewerOK {
		return result.Error("Reviewer not found")
	}

	// 3. 持久化(时间戳在插入时打点,审核状态默认false)
	r := NewReview(text, uint(bookID), uint(reviewerID))
	if err := s.repo.Create(ctx, r); err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Created(r.ID)
}

// UpdateReview 替换书评内容
func (s *service) UpdateReview(ctx context.Context, id uint, newText string) *result.Result {
	// 1. 字段校验
	v := validator.New()
	v.Required("Review text", newText)
	v.MaxLen("Review text", newText, 1000)
	if !v.Valid() {
		return result.Error(v.Violations()...)
	}

	// 2. 查询目标
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Review not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 3. 持久化(只有内容可变)
	r.UpdateText(newText)
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrConflict) {
			return result.Error("An error occurred updating the review")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Updated()
}

// DeleteReview 删除书评
func (s *service) DeleteReview(ctx context.Context, id uint) *result.Result {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Review not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Deleted()
}

// ApproveReview 审核通过(幂等)
func (s *service) ApproveReview(ctx context.Context, id uint) *result.Result {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return result.NotFound("Review not found")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	// 已通过:无操作,直接成功
	if r.IsApproved {
		return result.Success()
	}

	r.Approve()
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, ErrConflict) {
			return result.Error("An error occurred approving the review")
		}
		return result.Error(apperrors.GetAppError(err).Message)
	}

	return result.Success()
}

// applySentinels 对无法解析的引用应用哨兵名称
func applySentinels(details []*Detail) {
	for _, d := range details {
		if d.BookName == "" {
			d.BookName = UnknownName
		}
		if d.ReviewerName == "" {
			d.ReviewerName = UnknownName
		}
	}
}
