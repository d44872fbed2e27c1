package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/reviewclub/internal/domain/reviewer"
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// reviewerRepository 评论人仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/reviewer/repository.go定义的接口
// 2. 书评条目通过LEFT JOIN预加载图书名,避免N+1查询
// 3. DeleteReviewsByReviewer供删除评论人时的级联编排使用
type reviewerRepository struct {
	db *gorm.DB
}

// NewReviewerRepository 创建评论人仓储
func NewReviewerRepository(db *gorm.DB) reviewer.Repository {
	return &reviewerRepository{db: db}
}

// Create 创建评论人
func (r *reviewerRepository) Create(ctx context.Context, rv *reviewer.Reviewer) error {
	model := &ReviewerModel{
		Name:    rv.Name,
		Email:   rv.Email,
		Version: rv.Version,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建评论人失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找评论人
func (r *reviewerRepository) FindByID(ctx context.Context, id uint) (*reviewer.Reviewer, error) {
	var model ReviewerModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reviewer.ErrReviewerNotFound
		}
		return nil, apperrors.Wrap(err, "查询评论人失败")
	}

	return toReviewerEntity(&model), nil
}

// Update 更新评论人(乐观锁)
func (r *reviewerRepository) Update(ctx context.Context, rv *reviewer.Reviewer) error {
	db := r.getDB(ctx)
	result := db.Model(&ReviewerModel{}).
		Where("id = ? AND version = ?", rv.ID, rv.Version).
		Updates(map[string]interface{}{
			"name":       rv.Name,
			"email":      rv.Email,
			"version":    rv.Version + 1,
			"updated_at": rv.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评论人失败")
	}

	if result.RowsAffected == 0 {
		var model ReviewerModel
		if err := db.First(&model, rv.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return reviewer.ErrReviewerNotFound
			}
			return apperrors.Wrap(err, "查询评论人失败")
		}
		return reviewer.ErrConflict
	}

	rv.Version++
	return nil
}

// Delete 删除评论人(软删除)
func (r *reviewerRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&ReviewerModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论人失败")
	}

	if result.RowsAffected == 0 {
		return reviewer.ErrReviewerNotFound
	}

	return nil
}

// List 查询全部评论人(插入顺序)
func (r *reviewerRepository) List(ctx context.Context) ([]*reviewer.Reviewer, error) {
	var models []ReviewerModel
	if err := r.getDB(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询评论人列表失败")
	}

	reviewers := make([]*reviewer.Reviewer, len(models))
	for i := range models {
		reviewers[i] = toReviewerEntity(&models[i])
	}

	return reviewers, nil
}

// CountReviews 统计引用该评论人的书评数量
func (r *reviewerRepository) CountReviews(ctx context.Context, reviewerID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Where("reviewer_id = ?", reviewerID).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计评论人书评数量失败")
	}

	return count, nil
}

// reviewItemRow JOIN查询的扫描目标
type reviewItemRow struct {
	ID       uint
	BookName string
	Text     string
	Date     time.Time
}

// ListReviewItems 查询该评论人的全部书评(含图书名)
// 图书已被删除时book_name为空串,"Unknown"回退由服务层负责
func (r *reviewerRepository) ListReviewItems(ctx context.Context, reviewerID uint) ([]reviewer.ReviewItem, error) {
	var rows []reviewItemRow
	err := r.getDB(ctx).Table("reviews").
		Select("reviews.id, COALESCE(books.name, '') AS book_name, reviews.text, reviews.date").
		Joins("LEFT JOIN books ON books.id = reviews.book_id AND books.deleted_at IS NULL").
		Where("reviews.reviewer_id = ? AND reviews.deleted_at IS NULL", reviewerID).
		Order("reviews.id ASC").
		Scan(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询评论人书评失败")
	}

	items := make([]reviewer.ReviewItem, len(rows))
	for i, row := range rows {
		items[i] = reviewer.ReviewItem{
			ID:       row.ID,
			BookName: row.BookName,
			Text:     row.Text,
			Date:     row.Date,
		}
	}

	return items, nil
}

// DeleteReviewsByReviewer 删除引用该评论人的全部书评(级联第一步)
// 必须使用getDB(ctx)参与领域服务开启的事务
func (r *reviewerRepository) DeleteReviewsByReviewer(ctx context.Context, reviewerID uint) (int64, error) {
	result := r.getDB(ctx).
		Where("reviewer_id = ?", reviewerID).
		Delete(&ReviewModel{})

	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "删除评论人书评失败")
	}

	return result.RowsAffected, nil
}

// toReviewerEntity GORM模型 → 领域实体
func toReviewerEntity(model *ReviewerModel) *reviewer.Reviewer {
	return &reviewer.Reviewer{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *reviewerRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
