package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/reviewclub/internal/domain/review"
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// reviewRepository 书评仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/review/repository.go定义的接口
// 2. 读取模型(Detail)通过双LEFT JOIN一次取回图书名与评论人名
// 3. BookExists/ReviewerExists供服务层在持久化前做引用校验
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建书评仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建书评
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		Text:       rv.Text,
		Date:       rv.Date,
		BookID:     rv.BookID,
		ReviewerID: rv.ReviewerID,
		IsApproved: rv.IsApproved,
		Version:    rv.Version,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建书评失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找书评
func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "查询书评失败")
	}

	return toReviewEntity(&model), nil
}

// Update 更新书评(乐观锁)
// 可变字段只有内容与审核状态,引用字段创建后不再改动
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	db := r.getDB(ctx)
	result := db.Model(&ReviewModel{}).
		Where("id = ? AND version = ?", rv.ID, rv.Version).
		Updates(map[string]interface{}{
			"text":        rv.Text,
			"is_approved": rv.IsApproved,
			"version":     rv.Version + 1,
			"updated_at":  rv.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新书评失败")
	}

	if result.RowsAffected == 0 {
		var model ReviewModel
		if err := db.First(&model, rv.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return review.ErrReviewNotFound
			}
			return apperrors.Wrap(err, "查询书评失败")
		}
		return review.ErrConflict
	}

	rv.Version++
	return nil
}

// Delete 删除书评(软删除)
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&ReviewModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除书评失败")
	}

	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}

	return nil
}

// reviewDetailRow JOIN查询的扫描目标
type reviewDetailRow struct {
	ID           uint
	Text         string
	Date         time.Time
	BookID       uint
	ReviewerID   uint
	BookName     string
	ReviewerName string
	IsApproved   bool
}

// detailQuery 构建书评读取模型的基础查询
// 教学要点:
// 1. 双LEFT JOIN一次取回图书名与评论人名,避免N+1查询
// 2. 引用已失效(遗留数据)时名称为空串,"Unknown"回退由服务层负责
// 3. 使用Table绕过了GORM的软删除自动过滤,WHERE需显式补上
func (r *reviewRepository) detailQuery(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Table("reviews").
		Select("reviews.id, reviews.text, reviews.date, reviews.book_id, reviews.reviewer_id, " +
			"COALESCE(books.name, '') AS book_name, " +
			"COALESCE(reviewers.name, '') AS reviewer_name, " +
			"reviews.is_approved").
		Joins("LEFT JOIN books ON books.id = reviews.book_id AND books.deleted_at IS NULL").
		Joins("LEFT JOIN reviewers ON reviewers.id = reviews.reviewer_id AND reviewers.deleted_at IS NULL").
		Where("reviews.deleted_at IS NULL")
}

// List 查询全部书评,附带解析后的图书名与评论人名
func (r *reviewRepository) List(ctx context.Context) ([]*review.Detail, error) {
	var rows []reviewDetailRow
	err := r.detailQuery(ctx).Order("reviews.id ASC").Scan(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询书评列表失败")
	}

	return toReviewDetails(rows), nil
}

// ListByBook 查询某本图书的全部书评
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Detail, error) {
	var rows []reviewDetailRow
	err := r.detailQuery(ctx).
		Where("reviews.book_id = ?", bookID).
		Order("reviews.id ASC").
		Scan(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书书评失败")
	}

	return toReviewDetails(rows), nil
}

// FindDetail 根据ID查询单条书评的读取模型
func (r *reviewRepository) FindDetail(ctx context.Context, id uint) (*review.Detail, error) {
	var rows []reviewDetailRow
	err := r.detailQuery(ctx).Where("reviews.id = ?", id).Scan(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询书评失败")
	}

	if len(rows) == 0 {
		return nil, review.ErrReviewNotFound
	}

	return toReviewDetails(rows)[0], nil
}

// BookExists 图书存在性检查
func (r *reviewRepository) BookExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&BookModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询图书失败")
	}
	return count > 0, nil
}

// ReviewerExists 评论人存在性检查
func (r *reviewRepository) ReviewerExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReviewerModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询评论人失败")
	}
	return count > 0, nil
}

// toReviewEntity GORM模型 → 领域实体
func toReviewEntity(model *ReviewModel) *review.Review {
	return &review.Review{
		ID:         model.ID,
		Text:       model.Text,
		Date:       model.Date,
		BookID:     model.BookID,
		ReviewerID: model.ReviewerID,
		IsApproved: model.IsApproved,
		Version:    model.Version,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// toReviewDetails 扫描行 → 读取模型
func toReviewDetails(rows []reviewDetailRow) []*review.Detail {
	details := make([]*review.Detail, len(rows))
	for i, row := range rows {
		details[i] = &review.Detail{
			ID:           row.ID,
			Text:         row.Text,
			Date:         row.Date,
			BookID:       row.BookID,
			ReviewerID:   row.ReviewerID,
			BookName:     row.BookName,
			ReviewerName: row.ReviewerName,
			IsApproved:   row.IsApproved,
		}
	}
	return details
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *reviewRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
