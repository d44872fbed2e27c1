package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/reviewclub/internal/domain/book"
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 书评摘要通过显式JOIN预加载评论人名称,避免N+1查询
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	// 1. 领域实体 → GORM模型
	model := &BookModel{
		Name:             b.Name,
		Author:           b.Author,
		CategoryID:       b.CategoryID,
		PicturePath:      b.PicturePath,
		HasPicture:       b.HasPicture,
		IsBookOfTheMonth: b.IsBookOfTheMonth,
		Version:          b.Version,
	}

	// 2. 插入数据库
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 3. 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书(乐观锁)
// UPDATE带WHERE version=?条件,RowsAffected==0时区分不存在与版本冲突
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	db := r.getDB(ctx)
	result := db.Model(&BookModel{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]interface{}{
			"name":                 b.Name,
			"author":               b.Author,
			"category_id":          b.CategoryID,
			"picture_path":         b.PicturePath,
			"has_picture":          b.HasPicture,
			"is_book_of_the_month": b.IsBookOfTheMonth,
			"version":              b.Version + 1,
			"updated_at":           b.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	if result.RowsAffected == 0 {
		var model BookModel
		if err := db.First(&model, b.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrConflict
	}

	b.Version++
	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// List 查询全部图书(插入顺序)
func (r *bookRepository) List(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := r.getDB(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}

	return books, nil
}

// FindCategory 解析分类引用
func (r *bookRepository) FindCategory(ctx context.Context, id uint) (*book.CategoryRef, error) {
	var model CategoryModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}

	return &book.CategoryRef{ID: model.ID, Name: model.Name}, nil
}

// CountReviews 统计引用该图书的书评数量
func (r *bookRepository) CountReviews(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Where("book_id = ?", bookID).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计图书书评数量失败")
	}

	return count, nil
}

// reviewSummaryRow JOIN查询的扫描目标
type reviewSummaryRow struct {
	ID           uint
	Text         string
	Date         time.Time
	ReviewerName string
}

// ListReviewSummaries 查询该图书的书评摘要(含评论人名称)
// 教学要点:
// 1. LEFT JOIN一次取回评论人名称,避免N+1查询
// 2. 评论人已被删除时name为空串,"Unknown"回退由服务层负责
// 3. 使用Table绕过了GORM的软删除自动过滤,WHERE需显式补上
func (r *bookRepository) ListReviewSummaries(ctx context.Context, bookID uint) ([]book.ReviewSummary, error) {
	var rows []reviewSummaryRow
	err := r.getDB(ctx).Table("reviews").
		Select("reviews.id, reviews.text, reviews.date, COALESCE(reviewers.name, '') AS reviewer_name").
		Joins("LEFT JOIN reviewers ON reviewers.id = reviews.reviewer_id AND reviewers.deleted_at IS NULL").
		Where("reviews.book_id = ? AND reviews.deleted_at IS NULL", bookID).
		Order("reviews.id ASC").
		Scan(&rows).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书书评失败")
	}

	summaries := make([]book.ReviewSummary, len(rows))
	for i, row := range rows {
		summaries[i] = book.ReviewSummary{
			ID:           row.ID,
			Text:         row.Text,
			Date:         row.Date,
			ReviewerName: row.ReviewerName,
		}
	}

	return summaries, nil
}

// DeleteReviewsByBook 删除引用该图书的全部书评(删除图书时的级联第一步)
// 必须使用getDB(ctx)参与领域服务开启的事务
func (r *bookRepository) DeleteReviewsByBook(ctx context.Context, bookID uint) (int64, error) {
	result := r.getDB(ctx).
		Where("book_id = ?", bookID).
		Delete(&ReviewModel{})

	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "删除图书书评失败")
	}

	return result.RowsAffected, nil
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:               model.ID,
		Name:             model.Name,
		Author:           model.Author,
		CategoryID:       model.CategoryID,
		PicturePath:      model.PicturePath,
		HasPicture:       model.HasPicture,
		IsBookOfTheMonth: model.IsBookOfTheMonth,
		Version:          model.Version,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *bookRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
