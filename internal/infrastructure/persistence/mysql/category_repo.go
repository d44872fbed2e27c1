package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/reviewclub/internal/domain/category"
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// categoryRepository 分类仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/category/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. Update带版本条件实现乐观锁,区分"不存在"与"版本冲突"
// 4. 级联删除原语(DeleteReviewsByCategory等)只做单步删除,
//    编排与事务边界在领域服务
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &categoryRepository{db: db}
}

// Create 创建分类
func (r *categoryRepository) Create(ctx context.Context, c *category.Category) error {
	// 1. 领域实体 → GORM模型
	model := &CategoryModel{
		Name:    c.Name,
		Version: c.Version,
	}

	// 2. 插入数据库
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建分类失败")
	}

	// 3. 回填自增ID
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找分类
func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*category.Category, error) {
	var model CategoryModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询分类失败")
	}

	return toCategoryEntity(&model), nil
}

// Update 更新分类(乐观锁)
// 教学要点:
// 1. UPDATE带WHERE version=?条件,同时version+1
// 2. RowsAffected==0时再查一次,区分"记录不存在"与"版本冲突"
func (r *categoryRepository) Update(ctx context.Context, c *category.Category) error {
	db := r.getDB(ctx)
	result := db.Model(&CategoryModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"version":    c.Version + 1,
			"updated_at": c.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新分类失败")
	}

	if result.RowsAffected == 0 {
		// 可能是分类不存在,或者版本已被其他请求推进
		var model CategoryModel
		if err := db.First(&model, c.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return category.ErrCategoryNotFound
			}
			return apperrors.Wrap(err, "查询分类失败")
		}
		return category.ErrConflict
	}

	c.Version++
	return nil
}

// Delete 删除分类(软删除)
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&CategoryModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除分类失败")
	}

	if result.RowsAffected == 0 {
		return category.ErrCategoryNotFound
	}

	return nil
}

// List 查询全部分类(插入顺序)
func (r *categoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	var models []CategoryModel
	if err := r.getDB(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}

	categories := make([]*category.Category, len(models))
	for i := range models {
		categories[i] = toCategoryEntity(&models[i])
	}

	return categories, nil
}

// CountBooks 统计引用该分类的图书数量
func (r *categoryRepository) CountBooks(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&BookModel{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error

	if err != nil {
		return 0, apperrors.Wrap(err, "统计分类图书数量失败")
	}

	return count, nil
}

// ListBooksByCategory 查询引用该分类的全部图书
func (r *categoryRepository) ListBooksByCategory(ctx context.Context, categoryID uint) ([]category.BookRef, error) {
	var models []BookModel
	err := r.getDB(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询分类图书失败")
	}

	refs := make([]category.BookRef, len(models))
	for i, m := range models {
		refs[i] = category.BookRef{
			ID:     m.ID,
			Name:   m.Name,
			Author: m.Author,
		}
	}

	return refs, nil
}

// DeleteReviewsByCategory 删除该分类下所有图书的书评(级联第一步)
// 教学要点:子查询找出该分类的图书ID,软删除这些图书的全部书评
// 必须使用getDB(ctx)参与领域服务开启的事务
func (r *categoryRepository) DeleteReviewsByCategory(ctx context.Context, categoryID uint) (int64, error) {
	db := r.getDB(ctx)
	bookIDs := db.Model(&BookModel{}).Select("id").Where("category_id = ?", categoryID)

	result := db.Where("book_id IN (?)", bookIDs).Delete(&ReviewModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "删除分类书评失败")
	}

	return result.RowsAffected, nil
}

// DeleteBooksByCategory 删除引用该分类的全部图书(级联第二步)
func (r *categoryRepository) DeleteBooksByCategory(ctx context.Context, categoryID uint) (int64, error) {
	result := r.getDB(ctx).
		Where("category_id = ?", categoryID).
		Delete(&BookModel{})

	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "删除分类图书失败")
	}

	return result.RowsAffected, nil
}

// toCategoryEntity GORM模型 → 领域实体
func toCategoryEntity(model *CategoryModel) *category.Category {
	return &category.Category{
		ID:        model.ID,
		Name:      model.Name,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *categoryRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
