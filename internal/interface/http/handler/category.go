package handler

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/reviewclub/internal/domain/category"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewclub/internal/interface/http/dto"
	"github.com/xiebiao/reviewclub/pkg/metrics"
	"github.com/xiebiao/reviewclub/pkg/mq"
	"github.com/xiebiao/reviewclub/pkg/response"
	"github.com/xiebiao/reviewclub/pkg/result"
)

// CategoryHandler 分类HTTP处理器
// 设计说明:
// 1. CRUD直接调用领域服务,不经过应用层用例(没有跨服务编排的需要)
// 2. 删除分类会级联删书,图书缓存整体失效
// cache允许为nil(无Redis部署)
type CategoryHandler struct {
	service   category.Service
	cache     *redis.BookCacheStore
	publisher mq.EventPublisher
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(service category.Service, cache *redis.BookCacheStore, publisher mq.EventPublisher) *CategoryHandler {
	return &CategoryHandler{
		service:   service,
		cache:     cache,
		publisher: publisher,
	}
}

// ListCategories 查询全部分类
// @Summary      分类列表
// @Description  返回全部分类及各自的图书数量
// @Tags         分类
// @Produce      json
// @Success      200 {object} response.Response{data=[]category.WithBookCount}
// @Router       /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategoriesWithBookCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, categories)
}

// GetCategory 查询单个分类
// @Summary      分类详情
// @Tags         分类
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=category.WithBookCount}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid category id")
		return
	}

	cat, err := h.service.FindCategory(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cat)
}

// GetCategoryBooks 查询分类下的图书
// @Summary      分类图书列表
// @Description  分类不存在时返回空列表,不报错
// @Tags         分类
// @Produce      json
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=[]category.BookRef}
// @Router       /api/v1/categories/{id}/books [get]
func (h *CategoryHandler) GetCategoryBooks(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid category id")
		return
	}

	books, err := h.service.GetBooksByCategory(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, books)
}

// AddCategory 创建分类
// @Summary      创建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCategoryRequest true "分类信息"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "校验失败"
// @Router       /api/v1/categories [post]
func (h *CategoryHandler) AddCategory(c *gin.Context) {
	var req dto.AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	r := h.service.AddCategory(c.Request.Context(), req.Name)
	response.FromResult(c, r)
}

// UpdateCategory 更新分类
// @Summary      更新分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Param        request body dto.UpdateCategoryRequest true "分类信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid category id")
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	r := h.service.UpdateCategory(c.Request.Context(), uri.ID, req.Name)
	response.FromResult(c, r)
}

// DeleteCategory 删除分类(级联删除其图书与书评)
// @Summary      删除分类
// @Description  同一事务内删除分类、其全部图书、这些图书的全部书评
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid category id")
		return
	}

	r := h.service.DeleteCategory(c.Request.Context(), uri.ID)

	if r.Status == result.StatusDeleted {
		metrics.IncCounter(metrics.CategoriesCascadeDeletedTotal)
		h.invalidateBookCache(c.Request.Context())
		h.publishEvent(c.Request.Context(), mq.EventCategoryDeleted, gin.H{"category_id": uri.ID})
	}

	response.FromResult(c, r)
}

// invalidateBookCache 级联删除影响面不可精确预知,图书缓存整体失效
func (h *CategoryHandler) invalidateBookCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(ctx); err != nil {
		log.Printf("删除图书缓存失败: %v", err)
	}
}

// publishEvent 发布领域事件,失败只记录日志不影响响应
func (h *CategoryHandler) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("发布事件失败 type=%s: %v", eventType, err)
	}
}
