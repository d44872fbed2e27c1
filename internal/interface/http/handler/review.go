package handler

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/reviewclub/internal/domain/review"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewclub/internal/interface/http/dto"
	"github.com/xiebiao/reviewclub/pkg/metrics"
	"github.com/xiebiao/reviewclub/pkg/mq"
	"github.com/xiebiao/reviewclub/pkg/response"
	"github.com/xiebiao/reviewclub/pkg/result"
)

// ReviewHandler 书评HTTP处理器
// 书评写操作会改变图书详情里的书评摘要,相关图书缓存随之失效
type ReviewHandler struct {
	service   review.Service
	cache     *redis.BookCacheStore
	publisher mq.EventPublisher
}

// NewReviewHandler 创建书评处理器
func NewReviewHandler(service review.Service, cache *redis.BookCacheStore, publisher mq.EventPublisher) *ReviewHandler {
	return &ReviewHandler{
		service:   service,
		cache:     cache,
		publisher: publisher,
	}
}

// ListReviews 查询全部书评
// @Summary      书评列表
// @Description  返回全部书评,含解析后的图书名与评论人名
// @Tags         书评
// @Produce      json
// @Success      200 {object} response.Response{data=[]review.Detail}
// @Router       /api/v1/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.service.ListAllReviews(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, reviews)
}

// ListBookReviews 查询某本图书的书评
// @Summary      图书书评列表
// @Tags         书评
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]review.Detail}
// @Router       /api/v1/books/{id}/reviews [get]
func (h *ReviewHandler) ListBookReviews(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid book id")
		return
	}

	reviews, err := h.service.ListReviewsForBook(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, reviews)
}

// GetReview 查询单条书评
// @Summary      书评详情
// @Tags         书评
// @Produce      json
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response{data=review.Detail}
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/v1/reviews/{id} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid review id")
		return
	}

	r, err := h.service.GetReviewByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, r)
}

// AddReview 创建书评
// @Summary      创建书评
// @Description  图书与评论人都必须存在,任一引用失效则整体失败
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddReviewRequest true "书评信息"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "校验失败或引用不存在"
// @Router       /api/v1/reviews [post]
func (h *ReviewHandler) AddReview(c *gin.Context) {
	var req dto.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	r := h.service.AddReview(ctx, req.Text, req.BookID, req.ReviewerID)

	if r.Status == result.StatusCreated {
		metrics.IncCounter(metrics.ReviewsCreatedTotal)
		if req.BookID > 0 {
			h.invalidateBook(ctx, uint(req.BookID))
		}
	}

	response.FromResult(c, r)
}

// UpdateReview 更新书评内容
// @Summary      更新书评
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Param        request body dto.UpdateReviewRequest true "新内容"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid review id")
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	r := h.service.UpdateReview(ctx, uri.ID, req.Text)

	if r.OK() {
		h.invalidateReviewBook(ctx, uri.ID)
	}

	response.FromResult(c, r)
}

// DeleteReview 删除书评
// @Summary      删除书评
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid review id")
		return
	}

	ctx := c.Request.Context()

	// 删除后无法再查到书评所属图书,先取出来
	detail, err := h.service.GetReviewByID(ctx, uri.ID)

	r := h.service.DeleteReview(ctx, uri.ID)

	if r.Status == result.StatusDeleted && err == nil && detail != nil {
		h.invalidateBook(ctx, detail.BookID)
	}

	response.FromResult(c, r)
}

// ApproveReview 审核通过书评(幂等)
// @Summary      审核书评
// @Description  已通过的书评再次审核不产生任何变化
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/v1/reviews/{id}/approve [post]
func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid review id")
		return
	}

	ctx := c.Request.Context()
	r := h.service.ApproveReview(ctx, uri.ID)

	if r.OK() {
		metrics.IncCounter(metrics.ReviewsApprovedTotal)
		h.invalidateReviewBook(ctx, uri.ID)
		h.publishEvent(ctx, mq.EventReviewApproved, gin.H{"review_id": uri.ID})
	}

	response.FromResult(c, r)
}

// invalidateReviewBook 根据书评ID找到所属图书并失效其缓存
func (h *ReviewHandler) invalidateReviewBook(ctx context.Context, reviewID uint) {
	if h.cache == nil {
		return
	}
	detail, err := h.service.GetReviewByID(ctx, reviewID)
	if err != nil || detail == nil {
		return
	}
	h.invalidateBook(ctx, detail.BookID)
}

// invalidateBook 删除图书详情与列表缓存
func (h *ReviewHandler) invalidateBook(ctx context.Context, bookID uint) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteBookDetail(ctx, bookID); err != nil {
		log.Printf("删除图书详情缓存失败: %v", err)
	}
	if err := h.cache.InvalidateAll(ctx); err != nil {
		log.Printf("删除图书缓存失败: %v", err)
	}
}

// publishEvent 发布领域事件,失败只记录日志不影响响应
func (h *ReviewHandler) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("发布事件失败 type=%s: %v", eventType, err)
	}
}
