package handler

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/reviewclub/internal/domain/reviewer"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewclub/internal/interface/http/dto"
	"github.com/xiebiao/reviewclub/pkg/response"
	"github.com/xiebiao/reviewclub/pkg/result"
)

// ReviewerHandler 评论人HTTP处理器
// 删除评论人会级联删除其书评,图书详情中的书评摘要随之变化,
// 所以删除成功后图书缓存整体失效
type ReviewerHandler struct {
	service reviewer.Service
	cache   *redis.BookCacheStore
}

// NewReviewerHandler 创建评论人处理器
func NewReviewerHandler(service reviewer.Service, cache *redis.BookCacheStore) *ReviewerHandler {
	return &ReviewerHandler{
		service: service,
		cache:   cache,
	}
}

// ListReviewers 查询全部评论人
// @Summary      评论人列表
// @Description  返回全部评论人及各自的书评数量
// @Tags         评论人
// @Produce      json
// @Success      200 {object} response.Response{data=[]reviewer.WithCount}
// @Router       /api/v1/reviewers [get]
func (h *ReviewerHandler) ListReviewers(c *gin.Context) {
	reviewers, err := h.service.GetAllReviewers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, reviewers)
}

// GetReviewer 查询单个评论人
// @Summary      评论人详情
// @Description  返回评论人及其全部书评(含图书名)
// @Tags         评论人
// @Produce      json
// @Param        id path int true "评论人ID"
// @Success      200 {object} response.Response{data=reviewer.Detail}
// @Failure      404 {object} response.Response "评论人不存在"
// @Router       /api/v1/reviewers/{id} [get]
func (h *ReviewerHandler) GetReviewer(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid reviewer id")
		return
	}

	r, err := h.service.GetReviewerByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, r)
}

// AddReviewer 创建评论人
// @Summary      创建评论人
// @Tags         评论人
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddReviewerRequest true "评论人信息"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "校验失败"
// @Router       /api/v1/reviewers [post]
func (h *ReviewerHandler) AddReviewer(c *gin.Context) {
	var req dto.AddReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	r := h.service.AddReviewer(c.Request.Context(), req.Name, req.Email)
	response.FromResult(c, r)
}

// UpdateReviewer 更新评论人
// @Summary      更新评论人
// @Tags         评论人
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论人ID"
// @Param        request body dto.UpdateReviewerRequest true "评论人信息"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "评论人不存在"
// @Router       /api/v1/reviewers/{id} [put]
func (h *ReviewerHandler) UpdateReviewer(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid reviewer id")
		return
	}

	var req dto.UpdateReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	r := h.service.UpdateReviewer(ctx, uri.ID, req.Name, req.Email)

	// 评论人名称出现在图书详情的书评摘要里
	if r.OK() {
		h.invalidateBookCache(ctx)
	}

	response.FromResult(c, r)
}

// DeleteReviewer 删除评论人(级联删除其书评)
// @Summary      删除评论人
// @Description  同一事务内删除评论人及其全部书评
// @Tags         评论人
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论人ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "评论人不存在"
// @Router       /api/v1/reviewers/{id} [delete]
func (h *ReviewerHandler) DeleteReviewer(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid reviewer id")
		return
	}

	ctx := c.Request.Context()
	r := h.service.DeleteReviewer(ctx, uri.ID)

	if r.Status == result.StatusDeleted {
		h.invalidateBookCache(ctx)
	}

	response.FromResult(c, r)
}

// invalidateBookCache 级联影响面不可精确预知,图书缓存整体失效
func (h *ReviewerHandler) invalidateBookCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(ctx); err != nil {
		log.Printf("删除图书缓存失败: %v", err)
	}
}
