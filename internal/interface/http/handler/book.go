package handler

import (
	"context"
	"io"
	"log"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/reviewclub/internal/domain/book"
	"github.com/xiebiao/reviewclub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/reviewclub/internal/interface/http/dto"
	"github.com/xiebiao/reviewclub/pkg/metrics"
	"github.com/xiebiao/reviewclub/pkg/mq"
	"github.com/xiebiao/reviewclub/pkg/response"
	"github.com/xiebiao/reviewclub/pkg/result"
)

// maxImageSize 封面文件大小上限(5MB)
const maxImageSize = 5 << 20

// BookHandler 图书HTTP处理器
// 设计说明:
// 1. 读路径走Cache-Aside:先查Redis,未命中回源数据库并回填
// 2. 写路径(增删改、上传封面)之后删除相关缓存,不做缓存更新
// 3. cache与publisher允许为nil(无Redis/MQ部署)
type BookHandler struct {
	service   book.Service
	cache     *redis.BookCacheStore
	publisher mq.EventPublisher
}

// NewBookHandler 创建图书处理器
func NewBookHandler(service book.Service, cache *redis.BookCacheStore, publisher mq.EventPublisher) *BookHandler {
	return &BookHandler{
		service:   service,
		cache:     cache,
		publisher: publisher,
	}
}

// ListBooks 查询全部图书
// @Summary      图书列表
// @Description  返回全部图书,含分类名、书评数量与书评摘要
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{data=[]book.WithReviews}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. 查缓存
	if h.cache != nil {
		if cached, err := h.cache.GetBookList(ctx); err != nil {
			log.Printf("读取图书列表缓存失败: %v", err)
		} else if cached != nil {
			response.Success(c, cached)
			return
		}
	}

	// 2. 回源数据库
	books, err := h.service.ListBooks(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 回填缓存
	if h.cache != nil {
		if err := h.cache.SetBookList(ctx, books); err != nil {
			log.Printf("写入图书列表缓存失败: %v", err)
		}
	}

	response.Success(c, books)
}

// GetBook 查询单个图书
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=book.WithReviews}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid book id")
		return
	}

	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, err := h.cache.GetBookDetail(ctx, uri.ID); err != nil {
			log.Printf("读取图书详情缓存失败: %v", err)
		} else if cached != nil {
			response.Success(c, cached)
			return
		}
	}

	b, err := h.service.FindBook(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetBookDetail(ctx, b); err != nil {
			log.Printf("写入图书详情缓存失败: %v", err)
		}
	}

	response.Success(c, b)
}

// AddBook 创建图书
// @Summary      创建图书
// @Description  category_id与category_name必须指向同一个已存在的分类
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "校验失败或分类不存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	r := h.service.AddBook(ctx, req.Name, req.Author, req.CategoryID, req.CategoryName, req.IsBookOfTheMonth)

	if r.Status == result.StatusCreated {
		metrics.IncCounter(metrics.BooksCreatedTotal)
		h.invalidateList(ctx)
		h.publishEvent(ctx, mq.EventBookCreated, gin.H{
			"book_id": r.CreatedID,
			"name":    req.Name,
			"author":  req.Author,
		})
	}

	response.FromResult(c, r)
}

// UpdateBook 更新图书(multipart表单,封面文件可选)
// @Summary      更新图书
// @Description  全量替换图书字段;携带封面文件时同时替换封面
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        name formData string true "书名"
// @Param        author formData string true "作者"
// @Param        category_id formData int true "分类ID"
// @Param        is_book_of_the_month formData bool false "本月之书"
// @Param        image formData file false "封面文件"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid book id")
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithCode(c, 40900, "invalid request body")
		return
	}

	// 封面文件可选
	var (
		imageData []byte
		imageName string
	)
	if fileHeader, err := c.FormFile("image"); err == nil {
		data, name, err := readUpload(fileHeader)
		if err != nil {
			response.ErrorWithCode(c, 40900, "failed to read image file")
			return
		}
		imageData, imageName = data, name
	}

	ctx := c.Request.Context()
	r := h.service.UpdateBook(ctx, uri.ID, req.Name, req.Author, req.CategoryID, req.IsBookOfTheMonth, imageData, imageName)

	if r.OK() {
		h.invalidateBook(ctx, uri.ID)
	}

	response.FromResult(c, r)
}

// DeleteBook 删除图书(级联删除其书评)
// @Summary      删除图书
// @Description  同一事务内删除图书及其全部书评;封面资产一并清除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid book id")
		return
	}

	ctx := c.Request.Context()
	r := h.service.DeleteBook(ctx, uri.ID)

	if r.Status == result.StatusDeleted {
		h.invalidateBook(ctx, uri.ID)
	}

	response.FromResult(c, r)
}

// UploadBookImage 上传/替换封面
// @Summary      上传封面
// @Description  写新封面成功后才删除旧封面;扩展名限.jpeg/.jpg/.png/.gif
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        image formData file true "封面文件"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "文件为空或扩展名非法"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/image [post]
func (h *BookHandler) UploadBookImage(c *gin.Context) {
	var uri dto.IDUri
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithCode(c, 40900, "invalid book id")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.ErrorWithCode(c, 40900, "image file is required")
		return
	}

	data, name, err := readUpload(fileHeader)
	if err != nil {
		response.ErrorWithCode(c, 40900, "failed to read image file")
		return
	}

	ctx := c.Request.Context()
	r := h.service.UploadBookImage(ctx, uri.ID, data, name)

	if r.OK() {
		metrics.IncCounter(metrics.ImagesUploadedTotal)
		h.invalidateBook(ctx, uri.ID)
	}

	response.FromResult(c, r)
}

// readUpload 读取multipart文件内容
func readUpload(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	if fileHeader.Size > maxImageSize {
		return nil, "", io.ErrShortBuffer
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize))
	if err != nil {
		return nil, "", err
	}

	return data, fileHeader.Filename, nil
}

// invalidateBook 删除单本图书的详情缓存与列表缓存
func (h *BookHandler) invalidateBook(ctx context.Context, bookID uint) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteBookDetail(ctx, bookID); err != nil {
		log.Printf("删除图书详情缓存失败: %v", err)
	}
	h.invalidateList(ctx)
}

// invalidateList 删除列表缓存
func (h *BookHandler) invalidateList(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(ctx); err != nil {
		log.Printf("删除图书缓存失败: %v", err)
	}
}

// publishEvent 发布领域事件,失败只记录日志不影响响应
func (h *BookHandler) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("发布事件失败 type=%s: %v", eventType, err)
	}
}
