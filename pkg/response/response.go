package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
	"github.com/xiebiao/reviewclub/pkg/result"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（非HTTP状态码），方便客户端判断错误类型
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回，失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := bookService.FindBook(ctx, id)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	c.JSON(http.StatusOK, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FromResult 将领域层Result转换为统一响应
// 映射规则：
// - Created:  code=0，data携带created_id
// - Updated/Deleted/Success: code=0
// - NotFound: code=40400，message为首条诊断信息
// - Error:    code=40000，message为全部诊断信息（分号连接）
func FromResult(c *gin.Context, r *result.Result) {
	switch r.Status {
	case result.StatusCreated:
		Success(c, gin.H{"created_id": r.CreatedID})
	case result.StatusUpdated, result.StatusDeleted, result.StatusSuccess:
		Success(c, nil)
	case result.StatusNotFound:
		msg := "not found"
		if len(r.Messages) > 0 {
			msg = r.Messages[0]
		}
		ErrorWithCode(c, apperrors.ErrCodeNotFound, msg)
	default:
		msg := "operation failed"
		if len(r.Messages) > 0 {
			msg = strings.Join(r.Messages, "; ")
		}
		ErrorWithCode(c, apperrors.ErrCodeBusinessError, msg)
	}
}
