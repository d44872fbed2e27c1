package review

import (
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// 书评领域错误定义
var (
	// ErrReviewNotFound 书评不存在
	ErrReviewNotFound = apperrors.ErrReviewNotFound

	// ErrConflict 并发修改冲突(存储层检测到版本不一致)
	ErrConflict = apperrors.ErrConflict
)
