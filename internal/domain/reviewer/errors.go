package reviewer

import (
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// 评论人领域错误定义
var (
	// ErrReviewerNotFound 评论人不存在
	ErrReviewerNotFound = apperrors.ErrReviewerNotFound

	// ErrConflict 并发修改冲突(存储层检测到版本不一致)
	ErrConflict = apperrors.ErrConflict
)
