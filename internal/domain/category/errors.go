package category

import (
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// 分类领域错误定义
var (
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = apperrors.ErrCategoryNotFound

	// ErrConflict 并发修改冲突(存储层检测到版本不一致)
	ErrConflict = apperrors.ErrConflict
)
