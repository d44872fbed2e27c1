package book

import (
	apperrors "github.com/xiebiao/reviewclub/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrCategoryNotFound 引用的分类不存在
	ErrCategoryNotFound = apperrors.ErrCategoryNotFound

	// ErrConflict 并发修改冲突(存储层检测到版本不一致)
	ErrConflict = apperrors.ErrConflict
)
