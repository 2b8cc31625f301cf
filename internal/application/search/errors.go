package search

import "errors"

var (
	// ErrRepositoryRequired 表示检索引擎缺少数据访问能力
	ErrRepositoryRequired = errors.New("campus repository is required")

	// ErrAllVariantsFailed 表示通用分支的所有查询变体均失败
	ErrAllVariantsFailed = errors.New("all query variants failed")
)
