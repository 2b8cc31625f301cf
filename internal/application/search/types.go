// Package search 实现校园数据的多源并发检索、相关度打分与结果聚合
package search

import "campus-qa-api/internal/domain/entity"

// MatchType 命中方式，仅用于计算分数
type MatchType string

const (
	MatchExact       MatchType = "exact"
	MatchKeyword     MatchType = "keyword"
	MatchPartial     MatchType = "partial"
	MatchSpecialized MatchType = "specialized"
)

// SearchResult 单行检索结果
type SearchResult struct {
	Table          string     `json:"table"`
	Data           entity.Row `json:"data"`
	MatchType      MatchType  `json:"match_type"`
	RelevanceScore int        `json:"relevance_score"`
}

// ResultBucket 单表结果，按 RelevanceScore 降序
type ResultBucket struct {
	Table    string         `json:"table"`
	Priority int            `json:"priority"`
	Results  []SearchResult `json:"results"`
}

// Empty 判断桶是否为空
func (b ResultBucket) Empty() bool {
	return len(b.Results) == 0
}

// AggregateResponse 按表优先级升序排列的非空结果桶
type AggregateResponse []ResultBucket

// Bucket 返回指定表的结果桶
func (r AggregateResponse) Bucket(table string) (ResultBucket, bool) {
	for _, b := range r {
		if b.Table == table {
			return b, true
		}
	}
	return ResultBucket{}, false
}

// TotalResults 返回所有桶的结果总数
func (r AggregateResponse) TotalResults() int {
	n := 0
	for _, b := range r {
		n += len(b.Results)
	}
	return n
}
