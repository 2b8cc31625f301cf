package search

import (
	"sort"

	"campus-qa-api/internal/domain/entity"
)

const (
	// SpecializedScore 专用分支的固定分数
	SpecializedScore = 100
	// UnfilteredProfessorScore 未按院系过滤时教师行的分数
	UnfilteredProfessorScore = 80
)

func matchTypeBonus(m MatchType) int {
	switch m {
	case MatchExact:
		return 30
	case MatchKeyword:
		return 20
	case MatchPartial:
		return 10
	default:
		return 0
	}
}

// Score 计算通用分支行的相关度：
// max(0, 100 - priority*10 + bonus + max(0, 20 - variantIndex*2))
func Score(priority int, match MatchType, variantIndex int) int {
	decay := 20 - variantIndex*2
	if decay < 0 {
		decay = 0
	}
	score := 100 - priority*10 + matchTypeBonus(match) + decay
	if score < 0 {
		return 0
	}
	return score
}

// DedupKey 去重键：优先 id，其次 name，否则整行序列化
func DedupKey(row entity.Row) string {
	if row.Has("id") {
		return "id:" + row.String("id")
	}
	if row.Has("name") {
		return "name:" + row.String("name")
	}
	return "row:" + row.JSON()
}

// Dedupe 按去重键保留首次出现的结果，保持原有顺序
func Dedupe(results []SearchResult) []SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		key := DedupKey(r.Data)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// rankBucket 去重后按分数稳定降序排序，limit > 0 时截断
func rankBucket(results []SearchResult, limit int) []SearchResult {
	out := Dedupe(results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
