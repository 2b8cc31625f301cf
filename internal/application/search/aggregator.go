package search

import "sort"

// Aggregate 丢弃空桶，并按表优先级升序排列。
// 排序只看优先级，与相关度无关。
func Aggregate(buckets []ResultBucket) AggregateResponse {
	out := make(AggregateResponse, 0, len(buckets))
	for _, b := range buckets {
		if b.Empty() {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
