package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campus-qa-api/internal/domain/entity"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		match    MatchType
		index    int
		want     int
	}{
		{"exact phrase on departments", 1, MatchExact, 0, 140},
		{"first keyword on professors", 2, MatchKeyword, 1, 118},
		{"question word on rooms", 4, MatchPartial, 2, 86},
		{"late keyword on settings", 7, MatchKeyword, 7, 56},
		{"decay floors at zero", 7, MatchPartial, 15, 40},
		{"specialized has no bonus", 1, MatchSpecialized, 0, 110},
		{"score floors at zero", 15, MatchSpecialized, 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.priority, tt.match, tt.index))
		})
	}
}

func TestScoreNonIncreasingInVariantIndex(t *testing.T) {
	for _, table := range DefaultCatalog() {
		for _, match := range []MatchType{MatchExact, MatchKeyword, MatchPartial} {
			prev := Score(table.Priority, match, 0)
			for idx := 1; idx < 16; idx++ {
				cur := Score(table.Priority, match, idx)
				assert.LessOrEqual(t, cur, prev, "table=%s match=%s index=%d", table.Name, match, idx)
				assert.GreaterOrEqual(t, cur, 0)
				prev = cur
			}
		}
	}
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "id:7", DedupKey(entity.Row{"id": int64(7), "name": "Registrar"}))
	assert.Equal(t, "name:Registrar", DedupKey(entity.Row{"name": "Registrar"}))
	assert.Equal(t, `row:{"key":"term","value":"1st"}`, DedupKey(entity.Row{"value": "1st", "key": "term"}))
	assert.Equal(t, "name:Gym", DedupKey(entity.Row{"id": nil, "name": "Gym"}))
}

func TestDedupe(t *testing.T) {
	results := []SearchResult{
		{Table: "rooms", Data: entity.Row{"id": 1, "name": "301"}, RelevanceScore: 90},
		{Table: "rooms", Data: entity.Row{"id": 2, "name": "302"}, RelevanceScore: 80},
		{Table: "rooms", Data: entity.Row{"id": 1, "name": "301"}, RelevanceScore: 50},
		{Table: "rooms", Data: entity.Row{"name": "Lab A"}, RelevanceScore: 40},
		{Table: "rooms", Data: entity.Row{"name": "Lab A"}, RelevanceScore: 30},
	}

	once := Dedupe(results)
	assert.Len(t, once, 3)
	assert.Equal(t, 90, once[0].RelevanceScore, "first occurrence wins")
	assert.Equal(t, once, Dedupe(once), "dedupe is idempotent")
}

func TestRankBucket(t *testing.T) {
	var results []SearchResult
	for i, score := range []int{40, 90, 60, 90, 10, 70, 20} {
		results = append(results, SearchResult{Data: entity.Row{"id": i}, RelevanceScore: score})
	}

	t.Run("sorted descending and truncated", func(t *testing.T) {
		ranked := rankBucket(results, 5)
		assert.Len(t, ranked, 5)
		var scores []int
		for _, r := range ranked {
			scores = append(scores, r.RelevanceScore)
		}
		assert.Equal(t, []int{90, 90, 70, 60, 40}, scores)
		assert.Equal(t, 1, ranked[0].Data["id"], "ties keep input order")
		assert.Equal(t, 3, ranked[1].Data["id"])
	})

	t.Run("zero limit keeps everything", func(t *testing.T) {
		assert.Len(t, rankBucket(results, 0), len(results))
	})
}
