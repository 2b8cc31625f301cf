package question

import "strings"

// Analysis 一次提问的理解结果，请求内只读
type Analysis struct {
	Question string     `json:"question"`
	Keywords KeywordSet `json:"keywords"`
	Intent   Intent     `json:"intent"`
	Entities Entities   `json:"entities"`
}

// Analyze 对问题做关键词提取与意图分类
func Analyze(q string) Analysis {
	intent, entities := Classify(q)
	return Analysis{
		Question: q,
		Keywords: ExtractKeywords(q),
		Intent:   intent,
		Entities: entities,
	}
}

// Phrase 返回整句小写短语，用于精确短语匹配
func (a Analysis) Phrase() string {
	return strings.ToLower(strings.TrimSpace(a.Question))
}
