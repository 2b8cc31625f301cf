// Package question 提供问题理解能力：关键词提取、意图分类与实体抽取
package question

import (
	"strings"
	"unicode"
)

const (
	// MaxKeywords 关键词集合上限
	MaxKeywords = 5

	strictMinLen  = 3
	relaxedMinLen = 2
)

// KeywordSet 有序关键词集合（已去停用词、已做同义词归一）
type KeywordSet []string

// First 返回第一个关键词，不存在时返回空串
func (k KeywordSet) First() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// Contains 判断集合中是否包含指定关键词
func (k KeywordSet) Contains(term string) bool {
	for _, t := range k {
		if t == term {
			return true
		}
	}
	return false
}

var stopwords = toSet(
	// English
	"a", "an", "the", "is", "are", "was", "were", "be", "am",
	"what", "whats", "where", "wheres", "who", "whos", "whom", "which", "when", "why", "how",
	"in", "on", "at", "of", "to", "for", "from", "by", "with", "about", "into",
	"and", "or", "but", "not", "no",
	"i", "me", "my", "we", "our", "you", "your", "it", "its", "they", "them", "their",
	"this", "that", "these", "those", "there", "here",
	"do", "does", "did", "can", "could", "would", "should", "will", "shall", "may", "might",
	"please", "tell", "show", "give", "find", "list", "know", "want", "need", "get",
	"any", "some", "all", "much", "many",
	// 校园用户常用的他加禄语虚词
	"ang", "ng", "sa", "mga", "po", "yung", "ba", "na", "si", "ni", "kay",
	"saan", "ano", "sino", "nasaan", "paano", "kailan", "ilan",
)

var synonyms = map[string]string{
	"profs":       "professor",
	"prof":        "professor",
	"professors":  "professor",
	"teacher":     "professor",
	"teachers":    "professor",
	"instructor":  "professor",
	"instructors": "professor",
	"faculty":     "professor",

	"bldg":      "building",
	"bldgs":     "building",
	"buildings": "building",

	"rm":         "room",
	"rooms":      "room",
	"classroom":  "room",
	"classrooms": "room",

	"rules":       "rule",
	"regulation":  "rule",
	"regulations": "rule",
	"policy":      "rule",
	"policies":    "rule",

	"dept":        "department",
	"depts":       "department",
	"departments": "department",

	"offices": "office",
}

// ExtractKeywords 将问题归一化为至多 5 个检索词。
// 过滤后为空时，放宽长度阈值（允许 2 字符词）重试一次。
func ExtractKeywords(q string) KeywordSet {
	tokens := tokenize(q)
	if ks := filterTokens(tokens, strictMinLen); len(ks) > 0 {
		return ks
	}
	return filterTokens(tokens, relaxedMinLen)
}

func filterTokens(tokens []string, minLen int) KeywordSet {
	out := make(KeywordSet, 0, MaxKeywords)
	for _, tok := range tokens {
		if len(out) >= MaxKeywords {
			break
		}
		if tok == "" || len(tok) < minLen {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		if canon, ok := synonyms[tok]; ok {
			tok = canon
		}
		out = append(out, tok)
	}
	return out
}

// tokenize 小写化、按空白切分，并去掉词首尾的标点
func tokenize(q string) []string {
	fields := strings.Fields(strings.ToLower(q))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FirstQuestionWord 返回问题中第一个长度大于 2 的原始词（不做停用词过滤）
func FirstQuestionWord(q string) string {
	for _, tok := range tokenize(q) {
		if len(tok) > 2 {
			return tok
		}
	}
	return ""
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
