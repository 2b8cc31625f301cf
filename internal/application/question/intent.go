package question

import (
	"regexp"
	"strings"
)

// Intent 查询意图
type Intent string

const (
	IntentGeneric    Intent = "generic"
	IntentRules      Intent = "rules_query"
	IntentProfessors Intent = "professors_query"
	IntentBuildings  Intent = "buildings_query"
	IntentRooms      Intent = "rooms_query"
)

// Entities 从问题中抽取的实体，未抽取到时为空串
type Entities struct {
	DepartmentCode string `json:"department_code,omitempty"`
	RoomNumber     string `json:"room_number,omitempty"`
}

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules 按固定顺序检查，先命中者胜出
var intentRules = []intentRule{
	{IntentRules, []string{"rule", "regulation", "policy", "policies", "handbook", "dress code", "uniform", "bawal", "prohibited", "allowed"}},
	{IntentProfessors, []string{"prof", "teacher", "instructor", "faculty"}},
	{IntentBuildings, []string{"building", "bldg", "facility", "facilities"}},
	{IntentRooms, []string{"room", "laboratory"}},
}

type departmentAlias struct {
	code    string
	pattern *regexp.Regexp
}

// departmentAliases 别名整词匹配，避免 "it" 命中 "with" 之类的子串
var departmentAliases = []departmentAlias{
	newDepartmentAlias("BSIT", "bsit", "information technology", "it"),
	newDepartmentAlias("BSCS", "bscs", "computer science", "cs"),
	newDepartmentAlias("BSIS", "bsis", "information systems"),
	newDepartmentAlias("BSEMC", "bsemc", "entertainment and multimedia computing", "emc"),
	newDepartmentAlias("BSBA", "bsba", "business administration"),
	newDepartmentAlias("BSED", "bsed", "secondary education"),
}

var (
	roomAfterWordRegex = regexp.MustCompile(`(?i)\broom\s*(?:no\.?|number|#)?\s*(\d+)`)
	standaloneNumRegex = regexp.MustCompile(`\b(\d{3,4})\b`)
)

func newDepartmentAlias(code string, aliases ...string) departmentAlias {
	quoted := make([]string, 0, len(aliases))
	for _, a := range aliases {
		quoted = append(quoted, regexp.QuoteMeta(a))
	}
	pattern := `(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`
	return departmentAlias{code: code, pattern: regexp.MustCompile(pattern)}
}

// Classify 返回问题的意图及抽取到的实体
func Classify(q string) (Intent, Entities) {
	return classifyIntent(q), extractEntities(q)
}

func classifyIntent(q string) Intent {
	lower := strings.ToLower(q)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneric
}

func extractEntities(q string) Entities {
	return Entities{
		DepartmentCode: extractDepartmentCode(q),
		RoomNumber:     extractRoomNumber(q),
	}
}

// extractDepartmentCode 独立于意图的系别别名扫描
func extractDepartmentCode(q string) string {
	for _, alias := range departmentAliases {
		if alias.pattern.MatchString(q) {
			return alias.code
		}
	}
	return ""
}

// extractRoomNumber 优先取 "room" 之后的数字，其次取第一个独立的 3-4 位数字
func extractRoomNumber(q string) string {
	if m := roomAfterWordRegex.FindStringSubmatch(q); len(m) == 2 {
		return m[1]
	}
	if m := standaloneNumRegex.FindStringSubmatch(q); len(m) == 2 {
		return m[1]
	}
	return ""
}
