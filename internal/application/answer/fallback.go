package answer

import (
	"fmt"
	"strings"

	"campus-qa-api/internal/application/question"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/domain/entity"
)

// 固定回复文案
const (
	GreetingTrigger = "miss mo"
	GreetingReply   = "Miss na rin kita! Ask me anything about the campus: buildings, rooms, offices, professors or school rules."
	NotFoundReply   = "Sorry, I couldn't find information about that. Please try rephrasing your question."
	Apology         = "Sorry, something went wrong while answering your question. Please try again later."
)

const (
	maxProfessorNames = 5
	maxTemplateRows   = 2
	ruleSeparator     = " | "
)

// IsGreeting 判断问题是否为固定问候语（忽略大小写与首尾空白）
func IsGreeting(q string) bool {
	return strings.ToLower(strings.TrimSpace(q)) == GreetingTrigger
}

// Fallback 不依赖大模型的确定性模板回答
func Fallback(resp search.AggregateResponse, entities question.Entities) string {
	if len(resp) == 0 {
		return NotFoundReply
	}

	if profs, ok := resp.Bucket(entity.TableProfessors); ok && !profs.Empty() {
		if text := professorsReply(profs, entities.DepartmentCode); text != "" {
			return text
		}
	}

	first := resp[0]
	var text string
	switch first.Table {
	case entity.TableRules:
		text = rulesReply(first)
	case entity.TableBuildings:
		text = buildingsReply(first)
	case entity.TableOffices:
		text = officesReply(first)
	case entity.TableRooms:
		text = roomsReply(first, entities.RoomNumber)
	}
	if text == "" {
		text = fmt.Sprintf("I found some information in the %s records. Please ask a more specific question.", first.Table)
	}
	return text
}

func professorsReply(b search.ResultBucket, deptCode string) string {
	names := collect(b, maxProfessorNames, func(r entity.Row) string { return r.String("name") })
	if len(names) == 0 {
		return ""
	}
	if deptCode != "" {
		return fmt.Sprintf("%s professors: %s.", deptCode, strings.Join(names, ", "))
	}
	return fmt.Sprintf("Professors: %s.", strings.Join(names, ", "))
}

func rulesReply(b search.ResultBucket) string {
	items := collect(b, maxTemplateRows, func(r entity.Row) string {
		if d := r.String("description"); d != "" {
			return d
		}
		return r.String("title")
	})
	return strings.Join(items, ruleSeparator)
}

func buildingsReply(b search.ResultBucket) string {
	names := collect(b, maxTemplateRows, func(r entity.Row) string { return r.String("name") })
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("Campus buildings: %s.", strings.Join(names, ", "))
}

func officesReply(b search.ResultBucket) string {
	pairs := collect(b, maxTemplateRows, func(r entity.Row) string {
		name := r.String("name")
		if name == "" {
			return ""
		}
		where := placeOf(r)
		if where == "" {
			return name
		}
		return name + ": " + where
	})
	return strings.Join(pairs, "; ")
}

func roomsReply(b search.ResultBucket, roomNumber string) string {
	if roomNumber != "" {
		for _, r := range b.Results {
			name := r.Data.String("name")
			if !strings.Contains(name, roomNumber) {
				continue
			}
			if where := placeOf(r.Data); where != "" {
				return fmt.Sprintf("Room %s is in %s.", name, where)
			}
			return fmt.Sprintf("Room %s exists, but its location is not recorded.", name)
		}
	}

	pairs := collect(b, maxTemplateRows, func(r entity.Row) string {
		name := r.String("name")
		if name == "" {
			return ""
		}
		if status := r.String("status"); status != "" {
			return name + ": " + status
		}
		return name
	})
	return strings.Join(pairs, "; ")
}

// placeOf 返回 "楼宇 楼层" 描述，兼容关联楼宇名与自由文本位置两种存储
func placeOf(r entity.Row) string {
	building := firstNonEmpty(r, "building", "building_name", "location")
	floor := r.String("floor")
	if floor != "" && !strings.Contains(strings.ToLower(floor), "floor") {
		floor = "floor " + floor
	}
	switch {
	case building != "" && floor != "":
		return building + ", " + floor
	case building != "":
		return building
	default:
		return floor
	}
}

func firstNonEmpty(r entity.Row, cols ...string) string {
	for _, c := range cols {
		if v := r.String(c); v != "" {
			return v
		}
	}
	return ""
}

func collect(b search.ResultBucket, limit int, pick func(entity.Row) string) []string {
	out := make([]string, 0, limit)
	for _, r := range b.Results {
		if len(out) >= limit {
			break
		}
		if v := pick(r.Data); v != "" {
			out = append(out, v)
		}
	}
	return out
}
