// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 校园数据表名
const (
	TableDepartments = "departments"
	TableProfessors  = "professors"
	TableBuildings   = "buildings"
	TableRooms       = "rooms"
	TableOffices     = "offices"
	TableRules       = "rules"
	TableSettings    = "settings"
)

// Row 一行校园数据（列名 -> 值），由数据访问层按原样返回
type Row map[string]any

// String 返回指定列的字符串形式，不存在或为 NULL 时返回空串
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Has 判断指定列是否存在且非 NULL
func (r Row) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// JSON 返回行的规范化 JSON 序列化（键有序）
func (r Row) JSON() string {
	b, err := json.Marshal(map[string]any(r))
	if err != nil {
		return fmt.Sprint(map[string]any(r))
	}
	return string(b)
}
