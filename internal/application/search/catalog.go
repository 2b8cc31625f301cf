package search

import "campus-qa-api/internal/domain/entity"

// TableDescriptor 可检索数据源描述
type TableDescriptor struct {
	Name              string   `json:"name"`
	Priority          int      `json:"priority"` // 1..7，越小越靠前
	SearchableColumns []string `json:"searchable_columns"`
}

// Catalog 固定顺序的数据源目录
type Catalog []TableDescriptor

// DefaultCatalog 返回与数据库结构对应的默认目录。
// 每次调用返回新副本，调用方可以安全修改。
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: entity.TableDepartments, Priority: 1, SearchableColumns: []string{"code", "name", "description"}},
		{Name: entity.TableProfessors, Priority: 2, SearchableColumns: []string{"name", "position", "email", "department", "program"}},
		{Name: entity.TableBuildings, Priority: 3, SearchableColumns: []string{"name", "description", "location"}},
		{Name: entity.TableRooms, Priority: 4, SearchableColumns: []string{"name", "type", "status"}},
		{Name: entity.TableOffices, Priority: 5, SearchableColumns: []string{"name", "description", "location"}},
		{Name: entity.TableRules, Priority: 6, SearchableColumns: []string{"title", "description", "category"}},
		{Name: entity.TableSettings, Priority: 7, SearchableColumns: []string{"key", "value", "description"}},
	}
}

// Columns 返回 表名 -> 检索列 映射，用于启动时核对表结构
func (c Catalog) Columns() map[string][]string {
	out := make(map[string][]string, len(c))
	for _, t := range c {
		out[t.Name] = append([]string(nil), t.SearchableColumns...)
	}
	return out
}
