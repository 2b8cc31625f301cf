// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"campus-qa-api/internal/domain/entity"
)

// CampusRepository 校园数据只读访问接口
type CampusRepository interface {
	// SearchColumns 将 columns 拼接为一个文本字段后做不区分大小写的子串匹配
	SearchColumns(ctx context.Context, table string, columns []string, term string, limit int) ([]entity.Row, error)

	// ListAll 返回表中的行，limit <= 0 表示不限制
	ListAll(ctx context.Context, table string, limit int) ([]entity.Row, error)

	// ListProfessorsByDepartment 返回院系/专业字段匹配 code 的教师
	ListProfessorsByDepartment(ctx context.Context, code string) ([]entity.Row, error)

	// ListRooms 返回名称包含 number 的教室（关联楼宇），number 为空时返回全部教室
	ListRooms(ctx context.Context, number string) ([]entity.Row, error)
}
