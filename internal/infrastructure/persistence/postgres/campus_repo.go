package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campus-qa-api/internal/domain/entity"
	"campus-qa-api/internal/domain/repository"
	"campus-qa-api/pkg/logger"
	"campus-qa-api/pkg/metrics"
)

var (
	// ErrUnknownTable 表名不在校园数据白名单中
	ErrUnknownTable = errors.New("unknown campus table")
	// ErrNoSearchableColumns 请求的检索列在表中均不存在
	ErrNoSearchableColumns = errors.New("none of the searchable columns exist")
)

var campusTables = map[string]struct{}{
	entity.TableDepartments: {},
	entity.TableProfessors:  {},
	entity.TableBuildings:   {},
	entity.TableRooms:       {},
	entity.TableOffices:     {},
	entity.TableRules:       {},
	entity.TableSettings:    {},
}

// professorDepartmentColumns 教师表中以文本保存院系/专业的列
var professorDepartmentColumns = []string{"department", "program"}

// CampusRepository 校园数据只读仓储。
// 表名与列名无法参数化，只接受白名单表并用 pq.QuoteIdentifier 转义。
type CampusRepository struct {
	client *Client

	mu     sync.RWMutex
	schema map[string]map[string]struct{} // 表 -> 实际存在的列，未检查的表不在其中
}

// NewCampusRepository 创建校园数据仓储
func NewCampusRepository(client *Client) *CampusRepository {
	return &CampusRepository{
		client: client,
		schema: make(map[string]map[string]struct{}),
	}
}

var _ repository.CampusRepository = (*CampusRepository)(nil)

// LoadSchema 读取每张校园表的实际列，expected 为各表期望的检索列，缺失的列记录告警。
// 单表失败不影响其它表，所有失败合并返回。
func (r *CampusRepository) LoadSchema(ctx context.Context, expected map[string][]string) error {
	ctx, span := tracer.Start(ctx, "postgres.CampusRepository.LoadSchema")
	defer span.End()

	var errs []error
	for _, table := range sortedTables() {
		cols, err := r.inspect(ctx, table)
		if err != nil {
			logger.Warn(ctx, "campus table inspection failed", "table", table, "error", err.Error())
			errs = append(errs, fmt.Errorf("inspect %s: %w", table, err))
			continue
		}

		r.mu.Lock()
		r.schema[table] = cols
		r.mu.Unlock()

		var missing []string
		for _, c := range expected[table] {
			if _, ok := cols[c]; !ok {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			logger.Warn(ctx, "searchable columns missing from campus table, they will be skipped",
				"table", table, "missing", missing)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *CampusRepository) inspect(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := r.client.db.WithContext(ctx).
		Raw("SELECT * FROM " + pq.QuoteIdentifier(table) + " LIMIT 0").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]struct{}, len(names))
	for _, n := range names {
		cols[strings.ToLower(n)] = struct{}{}
	}
	return cols, nil
}

// HasColumn 判断表中是否存在指定列；未检查过的表返回 false
func (r *CampusRepository) HasColumn(table, column string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cols, ok := r.schema[table]
	if !ok {
		return false
	}
	_, ok = cols[column]
	return ok
}

// inspected 判断表结构是否已检查
func (r *CampusRepository) inspected(table string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schema[table]
	return ok
}

// existingColumns 过滤掉表中不存在的列；未检查的表原样返回
func (r *CampusRepository) existingColumns(table string, columns []string) []string {
	if !r.inspected(table) {
		return columns
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if r.HasColumn(table, c) {
			out = append(out, c)
		}
	}
	return out
}

// SearchColumns 将 columns 拼接为一个文本后做不区分大小写的子串匹配
func (r *CampusRepository) SearchColumns(ctx context.Context, table string, columns []string, term string, limit int) ([]entity.Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	ctx, span := r.startSpan(ctx, "SearchColumns", table)
	defer span.End()
	defer observe("search_columns", table, time.Now())

	cols := r.existingColumns(table, columns)
	if len(cols) == 0 {
		err := fmt.Errorf("%w: %s %v", ErrNoSearchableColumns, table, columns)
		span.RecordError(err)
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pq.QuoteIdentifier(table))
	sb.WriteString(" WHERE ")
	sb.WriteString(concatText("", cols))
	sb.WriteString(` LIKE ? ESCAPE '\'`)
	r.orderByID(&sb, table, "")
	writeLimit(&sb, limit)

	return r.query(ctx, span, sb.String(), "%"+escapeLike(strings.ToLower(term))+"%")
}

// ListAll 返回表中的行，limit <= 0 表示不限制
func (r *CampusRepository) ListAll(ctx context.Context, table string, limit int) ([]entity.Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	ctx, span := r.startSpan(ctx, "ListAll", table)
	defer span.End()
	defer observe("list_all", table, time.Now())

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pq.QuoteIdentifier(table))
	r.orderByID(&sb, table, "")
	writeLimit(&sb, limit)

	return r.query(ctx, span, sb.String())
}

// ListProfessorsByDepartment 返回院系/专业包含 code 的教师（子串匹配，忽略大小写）。
// 表中存在 department_id 时同时关联 departments 按院系代码或名称匹配。
func (r *CampusRepository) ListProfessorsByDepartment(ctx context.Context, code string) ([]entity.Row, error) {
	ctx, span := r.startSpan(ctx, "ListProfessorsByDepartment", entity.TableProfessors)
	defer span.End()
	defer observe("list_professors_by_department", entity.TableProfessors, time.Now())

	code = strings.ToUpper(strings.TrimSpace(code))
	span.SetAttributes(attribute.String("campus.department_code", code))

	var (
		conds []string
		args  []any
	)
	pattern := "%" + escapeLike(code) + "%"
	for _, c := range r.existingColumns(entity.TableProfessors, professorDepartmentColumns) {
		conds = append(conds, "UPPER(COALESCE(CAST(p."+pq.QuoteIdentifier(c)+` AS TEXT), '')) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	joinDepartments := r.HasColumn(entity.TableProfessors, "department_id") && r.inspected(entity.TableDepartments)

	var sb strings.Builder
	sb.WriteString("SELECT p.*")
	if joinDepartments {
		sb.WriteString(", d.name AS department_name")
		conds = append(conds,
			`UPPER(COALESCE(d.code, '')) LIKE ? ESCAPE '\'`,
			`UPPER(COALESCE(d.name, '')) LIKE ? ESCAPE '\'`,
		)
		args = append(args, pattern, pattern)
	}
	sb.WriteString(" FROM ")
	sb.WriteString(pq.QuoteIdentifier(entity.TableProfessors))
	sb.WriteString(" p")
	if joinDepartments {
		sb.WriteString(" LEFT JOIN ")
		sb.WriteString(pq.QuoteIdentifier(entity.TableDepartments))
		sb.WriteString(" d ON d.id = p.department_id")
	}
	if len(conds) == 0 {
		err := fmt.Errorf("%w: professors has no department columns", ErrNoSearchableColumns)
		span.RecordError(err)
		return nil, err
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(conds, " OR "))
	sb.WriteString(" ORDER BY p.name")

	return r.query(ctx, span, sb.String(), args...)
}

// ListRooms 返回名称包含 number 的教室，number 为空时返回全部教室。
// 表中存在 building_id 时关联楼宇名（building_name）。
func (r *CampusRepository) ListRooms(ctx context.Context, number string) ([]entity.Row, error) {
	ctx, span := r.startSpan(ctx, "ListRooms", entity.TableRooms)
	defer span.End()
	defer observe("list_rooms", entity.TableRooms, time.Now())

	joinBuildings := r.HasColumn(entity.TableRooms, "building_id") && r.inspected(entity.TableBuildings)

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT r.*")
	if joinBuildings {
		sb.WriteString(", b.name AS building_name")
	}
	sb.WriteString(" FROM ")
	sb.WriteString(pq.QuoteIdentifier(entity.TableRooms))
	sb.WriteString(" r")
	if joinBuildings {
		sb.WriteString(" LEFT JOIN ")
		sb.WriteString(pq.QuoteIdentifier(entity.TableBuildings))
		sb.WriteString(" b ON b.id = r.building_id")
	}
	if number = strings.TrimSpace(number); number != "" {
		span.SetAttributes(attribute.String("campus.room_number", number))
		sb.WriteString(` WHERE CAST(r.name AS TEXT) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(number)+"%")
	}
	sb.WriteString(" ORDER BY r.name")

	return r.query(ctx, span, sb.String(), args...)
}

func (r *CampusRepository) query(ctx context.Context, span trace.Span, sql string, args ...any) ([]entity.Row, error) {
	var raw []map[string]any
	if err := r.client.db.WithContext(ctx).Raw(sql, args...).Scan(&raw).Error; err != nil {
		span.RecordError(err)
		return nil, err
	}

	rows := make([]entity.Row, 0, len(raw))
	for _, m := range raw {
		rows = append(rows, normalizeRow(m))
	}
	span.SetAttributes(attribute.Int("db.rows", len(rows)))
	return rows, nil
}

func (r *CampusRepository) startSpan(ctx context.Context, op, table string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "postgres.CampusRepository."+op,
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.sql.table", table),
		))
}

func (r *CampusRepository) orderByID(sb *strings.Builder, table, alias string) {
	if !r.HasColumn(table, "id") {
		return
	}
	sb.WriteString(" ORDER BY ")
	if alias != "" {
		sb.WriteString(alias + ".")
	}
	sb.WriteString(pq.QuoteIdentifier("id"))
}

func checkTable(table string) error {
	if _, ok := campusTables[table]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// concatText 生成 LOWER(COALESCE(CAST(c1 AS TEXT), '') || ' ' || ...) 表达式
func concatText(alias string, cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		ident := pq.QuoteIdentifier(c)
		if alias != "" {
			ident = alias + "." + ident
		}
		parts = append(parts, "COALESCE(CAST("+ident+" AS TEXT), '')")
	}
	return "LOWER(" + strings.Join(parts, " || ' ' || ") + ")"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func writeLimit(sb *strings.Builder, limit int) {
	if limit > 0 {
		fmt.Fprintf(sb, " LIMIT %d", limit)
	}
}

func normalizeRow(m map[string]any) entity.Row {
	row := make(entity.Row, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[k] = v
	}
	return row
}

func observe(op, table string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
}

func sortedTables() []string {
	out := make([]string, 0, len(campusTables))
	for t := range campusTables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
