package postgres

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus-qa-api/internal/application/question"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/domain/entity"
)

// 早期版本的表结构：教师以文本保存院系，教室直接保存楼宇名
var legacySchema = []string{
	`CREATE TABLE departments (id INTEGER PRIMARY KEY, code TEXT, name TEXT, description TEXT)`,
	`CREATE TABLE professors (id INTEGER PRIMARY KEY, name TEXT, position TEXT, email TEXT, department TEXT, program TEXT)`,
	`CREATE TABLE buildings (id INTEGER PRIMARY KEY, name TEXT, description TEXT, location TEXT)`,
	`CREATE TABLE rooms (id INTEGER PRIMARY KEY, name TEXT, type TEXT, status TEXT, building TEXT, floor INTEGER)`,
	`CREATE TABLE offices (id INTEGER PRIMARY KEY, name TEXT, description TEXT, location TEXT)`,
	`CREATE TABLE rules (id INTEGER PRIMARY KEY, title TEXT, description TEXT, category TEXT)`,
	`CREATE TABLE settings (id INTEGER PRIMARY KEY, key TEXT, value TEXT, description TEXT)`,

	`INSERT INTO departments VALUES (1, 'BSIT', 'Information Technology', 'IT programs'), (2, 'BSCS', 'Computer Science', 'CS programs')`,
	`INSERT INTO professors VALUES
		(1, 'Ana Santos', 'Instructor', 'ana@campus.edu', 'BSIT', NULL),
		(2, 'Ben Cruz', 'Dean', 'ben@campus.edu', 'BSCS', NULL),
		(3, 'Carla Reyes', 'Lecturer', NULL, NULL, 'bsit')`,
	`INSERT INTO buildings VALUES (1, 'Main Building', 'Administration', 'North'), (2, 'Tech Hall', 'Laboratories', 'East')`,
	`INSERT INTO rooms VALUES
		(1, '301', 'lecture', 'available', 'Tech Hall', 3),
		(2, '302', 'lecture', 'occupied', 'Tech Hall', 3),
		(3, 'Lab 1', 'laboratory', 'available', 'Main Building', 1)`,
	`INSERT INTO offices VALUES (1, 'Registrar', 'Enrollment records', 'Main Building')`,
	`INSERT INTO rules VALUES
		(1, 'Dress code', 'Wear the prescribed uniform', 'conduct'),
		(2, 'ID policy', 'Always wear your ID', 'conduct'),
		(3, 'Library', 'Keep quiet, 100% of the time', 'facilities')`,
	`INSERT INTO settings VALUES (1, 'school_year', '2026-2027', 'Current school year')`,
}

// 规范化后的表结构：外键关联院系与楼宇，教师表没有 email 列
var normalizedSchema = []string{
	`CREATE TABLE departments (id INTEGER PRIMARY KEY, code TEXT, name TEXT, description TEXT)`,
	`CREATE TABLE professors (id INTEGER PRIMARY KEY, name TEXT, position TEXT, department_id INTEGER)`,
	`CREATE TABLE buildings (id INTEGER PRIMARY KEY, name TEXT, description TEXT, location TEXT)`,
	`CREATE TABLE rooms (id INTEGER PRIMARY KEY, name TEXT, type TEXT, status TEXT, building_id INTEGER, floor INTEGER)`,
	`CREATE TABLE offices (id INTEGER PRIMARY KEY, name TEXT, description TEXT, location TEXT)`,
	`CREATE TABLE rules (id INTEGER PRIMARY KEY, title TEXT, description TEXT, category TEXT)`,
	`CREATE TABLE settings (id INTEGER PRIMARY KEY, key TEXT, value TEXT, description TEXT)`,

	`INSERT INTO departments VALUES (1, 'BSIT', 'Information Technology', 'IT programs'), (2, 'BSCS', 'Computer Science', 'CS programs')`,
	`INSERT INTO professors VALUES (1, 'Ana Santos', 'Instructor', 1), (2, 'Ben Cruz', 'Dean', 2), (3, 'Dan Lim', 'Adjunct', NULL)`,
	`INSERT INTO buildings VALUES (1, 'Main Building', 'Administration', 'North'), (2, 'Tech Hall', 'Laboratories', 'East')`,
	`INSERT INTO rooms VALUES (1, '301', 'lecture', 'available', 2, 3), (2, '105', 'office', 'available', 1, 1)`,
}

func newTestRepo(t *testing.T, stmts []string) *CampusRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	return NewCampusRepository(NewClientWithDB(db))
}

func names(rows []entity.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String("name"))
	}
	return out
}

func TestCampusRepository_SearchColumns(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, legacySchema)

	t.Run("case insensitive across columns", func(t *testing.T) {
		rows, err := repo.SearchColumns(ctx, entity.TableOffices, []string{"name", "description", "location"}, "ENROLLMENT", 5)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Registrar", rows[0].String("name"))
	})

	t.Run("match spans concatenated columns", func(t *testing.T) {
		rows, err := repo.SearchColumns(ctx, entity.TableBuildings, []string{"name", "description"}, "hall laboratories", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"Tech Hall"}, names(rows))
	})

	t.Run("limit", func(t *testing.T) {
		rows, err := repo.SearchColumns(ctx, entity.TableRules, []string{"title", "description"}, "wear", 1)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		rows, err := repo.SearchColumns(ctx, entity.TableRules, []string{"description"}, "100%", 5)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Library", rows[0].String("title"))

		rows, err = repo.SearchColumns(ctx, entity.TableRules, []string{"description"}, "%", 5)
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		rows, err = repo.SearchColumns(ctx, entity.TableSettings, []string{"key"}, "school_", 5)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("null columns do not hide the row", func(t *testing.T) {
		rows, err := repo.SearchColumns(ctx, entity.TableProfessors, []string{"name", "email", "department", "program"}, "carla", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"Carla Reyes"}, names(rows))
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := repo.SearchColumns(ctx, "users; DROP TABLE rules", []string{"name"}, "x", 5)
		assert.ErrorIs(t, err, ErrUnknownTable)
	})
}

func TestCampusRepository_ListAll(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, legacySchema)

	rows, err := repo.ListAll(ctx, entity.TableRules, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = repo.ListAll(ctx, entity.TableRules, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = repo.ListAll(ctx, "pg_user", 0)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestCampusRepository_LegacySchema(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, legacySchema)

	t.Run("professors by department or program", func(t *testing.T) {
		rows, err := repo.ListProfessorsByDepartment(ctx, "bsit")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Santos", "Carla Reyes"}, names(rows))
	})

	t.Run("room by number", func(t *testing.T) {
		rows, err := repo.ListRooms(ctx, "301")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Tech Hall", rows[0].String("building"))
		assert.Equal(t, "3", rows[0].String("floor"))
	})

	t.Run("all rooms", func(t *testing.T) {
		rows, err := repo.ListRooms(ctx, "")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestCampusRepository_ProfessorsDepartmentSubstring(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, []string{
		legacySchema[1],
		`INSERT INTO professors VALUES
			(1, 'Ana Santos', 'Instructor', NULL, 'BSIT', NULL),
			(2, 'Eve Tan', 'Lecturer', NULL, 'CCS - BSIT', NULL),
			(3, 'Fe Go', 'Instructor', NULL, NULL, 'bsit 3A'),
			(4, 'Gil Ong', 'Dean', NULL, 'BSCS', NULL),
			(5, 'Hal Uy', 'Adjunct', NULL, 'BS-IT', NULL)`,
	})

	tests := []struct {
		name string
		code string
		want []string
	}{
		{"code embedded in department or program", "BSIT", []string{"Ana Santos", "Eve Tan", "Fe Go"}},
		{"lower case code", "bscs", []string{"Gil Ong"}},
		{"wildcards are literal", "BS_IT", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.ListProfessorsByDepartment(ctx, tt.code)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(rows))
		})
	}
}

func TestCampusRepository_NormalizedSchema(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, normalizedSchema)

	t.Run("without inspection the documented columns are assumed", func(t *testing.T) {
		_, err := repo.SearchColumns(ctx, entity.TableProfessors, []string{"name", "email"}, "ana", 5)
		assert.Error(t, err)
	})

	// offices/rules/settings 在该结构中存在但为空表
	require.NoError(t, repo.LoadSchema(ctx, search.DefaultCatalog().Columns()))

	assert.True(t, repo.HasColumn(entity.TableProfessors, "department_id"))
	assert.False(t, repo.HasColumn(entity.TableProfessors, "email"))

	t.Run("missing columns are skipped", func(t *testing.T) {
		rows, err := repo.SearchColumns(ctx, entity.TableProfessors, []string{"name", "email", "department"}, "ana", 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Santos"}, names(rows))
	})

	t.Run("no searchable column left", func(t *testing.T) {
		_, err := repo.SearchColumns(ctx, entity.TableProfessors, []string{"email"}, "ana", 5)
		assert.ErrorIs(t, err, ErrNoSearchableColumns)
	})

	t.Run("professors joined with departments", func(t *testing.T) {
		rows, err := repo.ListProfessorsByDepartment(ctx, "BSCS")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ben Cruz", rows[0].String("name"))
		assert.Equal(t, "Computer Science", rows[0].String("department_name"))
	})

	t.Run("professors matched by department name", func(t *testing.T) {
		rows, err := repo.ListProfessorsByDepartment(ctx, "technology")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana Santos"}, names(rows))
	})

	t.Run("rooms joined with buildings", func(t *testing.T) {
		rows, err := repo.ListRooms(ctx, "301")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Tech Hall", rows[0].String("building_name"))
	})
}

func TestCampusRepository_LoadSchemaMissingTable(t *testing.T) {
	repo := newTestRepo(t, legacySchema[:2])

	err := repo.LoadSchema(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspect rules")
	assert.True(t, repo.HasColumn(entity.TableProfessors, "program"))
}

// 使用真实 SQL 驱动检索引擎
func TestCampusRepository_WithSearchEngine(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, legacySchema)
	require.NoError(t, repo.LoadSchema(ctx, search.DefaultCatalog().Columns()))
	engine := search.NewEngine(repo, nil, search.Options{})

	t.Run("department professors", func(t *testing.T) {
		resp, err := engine.Search(ctx, question.Analyze("who are the professors in BSIT"))
		require.NoError(t, err)

		bucket, ok := resp.Bucket(entity.TableProfessors)
		require.True(t, ok)
		var got []string
		for _, r := range bucket.Results {
			if r.MatchType == search.MatchSpecialized {
				got = append(got, r.Data.String("name"))
			}
		}
		assert.ElementsMatch(t, []string{"Ana Santos", "Carla Reyes"}, got)
	})

	t.Run("room lookup", func(t *testing.T) {
		resp, err := engine.Search(ctx, question.Analyze("where is room 301"))
		require.NoError(t, err)

		bucket, ok := resp.Bucket(entity.TableRooms)
		require.True(t, ok)
		require.NotEmpty(t, bucket.Results)
		assert.Equal(t, "301", bucket.Results[0].Data.String("name"))
	})

	t.Run("generic match", func(t *testing.T) {
		resp, err := engine.Search(ctx, question.Analyze("registrar enrollment"))
		require.NoError(t, err)

		bucket, ok := resp.Bucket(entity.TableOffices)
		require.True(t, ok)
		require.Len(t, bucket.Results, 1)
		assert.Equal(t, "Registrar", bucket.Results[0].Data.String("name"))
	})
}
