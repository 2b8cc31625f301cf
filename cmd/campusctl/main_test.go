package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campus-qa-api/internal/application/answer"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/config"
	"campus-qa-api/internal/infrastructure/persistence/postgres"
)

var fixture = []string{
	`CREATE TABLE departments (id INTEGER PRIMARY KEY, code TEXT, name TEXT, description TEXT)`,
	`CREATE TABLE professors (id INTEGER PRIMARY KEY, name TEXT, position TEXT, email TEXT, department TEXT, program TEXT)`,
	`CREATE TABLE buildings (id INTEGER PRIMARY KEY, name TEXT, description TEXT, location TEXT)`,
	`CREATE TABLE rooms (id INTEGER PRIMARY KEY, name TEXT, type TEXT, status TEXT, building TEXT, floor INTEGER)`,
	`CREATE TABLE offices (id INTEGER PRIMARY KEY, name TEXT, description TEXT, location TEXT)`,
	`CREATE TABLE rules (id INTEGER PRIMARY KEY, title TEXT, category TEXT)`,
	`CREATE TABLE settings (id INTEGER PRIMARY KEY, key TEXT, value TEXT, description TEXT)`,
	`INSERT INTO rules VALUES (1, 'Wear your ID inside campus', 'conduct')`,
	`INSERT INTO rooms VALUES (1, '301', 'lecture', 'available', 'Tech Hall', 3)`,
}

func testDeps(t *testing.T) deps {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	for _, stmt := range fixture {
		require.NoError(t, db.Exec(stmt).Error)
	}
	client := postgres.NewClientWithDB(db)

	return deps{
		composer: func(ctx context.Context, cfg *config.Config) (*answer.Composer, func(), error) {
			repo := postgres.NewCampusRepository(client)
			engine := search.NewEngine(repo, nil, search.Options{QueryTimeout: cfg.Search.QueryTimeout})
			return answer.NewComposer(engine, answer.NewGateway(nil, cfg.Answer.AITimeout()), answer.Options{}), func() {}, nil
		},
		postgres: func(*config.Config) (*postgres.Client, func(), error) {
			return client, func() {}, nil
		},
	}
}

func run(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(d)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAskCommand(t *testing.T) {
	d := testDeps(t)

	out, err := run(t, d, "ask", "miss", "mo")
	require.NoError(t, err)
	assert.Equal(t, answer.GreetingReply+"\n", out)

	out, err = run(t, d, "ask", "--show-source", "what", "are", "the", "rules")
	require.NoError(t, err)
	assert.Equal(t, "[fallback] Wear your ID inside campus\n", out)
}

func TestAskCommandRequiresQuestion(t *testing.T) {
	_, err := run(t, testDeps(t), "ask")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	d := testDeps(t)

	out, err := run(t, d, "search", "where", "is", "room", "301")
	require.NoError(t, err)

	var resp search.AggregateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	bucket, ok := resp.Bucket("rooms")
	require.True(t, ok)
	require.NotEmpty(t, bucket.Results)
	assert.Equal(t, "301", bucket.Results[0].Data.String("name"))

	out, err = run(t, d, "search", "--summary", "where", "is", "room", "301")
	require.NoError(t, err)
	assert.Contains(t, out, "rooms")
	assert.Contains(t, out, "top_score=100")
}

func TestSchemaCommand(t *testing.T) {
	out, err := run(t, testDeps(t), "schema")
	require.NoError(t, err)

	assert.Contains(t, out, "MISSING COLUMNS")
	assert.Regexp(t, `rules\s+6\s+description`, out)
	assert.Regexp(t, `rooms\s+4\s+-`, out)
}
