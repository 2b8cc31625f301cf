//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"campus-qa-api/internal/application/answer"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/config"
	"campus-qa-api/internal/domain/repository"
	"campus-qa-api/internal/infrastructure/llm"
	"campus-qa-api/internal/infrastructure/persistence/postgres"
	"campus-qa-api/internal/interfaces/http/handler"
	"campus-qa-api/internal/interfaces/http/router"
)

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	ProvideCampusRepository,
	wire.Bind(new(repository.CampusRepository), new(*postgres.CampusRepository)),
)

// RedisSet 可选 Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClientOptional,
	ProvideRateLimiter,
)

// AnswerSet 检索与回答提供者集合
var AnswerSet = wire.NewSet(
	ProvideSearchEngine,
	llm.NewEinoFactory,
	wire.Bind(new(llm.ModelProvider), new(*llm.EinoFactory)),
	ProvideChatGenerator,
	wire.Bind(new(answer.TextGenerator), new(*llm.ChatGenerator)),
	ProvideGateway,
	wire.Bind(new(answer.Searcher), new(*search.Engine)),
	ProvideComposer,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	wire.Bind(new(handler.Answerer), new(*answer.Composer)),
	wire.Bind(new(handler.AIStatus), new(*answer.Composer)),
	handler.NewAskHandler,
	handler.NewHealthHandler,
	router.New,
)

// InitializeApp 初始化 HTTP 应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		AnswerSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeComposer 初始化回答组装器（命令行工具使用，不依赖 Redis）
func InitializeComposer(ctx context.Context, cfg *config.Config) (*answer.Composer, func(), error) {
	wire.Build(
		PostgresSet,
		AnswerSet,
	)
	return nil, nil, nil
}
