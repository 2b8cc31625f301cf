package wire

import (
	"context"

	"campus-qa-api/internal/application/answer"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/config"
	"campus-qa-api/internal/domain/repository"
	"campus-qa-api/internal/infrastructure/llm"
	"campus-qa-api/internal/infrastructure/persistence/postgres"
	"campus-qa-api/internal/infrastructure/persistence/redis"
	"campus-qa-api/internal/interfaces/http/middleware"
	"campus-qa-api/pkg/logger"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideCampusRepository 提供校园数据仓储，按配置在启动时检查表结构
func ProvideCampusRepository(ctx context.Context, cfg *config.Config, client *postgres.Client) *postgres.CampusRepository {
	repo := postgres.NewCampusRepository(client)
	if cfg.Search.InspectSchema {
		if err := repo.LoadSchema(ctx, search.DefaultCatalog().Columns()); err != nil {
			logger.Warn(ctx, "campus schema inspection incomplete, documented columns will be used", "error", err.Error())
		}
	}
	return repo
}

// ProvideRedisClientOptional Redis 未启用或不可达时返回 nil，不阻塞启动
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter 没有 Redis 时返回 nil（不限流）
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideSearchEngine 提供检索引擎
func ProvideSearchEngine(cfg *config.Config, repo repository.CampusRepository) *search.Engine {
	return search.NewEngine(repo, search.DefaultCatalog(), search.Options{
		VariantLimit:   cfg.Search.VariantLimit,
		BucketSize:     cfg.Search.BucketSize,
		ProfessorLimit: cfg.Search.ProfessorLimit,
		QueryTimeout:   cfg.Search.QueryTimeout,
	})
}

// ProvideChatGenerator 使用默认提供商的生成器
func ProvideChatGenerator(models llm.ModelProvider) *llm.ChatGenerator {
	return llm.NewChatGenerator(models, "")
}

// ProvideGateway 提供带超时的大模型网关
func ProvideGateway(cfg *config.Config, gen answer.TextGenerator) *answer.Gateway {
	return answer.NewGateway(gen, cfg.Answer.AITimeout())
}

// ProvideComposer 提供回答组装器
func ProvideComposer(cfg *config.Config, searcher answer.Searcher, gateway *answer.Gateway) *answer.Composer {
	return answer.NewComposer(searcher, gateway, answer.Options{
		MaxContextRows: cfg.Answer.MaxContextRows,
	})
}
