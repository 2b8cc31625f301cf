package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"campus-qa-api/internal/infrastructure/persistence/redis"
	"campus-qa-api/internal/interfaces/http/dto"
	"campus-qa-api/pkg/logger"
	"campus-qa-api/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool
	// RequestsPerMinute 每个客户端 IP 每分钟请求数
	RequestsPerMinute int
	// KeyPrefix Redis Key 前缀
	KeyPrefix string
}

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 与路由限流。限流器故障时放行。
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit"
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := redis.BuildClientRateLimitKey(cfg.KeyPrefix, c.ClientIP(), path)

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.RequestsPerMinute, time.Minute)
		if err != nil {
			metrics.RateLimiterErrors.Inc()
			logger.Warn(c.Request.Context(), "rate limiter unavailable, request allowed", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			metrics.HTTPRateLimited.WithLabelValues(path).Inc()
			dto.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
