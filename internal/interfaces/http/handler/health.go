package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campus-qa-api/internal/infrastructure/persistence/postgres"
	"campus-qa-api/internal/infrastructure/persistence/redis"

	apperrors "campus-qa-api/pkg/errors"
)

const readinessTimeout = 2 * time.Second

// HealthChecker 依赖健康检查
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// AIStatus 大模型配置状态
type AIStatus interface {
	AIEnabled() bool
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg    HealthChecker
	redis HealthChecker
	ai    AIStatus
}

// NewHealthHandler 创建健康检查处理器，redisClient 可以为 nil
func NewHealthHandler(pg *postgres.Client, redisClient *redis.Client, ai AIStatus) *HealthHandler {
	h := &HealthHandler{ai: ai}
	if pg != nil {
		h.pg = pg
	}
	if redisClient != nil {
		h.redis = redisClient
	}
	return h
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready 就绪检查接口。Postgres 必需；Redis 与大模型只报告状态，不影响就绪。
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]*readinessCheck{}
	ready := true

	if h.pg == nil {
		checks["postgres"] = &readinessCheck{Status: "missing", Error: "postgres client not configured"}
		ready = false
	} else {
		checks["postgres"] = runCheck(ctx, h.pg, "error")
		ready = checks["postgres"].Status == "ok"
	}

	if h.redis == nil {
		checks["redis"] = &readinessCheck{Status: "disabled"}
	} else {
		checks["redis"] = runCheck(ctx, h.redis, "degraded")
	}

	if h.ai != nil && h.ai.AIEnabled() {
		checks["llm"] = &readinessCheck{Status: "enabled"}
	} else {
		checks["llm"] = &readinessCheck{Status: "disabled"}
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(apperrors.ErrServiceUnavailable.HTTPStatus, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func runCheck(ctx context.Context, checker HealthChecker, failStatus string) *readinessCheck {
	start := time.Now()
	err := checker.HealthCheck(ctx)
	check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = failStatus
		check.Error = err.Error()
	}
	return check
}
