// Package answer 将检索结果组织为回答：优先调用大模型，超时或失败时降级为模板回答
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-qa-api/pkg/metrics"
)

// DefaultAITimeout 大模型调用的默认超时
const DefaultAITimeout = 8000 * time.Millisecond

var (
	// ErrAIUnavailable 未配置大模型客户端或凭证
	ErrAIUnavailable = errors.New("ai text generation is not configured")
	// ErrAITimeout 大模型调用未在超时窗口内完成
	ErrAITimeout = errors.New("ai text generation timed out")
	// ErrEmptyCompletion 大模型返回空文本
	ErrEmptyCompletion = errors.New("ai text generation returned empty completion")
)

// TextGenerator 外部文本生成能力
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, question string) (string, error)
}

// availability 可选接口：生成器可声明自身是否已配置
type availability interface {
	Available() bool
}

// Gateway 带超时竞速的大模型调用网关
type Gateway struct {
	gen     TextGenerator
	timeout time.Duration
}

// NewGateway 创建网关，gen 为 nil 时网关只会返回 ErrAIUnavailable
func NewGateway(gen TextGenerator, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultAITimeout
	}
	return &Gateway{gen: gen, timeout: timeout}
}

// Timeout 返回调用超时
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

// Available 判断是否可以调用大模型
func (g *Gateway) Available() bool {
	if g == nil || g.gen == nil {
		return false
	}
	if a, ok := g.gen.(availability); ok {
		return a.Available()
	}
	return true
}

type completion struct {
	text string
	err  error
}

// Generate 在独立 goroutine 中调用生成器，并与计时器竞速。
// 超时后取消调用上下文并立即返回 ErrAITimeout，迟到的结果写入缓冲通道后被丢弃。
func (g *Gateway) Generate(ctx context.Context, systemPrompt, question string) (string, error) {
	if !g.Available() {
		metrics.AIGatewayTotal.WithLabelValues("unavailable").Inc()
		return "", ErrAIUnavailable
	}

	start := time.Now()
	defer func() {
		metrics.AIGatewayDuration.Observe(time.Since(start).Seconds())
	}()

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: fmt.Errorf("text generator panicked: %v", r)}
			}
		}()
		text, err := g.gen.Generate(callCtx, systemPrompt, question)
		done <- completion{text: text, err: err}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			metrics.AIGatewayTotal.WithLabelValues("error").Inc()
			return "", fmt.Errorf("generate answer: %w", out.err)
		}
		if strings.TrimSpace(out.text) == "" {
			metrics.AIGatewayTotal.WithLabelValues("error").Inc()
			return "", ErrEmptyCompletion
		}
		metrics.AIGatewayTotal.WithLabelValues("ok").Inc()
		return out.text, nil
	case <-timer.C:
		metrics.AIGatewayTotal.WithLabelValues("timeout").Inc()
		return "", ErrAITimeout
	case <-ctx.Done():
		metrics.AIGatewayTotal.WithLabelValues("error").Inc()
		return "", ctx.Err()
	}
}
