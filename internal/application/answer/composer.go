package answer

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"campus-qa-api/internal/application/question"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/pkg/logger"
	"campus-qa-api/pkg/metrics"
	"campus-qa-api/pkg/tracer"

	apperrors "campus-qa-api/pkg/errors"
)

// Source 回答来源
type Source string

const (
	SourceGreeting Source = "greeting"
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Result 一次回答
type Result struct {
	Answer string `json:"answer"`
	Source Source `json:"source"`
}

// Searcher 校园数据检索能力
type Searcher interface {
	Search(ctx context.Context, a question.Analysis) (search.AggregateResponse, error)
}

// Options 回答组装参数
type Options struct {
	// MaxContextRows 写入提示词的最大行数，0 表示不限制
	MaxContextRows int
}

// Composer 回答组装器
type Composer struct {
	searcher Searcher
	gateway  *Gateway
	opts     Options
}

// NewComposer 创建回答组装器。gateway 为 nil 时始终使用模板回答。
func NewComposer(searcher Searcher, gateway *Gateway, opts Options) *Composer {
	return &Composer{
		searcher: searcher,
		gateway:  gateway,
		opts:     opts,
	}
}

// AIEnabled 判断是否配置了大模型
func (c *Composer) AIEnabled() bool {
	return c.gateway.Available()
}

// Answer 回答问题。大模型不可用、超时或出错时返回模板回答，不会返回错误；
// 只有检索依赖缺失等意外情况才返回 AppError。
func (c *Composer) Answer(ctx context.Context, q string) (Result, error) {
	ctx, span := tracer.Start(ctx, "answer.Composer.Answer")
	defer span.End()

	if IsGreeting(q) {
		span.SetAttributes(attribute.String("answer.source", string(SourceGreeting)))
		metrics.AnswerTotal.WithLabelValues(string(SourceGreeting)).Inc()
		return Result{Answer: GreetingReply, Source: SourceGreeting}, nil
	}

	a, resp, err := c.search(ctx, q)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	prompt := SystemPrompt(BuildContext(resp, c.opts.MaxContextRows))
	text, err := c.gateway.Generate(ctx, prompt, strings.TrimSpace(q))
	if err == nil {
		span.SetAttributes(attribute.String("answer.source", string(SourceAI)))
		metrics.AnswerTotal.WithLabelValues(string(SourceAI)).Inc()
		return Result{Answer: text, Source: SourceAI}, nil
	}

	switch {
	case errors.Is(err, ErrAIUnavailable):
		logger.Debug(ctx, "ai not configured, using fallback answer")
	case errors.Is(err, ErrAITimeout):
		logger.Warn(ctx, "ai call timed out, using fallback answer",
			"timeout_ms", c.gateway.Timeout().Milliseconds())
	default:
		logger.Warn(ctx, "ai call failed, using fallback answer", "error", err.Error())
	}

	span.SetAttributes(attribute.String("answer.source", string(SourceFallback)))
	metrics.AnswerTotal.WithLabelValues(string(SourceFallback)).Inc()
	return Result{Answer: Fallback(resp, a.Entities), Source: SourceFallback}, nil
}

// DebugSearch 返回原始检索聚合结果，不调用大模型
func (c *Composer) DebugSearch(ctx context.Context, q string) (search.AggregateResponse, error) {
	_, resp, err := c.search(ctx, q)
	return resp, err
}

func (c *Composer) search(ctx context.Context, q string) (question.Analysis, search.AggregateResponse, error) {
	a := question.Analyze(q)
	if c.searcher == nil {
		return a, nil, apperrors.Wrap(search.ErrRepositoryRequired, apperrors.CodeInternalError, "campus search is not configured")
	}

	logger.Debug(ctx, "question analyzed",
		"intent", string(a.Intent),
		"keywords", []string(a.Keywords),
		"department", a.Entities.DepartmentCode,
		"room", a.Entities.RoomNumber,
	)

	resp, err := c.searcher.Search(ctx, a)
	if err != nil {
		return a, nil, apperrors.Wrap(err, apperrors.CodeRetrievalFailed, apperrors.ErrRetrievalFailed.Message)
	}
	if resp == nil {
		resp = search.AggregateResponse{}
	}
	return a, resp, nil
}
