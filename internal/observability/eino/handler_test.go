package eino

import (
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"campus-qa-api/internal/domain/service"
	"campus-qa-api/pkg/metrics"
)

func TestChatModelCallbackHandler(t *testing.T) {
	h := newChatModelCallbackHandler()
	base := service.WithWorkflowProvider(context.Background(), "campus_answer", "obs-test")

	t.Run("success records calls and tokens", func(t *testing.T) {
		ctx := h.OnStart(base, &einocb.RunInfo{Name: "answer", Type: "OpenAI"},
			&model.CallbackInput{Config: &model.Config{Model: "gpt-obs"}})

		assert.NotNil(t, ctx.Value(startTimeKey{}))
		h.OnEnd(ctx, nil, &model.CallbackOutput{
			TokenUsage: &model.TokenUsage{PromptTokens: 120, CompletionTokens: 30},
		})

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("obs-test", "gpt-obs", "success")))
		assert.Equal(t, 120.0, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("obs-test", "gpt-obs", "prompt")))
		assert.Equal(t, 30.0, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues("obs-test", "gpt-obs", "completion")))
	})

	t.Run("error uses model from start", func(t *testing.T) {
		ctx := h.OnStart(base, nil, &model.CallbackInput{Config: &model.Config{Model: "gpt-err"}})
		h.OnError(ctx, nil, errors.New("upstream 500"))

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("obs-test", "gpt-err", "error")))
	})

	t.Run("cancelled call", func(t *testing.T) {
		cctx, cancel := context.WithCancel(base)
		ctx := h.OnStart(cctx, nil, &model.CallbackInput{Config: &model.Config{Model: "gpt-cancel"}})
		cancel()
		h.OnError(ctx, nil, context.Canceled)

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LLMCallTotal.WithLabelValues("obs-test", "gpt-cancel", "cancelled")))
	})
}

func TestElapsedSecondsWithoutStart(t *testing.T) {
	assert.Zero(t, elapsedSeconds(context.Background()))
}
