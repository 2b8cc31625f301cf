package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"campus-qa-api/internal/domain/service"

	apperrors "campus-qa-api/pkg/errors"
)

// WorkflowCampusAnswer 回答链路的工作流标识，用于指标与追踪
const WorkflowCampusAnswer = "campus_answer"

// ModelProvider 按名称提供 ChatModel
type ModelProvider interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
	Configured(name string) bool
	ProviderName(name string) string
}

// ChatGenerator 将 Eino ChatModel 适配为 "系统提示词 + 问题 -> 文本" 的生成能力
type ChatGenerator struct {
	models   ModelProvider
	provider string
}

// NewChatGenerator 创建生成器，provider 为空时使用默认提供商
func NewChatGenerator(models ModelProvider, provider string) *ChatGenerator {
	return &ChatGenerator{models: models, provider: provider}
}

// Available 提供商缺少凭证时返回 false，调用方据此直接走降级路径
func (g *ChatGenerator) Available() bool {
	return g != nil && g.models != nil && g.models.Configured(g.provider)
}

// Generate 发送 system + user 两条消息并返回模型文本，调用失败包装为 CodeLLMCallFailed
func (g *ChatGenerator) Generate(ctx context.Context, systemPrompt, question string) (string, error) {
	provider := g.models.ProviderName(g.provider)
	ctx = service.WithWorkflowProvider(ctx, WorkflowCampusAnswer, provider)

	chatModel, err := g.models.Get(ctx, provider)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMCallFailed, apperrors.ErrLLMCallFailed.Message)
	}

	out, err := chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(question),
	})
	if err != nil {
		return "", apperrors.Wrap(fmt.Errorf("chat model %s: %w", provider, err), apperrors.CodeLLMCallFailed, apperrors.ErrLLMCallFailed.Message)
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}
