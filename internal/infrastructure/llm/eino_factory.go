// Package llm 提供基于 Eino 的大模型客户端
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"campus-qa-api/internal/config"
)

// ErrProviderNotConfigured 提供商不存在或缺少凭证
var ErrProviderNotConfigured = errors.New("llm provider is not configured")

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// ProviderName 解析提供商名称，空串表示默认提供商
func (f *EinoFactory) ProviderName(name string) string {
	if name == "" {
		return f.config.DefaultProvider
	}
	return name
}

// Configured 判断提供商是否存在且配置了凭证
func (f *EinoFactory) Configured(name string) bool {
	p, ok := f.config.Providers[f.ProviderName(name)]
	return ok && strings.TrimSpace(p.APIKey) != ""
}

// ModelName 返回提供商配置的模型名
func (f *EinoFactory) ModelName(name string) string {
	return f.config.Providers[f.ProviderName(name)].Model
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = f.ProviderName(name)

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	if !f.Configured(name) {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}
	providerCfg := f.config.Providers[name]

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   &providerCfg.MaxTokens,
		Temperature: ptrFloat32(float32(providerCfg.Temperature)),
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func ptrFloat32(f float32) *float32 {
	return &f
}
