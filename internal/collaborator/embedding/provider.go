// Package embedding 提供向量嵌入服务及基于余弦相似度的语义相似度函数
package embedding

import (
	"context"
	"fmt"
)

// Provider 向量嵌入服务
type Provider interface {
	// EmbedBatch 为多段文本生成向量，返回顺序与输入一致
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Name 返回服务名称
	Name() string
	// MaxBatchSize 单次请求的最大文本数
	MaxBatchSize() int
}

// 支持的服务类型
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config 嵌入服务配置
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	BatchSize int    `yaml:"batch_size"`
}

// NewProvider 根据配置创建嵌入服务
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaProvider(cfg)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
