package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/gaamingzhang/qa_coverage/internal/models/utils"
)

// DefaultOpenAIModel 默认的 OpenAI 嵌入模型
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIProvider 通过 OpenAI 兼容接口生成向量
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	batchSize int
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider 创建 OpenAI 嵌入服务
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > 2048 {
		cfg.BatchSize = 2048
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(config),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}, nil
}

// Name 返回服务名称
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// MaxBatchSize 返回单次请求的最大文本数
func (p *OpenAIProvider) MaxBatchSize() int {
	return p.batchSize
}

// EmbedBatch 分批请求向量，按响应中的 Index 还原顺序
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))
	for _, batch := range utils.ChunkSlice(texts, p.batchSize) {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(p.model),
		})
		if err != nil {
			return nil, fmt.Errorf("openai create embeddings: %w", err)
		}
		vectors := make([][]float32, len(batch))
		for _, data := range resp.Data {
			if data.Index < 0 || data.Index >= len(batch) {
				return nil, fmt.Errorf("openai returned embedding index %d out of range", data.Index)
			}
			vectors[data.Index] = data.Embedding
		}
		for i, v := range vectors {
			if v == nil {
				return nil, fmt.Errorf("openai returned no embedding for input %d", i)
			}
		}
		result = append(result, vectors...)
	}
	return result, nil
}
