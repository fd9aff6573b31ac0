package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/gaamingzhang/qa_coverage/internal/models/utils"
)

// DefaultOllamaModel 默认的 ollama 嵌入模型
const DefaultOllamaModel = "nomic-embed-text"

// OllamaProvider 通过 ollama 的 /api/embed 接口生成向量
type OllamaProvider struct {
	client    *api.Client
	model     string
	batchSize int
}

var _ Provider = (*OllamaProvider)(nil)

// NewOllamaProvider 创建 ollama 嵌入服务
// BaseURL 为空时从 OLLAMA_HOST 环境变量读取
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	var client *api.Client
	if cfg.BaseURL == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		client = c
	} else {
		base, err := ParseOllamaURL(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		client = api.NewClient(base, &http.Client{Timeout: 60 * time.Second})
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	return &OllamaProvider{client: client, model: cfg.Model, batchSize: cfg.BatchSize}, nil
}

// ParseOllamaURL 解析 ollama 服务地址，缺省协议时补全为 http
// 与 OLLAMA_HOST 一致，接受 127.0.0.1:11434 这样的写法
func ParseOllamaURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", raw, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q: missing host", raw)
	}
	return base, nil
}

// Name 返回服务名称
func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

// MaxBatchSize 返回单次请求的最大文本数
func (p *OllamaProvider) MaxBatchSize() int {
	return p.batchSize
}

// EmbedBatch 分批请求向量
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))
	for _, batch := range utils.ChunkSlice(texts, p.batchSize) {
		resp, err := p.client.Embed(ctx, &api.EmbedRequest{
			Model: p.model,
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embed: %w", err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(batch))
		}
		result = append(result, resp.Embeddings...)
	}
	return result, nil
}
