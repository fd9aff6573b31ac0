package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/gaamingzhang/qa_coverage/internal/collaborator/embedding"
	"github.com/gaamingzhang/qa_coverage/internal/collaborator/extractor"
	"github.com/gaamingzhang/qa_coverage/internal/collaborator/tokenizer"
	"github.com/gaamingzhang/qa_coverage/internal/config"
	"github.com/gaamingzhang/qa_coverage/internal/coverage"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/knowledge"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
	"github.com/gaamingzhang/qa_coverage/internal/event"
	"github.com/gaamingzhang/qa_coverage/internal/logger"
	"github.com/gaamingzhang/qa_coverage/internal/metrics"
)

// buildContainer 注册评估所需的全部组件
func buildContainer(cfg *config.Config) (*dig.Container, error) {
	c := dig.New()
	providers := []any{
		func() *config.Config { return cfg },
		newLogger,
		prometheus.NewRegistry,
		func(reg *prometheus.Registry) *metrics.Metrics { return metrics.NewMetrics(reg) },
		event.NewEventBus,
		newTokenizer,
		newSimilarity,
		newExtractor,
		newEngine,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, fmt.Errorf("register provider: %w", err)
		}
	}
	return c, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(cfg.Log.Mode, cfg.Log.Level)
}

func newTokenizer() sketch.Tokenizer {
	return tokenizer.NewJieba(true)
}

func newSimilarity(cfg *config.Config) (knowledge.Similarity, error) {
	provider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	return embedding.NewSimilarity(provider), nil
}

func newExtractor(cfg *config.Config, log *logger.Logger) (coverage.Extractor, error) {
	rule := extractor.NewRule(extractor.RuleConfig{
		KeywordsPerSegment: cfg.Extractor.KeywordsPerSegment,
		MinPhraseLength:    cfg.Extractor.MinPhraseLength,
	})
	if !cfg.Extractor.UseLLM {
		return rule, nil
	}

	client, err := newOllamaClient(cfg.Extractor.OllamaURL)
	if err != nil {
		return nil, err
	}
	log.Info("llm knowledge extraction enabled", "model", cfg.Extractor.Model)
	llm := extractor.NewLLM(extractor.LLMConfig{
		Model:           cfg.Extractor.Model,
		MinSegmentChars: cfg.Extractor.MinSegmentChars,
	}, client)
	return extractor.Combined{rule, llm}, nil
}

// newOllamaClient 为空地址时按 OLLAMA_HOST 创建客户端
// 配置的地址可省略协议，例如 127.0.0.1:11434
func newOllamaClient(rawURL string) (*api.Client, error) {
	if strings.TrimSpace(rawURL) == "" {
		return api.ClientFromEnvironment()
	}
	base, err := embedding.ParseOllamaURL(rawURL)
	if err != nil {
		return nil, err
	}
	return api.NewClient(base, &http.Client{Timeout: 5 * time.Minute}), nil
}

func newEngine(cfg *config.Config, tok sketch.Tokenizer, sim knowledge.Similarity, ext coverage.Extractor,
	log *logger.Logger, m *metrics.Metrics, bus *event.EventBus,
) (*coverage.Engine, error) {
	return coverage.NewEngine(cfg.EngineConfig(), tok, sim, ext,
		coverage.WithLogger(log),
		coverage.WithMetrics(m),
		coverage.WithEventBus(bus),
	)
}
