// Package config 加载覆盖度评估的 YAML 配置
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gaamingzhang/qa_coverage/internal/collaborator/embedding"
	"github.com/gaamingzhang/qa_coverage/internal/coverage"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/knowledge"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/lexical"
	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/utils/splitter"
)

// Config 应用配置
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Segment    SegmentConfig    `yaml:"segment"`
	Sketch     SketchConfig     `yaml:"sketch"`
	LSH        LSHConfig        `yaml:"lsh"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Embedding  embedding.Config `yaml:"embedding"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// LogConfig 日志配置
type LogConfig struct {
	Mode  string `yaml:"mode"` // development | production
	Level string `yaml:"level"`
}

// SegmentConfig 文档分段配置
type SegmentConfig struct {
	MinLength     int `yaml:"min_length"`
	MinParagraphs int `yaml:"min_paragraphs"`
}

// SketchConfig 签名配置
type SketchConfig struct {
	NumHashes int    `yaml:"num_hashes"`
	Seed      uint64 `yaml:"seed"`
}

// LSHConfig 分桶索引配置
type LSHConfig struct {
	Threshold           float64 `yaml:"threshold"`
	FalsePositiveWeight float64 `yaml:"false_positive_weight"`
	FalseNegativeWeight float64 `yaml:"false_negative_weight"`
}

// KnowledgeConfig 知识点映射配置
type KnowledgeConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	HighWeight          float64 `yaml:"high_weight"`
	NormalWeight        float64 `yaml:"normal_weight"`
}

// ExtractorConfig 知识点抽取配置
type ExtractorConfig struct {
	UseLLM             bool   `yaml:"use_llm"`
	Model              string `yaml:"model"`
	OllamaURL          string `yaml:"ollama_url"`
	KeywordsPerSegment int    `yaml:"keywords_per_segment"`
	MinPhraseLength    int    `yaml:"min_phrase_length"`
	MinSegmentChars    int    `yaml:"min_segment_chars"`
}

// EvaluationConfig 运行配置
type EvaluationConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// Default 返回全部使用默认值的配置
func Default() *Config {
	cfg := base()
	applyDefaults(cfg)
	return cfg
}

// base 返回零值有意义的字段已预置默认值的配置
// segment.min_length 为 0 表示不按长度过滤段落，因此在解析 YAML 前预置
func base() *Config {
	return &Config{Segment: SegmentConfig{MinLength: splitter.DefaultMinLength}}
}

// Load 读取配置文件，展开 ${ENV}，应用环境变量覆盖与默认值
// path 为空时只使用环境变量与默认值
func Load(path string) (*Config, error) {
	cfg := base()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Segment.MinParagraphs == 0 {
		cfg.Segment.MinParagraphs = 5
	}
	if cfg.Sketch.NumHashes == 0 {
		cfg.Sketch.NumHashes = 128
	}
	if cfg.Sketch.Seed == 0 {
		cfg.Sketch.Seed = 1
	}
	if cfg.LSH.Threshold == 0 {
		cfg.LSH.Threshold = 0.3
	}
	if cfg.LSH.FalsePositiveWeight == 0 && cfg.LSH.FalseNegativeWeight == 0 {
		cfg.LSH.FalsePositiveWeight = 0.5
		cfg.LSH.FalseNegativeWeight = 0.5
	}
	if cfg.Knowledge.SimilarityThreshold == 0 {
		cfg.Knowledge.SimilarityThreshold = knowledge.DefaultSimilarityThreshold
	}
	if cfg.Knowledge.HighWeight == 0 {
		cfg.Knowledge.HighWeight = knowledge.DefaultHighWeight
	}
	if cfg.Knowledge.NormalWeight == 0 {
		cfg.Knowledge.NormalWeight = knowledge.DefaultNormalWeight
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = embedding.ProviderOllama
	}
	if cfg.Extractor.Model == "" {
		cfg.Extractor.Model = "qwen2.5:7b"
	}
	if cfg.Extractor.KeywordsPerSegment == 0 {
		cfg.Extractor.KeywordsPerSegment = 5
	}
	if cfg.Extractor.MinPhraseLength == 0 {
		cfg.Extractor.MinPhraseLength = 2
	}
	if cfg.Extractor.MinSegmentChars == 0 {
		cfg.Extractor.MinSegmentChars = cfg.Segment.MinLength
	}
	if cfg.Evaluation.Timeout == 0 {
		cfg.Evaluation.Timeout = 30 * time.Minute
	}
	if cfg.Evaluation.Concurrency == 0 {
		cfg.Evaluation.Concurrency = 8
	}
}

// applyEnv 使用环境变量覆盖配置
func applyEnv(cfg *Config) error {
	floats := []struct {
		key    string
		target *float64
	}{
		{"QA_COVERAGE_LSH_THRESHOLD", &cfg.LSH.Threshold},
		{"QA_COVERAGE_SIMILARITY_THRESHOLD", &cfg.Knowledge.SimilarityThreshold},
	}
	for _, f := range floats {
		raw := os.Getenv(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return apperrors.NewConfigError(fmt.Sprintf("invalid %s: %q", f.key, raw))
		}
		*f.target = v
	}
	if v := os.Getenv("QA_COVERAGE_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("QA_COVERAGE_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = v
	}
	return nil
}

// Validate 检查配置取值范围
func (c *Config) Validate() error {
	if c.LSH.Threshold <= 0 || c.LSH.Threshold > 1 {
		return apperrors.NewConfigError(fmt.Sprintf("lsh.threshold must be in (0, 1], got %v", c.LSH.Threshold))
	}
	if c.Knowledge.SimilarityThreshold <= 0 || c.Knowledge.SimilarityThreshold >= 1 {
		return apperrors.NewConfigError(fmt.Sprintf("knowledge.similarity_threshold must be in (0, 1), got %v",
			c.Knowledge.SimilarityThreshold))
	}
	if c.Segment.MinLength < 0 {
		return apperrors.NewConfigError(fmt.Sprintf("segment.min_length must not be negative, got %d", c.Segment.MinLength))
	}
	if c.Sketch.NumHashes <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("sketch.num_hashes must be positive, got %d", c.Sketch.NumHashes))
	}
	if c.Knowledge.HighWeight <= 0 || c.Knowledge.NormalWeight <= 0 {
		return apperrors.NewConfigError("knowledge weights must be positive")
	}
	return nil
}

// EngineConfig 转换为评估引擎配置
func (c *Config) EngineConfig() coverage.Config {
	return coverage.Config{
		Lexical: lexical.Config{
			MinSegmentLength:    c.Segment.MinLength,
			MinParagraphs:       c.Segment.MinParagraphs,
			NumHashes:           c.Sketch.NumHashes,
			Seed:                c.Sketch.Seed,
			Threshold:           c.LSH.Threshold,
			FalsePositiveWeight: c.LSH.FalsePositiveWeight,
			FalseNegativeWeight: c.LSH.FalseNegativeWeight,
			Concurrency:         c.Evaluation.Concurrency,
		},
		SimilarityThreshold: c.Knowledge.SimilarityThreshold,
		MappingConcurrency:  c.Evaluation.Concurrency,
		Weights:             knowledge.Weights{High: c.Knowledge.HighWeight, Normal: c.Knowledge.NormalWeight},
		Timeout:             c.Evaluation.Timeout,
	}
}
