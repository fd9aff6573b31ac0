package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gaamingzhang/qa_coverage/internal/models/utils"
)

// CosineSimilarity 计算两个向量的余弦相似度
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, errors.New("different length vectors")
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, errors.New("divide by zero")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Similarity 基于向量余弦的语义相似度，负值截断为 0
// 每段文本只请求一次向量，缓存仅在单个实例内有效
type Similarity struct {
	provider Provider

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewSimilarity 创建语义相似度函数
func NewSimilarity(provider Provider) *Similarity {
	return &Similarity{provider: provider, cache: make(map[string][]float32)}
}

// Prepare 批量预取文本向量，已缓存的文本不会重复请求
func (s *Similarity) Prepare(ctx context.Context, texts []string) error {
	s.mu.RLock()
	seen := make(map[string]struct{}, len(texts))
	missing := make([]string, 0, len(texts))
	for _, text := range texts {
		if _, ok := s.cache[text]; ok {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		missing = append(missing, text)
	}
	s.mu.RUnlock()
	if len(missing) == 0 {
		return nil
	}

	vectors, err := s.provider.EmbedBatch(ctx, missing)
	if err != nil {
		return err
	}
	if len(vectors) != len(missing) {
		return fmt.Errorf("%s returned %d embeddings for %d texts", s.provider.Name(), len(vectors), len(missing))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, text := range missing {
		s.cache[text] = vectors[i]
	}
	return nil
}

// Similarity 计算两段文本的相似度，结果位于 [0, 1]
func (s *Similarity) Similarity(ctx context.Context, a, b string) (float64, error) {
	vectors, err := s.vectors(ctx, a, b)
	if err != nil {
		return 0, err
	}
	score, err := CosineSimilarity(vectors[0], vectors[1])
	if err != nil {
		return 0, err
	}
	return math.Max(0, math.Min(1, score)), nil
}

func (s *Similarity) vectors(ctx context.Context, texts ...string) ([][]float32, error) {
	if err := s.Prepare(ctx, texts); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.MapSlice(texts, func(text string) []float32 { return s.cache[text] }), nil
}
