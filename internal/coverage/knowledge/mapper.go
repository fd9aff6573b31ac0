package knowledge

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/types"
)

// DefaultSimilarityThreshold 语义相似度阈值，严格大于该值视为匹配
const DefaultSimilarityThreshold = 0.5

// Similarity 计算两段文本的语义相似度，返回值应位于 [0, 1]
type Similarity interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// SimilarityFunc 允许普通函数作为 Similarity 使用
type SimilarityFunc func(ctx context.Context, a, b string) (float64, error)

// Similarity 实现 Similarity
func (f SimilarityFunc) Similarity(ctx context.Context, a, b string) (float64, error) {
	return f(ctx, a, b)
}

// MapperConfig 语义映射配置
type MapperConfig struct {
	Threshold   float64
	Concurrency int // 并行处理的问答单元上限，<=0 表示不限制
}

// Mapper 将问答单元映射到其语义匹配的知识点
type Mapper struct {
	cfg        MapperConfig
	similarity Similarity
	// progress 每完成一个问答单元回调一次，可为 nil
	progress func(done int)
}

// NewMapper 创建映射器
func NewMapper(cfg MapperConfig, similarity Similarity) *Mapper {
	return &Mapper{cfg: cfg, similarity: similarity}
}

// OnProgress 设置进度回调，回调可能在多个 goroutine 中被调用
func (m *Mapper) OnProgress(fn func(done int)) *Mapper {
	m.progress = fn
	return m
}

// Map 计算全部 (问答单元, 知识点) 对的相似度并记录超过阈值的匹配
// 结果与顺序执行完全一致：每个问答单元的结果写入各自的位置后再统一汇总
func (m *Mapper) Map(ctx context.Context, units []types.QAUnit, points []types.KnowledgePoint) (*types.Mapping, error) {
	rows := make([][]types.MappingEntry, len(units))
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	if m.cfg.Concurrency > 0 {
		g.SetLimit(m.cfg.Concurrency)
	}
	for qi := range units {
		g.Go(func() error {
			text := units[qi].Text()
			entries := make([]types.MappingEntry, 0)
			for pi, point := range points {
				if err := gctx.Err(); err != nil {
					return err
				}
				score, err := m.similarity.Similarity(gctx, text, point.Text)
				if err != nil {
					return apperrors.NewCollaboratorError(apperrors.CollaboratorSimilarity,
						fmt.Sprintf("qa %s / point %d", units[qi].ID(), pi), err)
				}
				if math.IsNaN(score) || score < 0 || score > 1 {
					return apperrors.NewCollaboratorError(apperrors.CollaboratorSimilarity,
						fmt.Sprintf("qa %s / point %d", units[qi].ID(), pi),
						fmt.Errorf("similarity %v out of range [0, 1]", score))
				}
				if score > m.cfg.Threshold {
					entries = append(entries, types.MappingEntry{
						KnowledgePointIndex: pi,
						Similarity:          score,
						Priority:            point.Priority,
					})
				}
			}
			rows[qi] = entries
			if m.progress != nil {
				m.progress(int(finished.Add(1)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mapping := &types.Mapping{
		QA:       make([]types.QAMapping, len(units)),
		PerPoint: make([][]types.PointMatch, len(points)),
	}
	for pi := range mapping.PerPoint {
		mapping.PerPoint[pi] = []types.PointMatch{}
	}
	for qi, unit := range units {
		mapping.QA[qi] = types.QAMapping{Unit: unit, Matches: rows[qi]}
		for _, entry := range rows[qi] {
			mapping.PerPoint[entry.KnowledgePointIndex] = append(mapping.PerPoint[entry.KnowledgePointIndex], types.PointMatch{
				QAIndex:    qi,
				QAID:       unit.ID(),
				Similarity: entry.Similarity,
			})
		}
	}
	return mapping, nil
}
