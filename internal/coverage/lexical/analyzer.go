// Package lexical 基于 MinHash + LSH 计算段落与问答对之间的词汇重叠覆盖
package lexical

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gaamingzhang/qa_coverage/internal/coverage/lsh"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/logger"
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
	"github.com/gaamingzhang/qa_coverage/internal/utils/splitter"
)

// PreviewLength 段落明细中预览文本的最大字符数
const PreviewLength = 100

// Config 词汇覆盖分析配置
type Config struct {
	MinSegmentLength    int     // 段落最小字符数
	MinParagraphs       int     // 触发单换行回退的段落数阈值
	NumHashes           int     // 签名长度
	Seed                uint64  // 哈希函数族种子
	Threshold           float64 // LSH 的 Jaccard 阈值
	FalsePositiveWeight float64
	FalseNegativeWeight float64
	Concurrency         int // 并行构建签名的上限，<=0 表示不限制
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MinSegmentLength:    splitter.DefaultMinLength,
		MinParagraphs:       splitter.DefaultMinParagraphs,
		NumHashes:           sketch.DefaultNumHashes,
		Seed:                sketch.DefaultSeed,
		Threshold:           lsh.DefaultThreshold,
		FalsePositiveWeight: lsh.DefaultWeight,
		FalseNegativeWeight: lsh.DefaultWeight,
		Concurrency:         8,
	}
}

// Result 词汇覆盖分析的结果
type Result struct {
	Stats      *types.CoverageStats
	Segments   []types.DocumentSegment
	Units      []types.QAUnit
	Paragraphs []types.ParagraphDetail
	QADetails  []types.QADetail
}

// Analyzer 词汇覆盖分析器，不在多次调用之间保存状态
type Analyzer struct {
	cfg     Config
	builder *sketch.Builder
	log     *logger.Logger
}

// NewAnalyzer 创建分析器
func NewAnalyzer(cfg Config, tokenizer sketch.Tokenizer, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Analyzer{
		cfg:     cfg,
		builder: sketch.NewBuilder(tokenizer, cfg.NumHashes, cfg.Seed),
		log:     log,
	}
}

// Analyze 对文档与问答分组执行词汇覆盖分析
// 段落或问答单元数量为 0 时各项比率为 0
func (a *Analyzer) Analyze(ctx context.Context, document string, groups []types.TopicGroup) (*Result, error) {
	return a.AnalyzeSegments(ctx, a.Segment(document), groups)
}

// Segment 按分析器配置切分文档
func (a *Analyzer) Segment(document string) []types.DocumentSegment {
	return Segment(document, a.cfg.MinSegmentLength, a.cfg.MinParagraphs)
}

// AnalyzeSegments 对已切分的段落执行词汇覆盖分析
func (a *Analyzer) AnalyzeSegments(ctx context.Context, segments []types.DocumentSegment, groups []types.TopicGroup) (*Result, error) {
	units := types.FlattenQAGroups(groups)

	segmentTexts := make([]string, len(segments))
	for i, seg := range segments {
		segmentTexts[i] = seg.Text
	}
	segmentSketches, err := a.buildAll(ctx, segmentTexts, func(i int) string {
		return fmt.Sprintf("segment %d", i)
	})
	if err != nil {
		return nil, err
	}

	unitTexts := make([]string, len(units))
	for i, unit := range units {
		unitTexts[i] = unit.Text()
	}
	unitSketches, err := a.buildAll(ctx, unitTexts, func(i int) string {
		return "qa " + units[i].ID()
	})
	if err != nil {
		return nil, err
	}

	index, err := lsh.NewIndexWithConfig(lsh.Config{
		Threshold:           a.cfg.Threshold,
		NumHashes:           a.builder.NumHashes(),
		FalsePositiveWeight: a.cfg.FalsePositiveWeight,
		FalseNegativeWeight: a.cfg.FalseNegativeWeight,
	})
	if err != nil {
		return nil, apperrors.NewConfigError(err.Error())
	}
	for i, s := range segmentSketches {
		if err := index.Insert(i, s); err != nil {
			return nil, apperrors.NewInternalError(err.Error())
		}
	}

	stats := types.NewCoverageStats(len(segments), len(units))
	for qa, s := range unitSketches {
		for _, paragraph := range index.Query(s) {
			stats.Link(paragraph, qa)
		}
	}
	stats.Finalize()

	bands, rows := index.Params()
	a.log.Debug("lexical coverage computed",
		"segments", len(segments),
		"qa_units", len(units),
		"bands", bands,
		"rows", rows,
		"coverage_rate", stats.CoverageRate,
		"qa_match_rate", stats.QAMatchRate,
	)

	return &Result{
		Stats:      stats,
		Segments:   segments,
		Units:      units,
		Paragraphs: paragraphDetails(segments, stats),
		QADetails:  qaDetails(units, stats),
	}, nil
}

// buildAll 并行构建签名，结果按输入顺序写入
func (a *Analyzer) buildAll(ctx context.Context, texts []string, unit func(int) string) ([]sketch.Sketch, error) {
	sketches := make([]sketch.Sketch, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Concurrency > 0 {
		g.SetLimit(a.cfg.Concurrency)
	}
	for i := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := a.builder.Build(texts[i])
			if err != nil {
				return apperrors.NewCollaboratorError(apperrors.CollaboratorTokenizer, unit(i), err)
			}
			sketches[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sketches, nil
}

func paragraphDetails(segments []types.DocumentSegment, stats *types.CoverageStats) []types.ParagraphDetail {
	details := make([]types.ParagraphDetail, len(segments))
	for i, seg := range segments {
		matched := stats.ParagraphToQA[i]
		if matched == nil {
			matched = []int{}
		}
		details[i] = types.ParagraphDetail{
			Index:            i,
			Content:          utils.TruncateRunes(seg.Text, PreviewLength),
			MatchedQACount:   len(matched),
			MatchedQAIndices: matched,
		}
	}
	return details
}

func qaDetails(units []types.QAUnit, stats *types.CoverageStats) []types.QADetail {
	details := make([]types.QADetail, len(units))
	for i, unit := range units {
		matched := stats.QAToParagraph[i]
		if matched == nil {
			matched = []int{}
		}
		details[i] = types.QADetail{
			Index:             i,
			Question:          unit.Question,
			Topic:             unit.Topic,
			MatchedParagraphs: matched,
		}
	}
	return details
}
