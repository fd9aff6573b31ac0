// Package coverage 编排两阶段的问答覆盖度评估：词汇重叠覆盖与知识点语义覆盖
package coverage

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gaamingzhang/qa_coverage/internal/coverage/knowledge"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/lexical"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/logger"
	"github.com/gaamingzhang/qa_coverage/internal/metrics"
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// Extractor 从段落中抽取候选知识点
type Extractor interface {
	Extract(ctx context.Context, document string, segments []types.DocumentSegment) ([]types.KnowledgePoint, error)
}

// Preparer 可选接口：相似度函数在映射前批量预取向量
type Preparer interface {
	Prepare(ctx context.Context, texts []string) error
}

// Config 引擎配置
type Config struct {
	Lexical             lexical.Config
	SimilarityThreshold float64
	MappingConcurrency  int
	Weights             knowledge.Weights
	Timeout             time.Duration // 单次评估的超时，0 表示不限制
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Lexical:             lexical.DefaultConfig(),
		SimilarityThreshold: knowledge.DefaultSimilarityThreshold,
		MappingConcurrency:  8,
		Weights:             knowledge.DefaultWeights(),
		Timeout:             30 * time.Minute,
	}
}

// Validate 检查配置
func (c Config) Validate() error {
	if c.Lexical.Threshold <= 0 || c.Lexical.Threshold > 1 {
		return apperrors.NewConfigError(fmt.Sprintf("lsh threshold must be in (0, 1], got %v", c.Lexical.Threshold))
	}
	if c.Lexical.NumHashes <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("num hashes must be positive, got %d", c.Lexical.NumHashes))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold >= 1 {
		return apperrors.NewConfigError(fmt.Sprintf("similarity threshold must be in [0, 1), got %v", c.SimilarityThreshold))
	}
	if c.Weights.High <= 0 || c.Weights.Normal <= 0 {
		return apperrors.NewConfigError("priority weights must be positive")
	}
	return nil
}

// Engine 覆盖度评估引擎，不在多次评估之间保存状态
type Engine struct {
	cfg        Config
	lexical    *lexical.Analyzer
	similarity knowledge.Similarity
	extractor  Extractor
	log        *logger.Logger
	metrics    *metrics.Metrics
	bus        types.EventBusInterface
}

// Option 引擎选项
type Option func(*Engine)

// WithLogger 设置日志记录器
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithEventBus 设置阶段事件总线
func WithEventBus(bus types.EventBusInterface) Option {
	return func(e *Engine) { e.bus = bus }
}

// NewEngine 创建评估引擎
func NewEngine(cfg Config, tokenizer sketch.Tokenizer, similarity knowledge.Similarity,
	extractor Extractor, opts ...Option,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tokenizer == nil || similarity == nil || extractor == nil {
		return nil, apperrors.NewConfigError("tokenizer, similarity and extractor are required")
	}
	e := &Engine{
		cfg:        cfg,
		similarity: similarity,
		extractor:  extractor,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lexical = lexical.NewAnalyzer(cfg.Lexical, tokenizer, e.log)
	return e, nil
}

// ValidateInput 检查输入文档与问答分组
func ValidateInput(document string, groups []types.TopicGroup) error {
	if strings.TrimSpace(document) == "" {
		return apperrors.NewInputError(apperrors.ErrEmptyDocument.Error()).WithCause(apperrors.ErrEmptyDocument)
	}
	if limit := utils.GetMaxDocumentSize(); int64(len(document)) > limit {
		return apperrors.NewInputError(apperrors.ErrDocumentTooLarge.Error()).
			WithCause(apperrors.ErrDocumentTooLarge).
			WithDetails(map[string]int64{"size": int64(len(document)), "limit": limit})
	}
	if len(groups) == 0 {
		return apperrors.NewInputError(apperrors.ErrNoQAGroups.Error()).WithCause(apperrors.ErrNoQAGroups)
	}
	if types.CountQAPairs(groups) == 0 {
		return apperrors.NewInputError(apperrors.ErrNoQAPairs.Error()).WithCause(apperrors.ErrNoQAPairs)
	}
	for ti, group := range groups {
		for qi, qa := range group.QAPairs {
			var cause error
			switch {
			case strings.TrimSpace(qa.Question) == "":
				cause = apperrors.ErrMissingQuestion
			case strings.TrimSpace(qa.Answer) == "":
				cause = apperrors.ErrMissingAnswer
			default:
				continue
			}
			return apperrors.NewInputError(fmt.Sprintf("%s: topic %d, qa %d", cause, ti, qi)).
				WithCause(cause).
				WithDetails(map[string]int{"topicIndex": ti, "qaIndex": qi})
		}
	}
	return nil
}

// Evaluate 执行一次完整评估
// 任一阶段失败或超时都会中止整个评估，不返回部分结果
func (e *Engine) Evaluate(ctx context.Context, document string, groups []types.TopicGroup) (*types.EvaluationResult, error) {
	task := &types.EvaluationTask{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
		Status:    types.EvaluationStatueRunning,
		Total:     types.CountQAPairs(groups),
	}
	log := e.log.With("run_id", task.ID)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, types.RunIDContextKey, task.ID)
	ctx = logger.WithContext(ctx, log)

	result, err := e.evaluate(ctx, task, document, groups)
	task.Duration = time.Since(task.StartTime)
	if err != nil {
		if ctx.Err() != nil && !apperrors.HasCode(err, apperrors.ErrInvalidInput) {
			err = apperrors.NewTimeoutError(ctx.Err())
		}
		task.Status = types.EvaluationStatueFailed
		task.ErrMsg = err.Error()
		e.metrics.RecordEvaluation(task.Status)
		log.Error("coverage evaluation failed", "error", err.Error(), "duration", task.Duration)
		return nil, err
	}

	task.Status = types.EvaluationStatueSuccess
	e.metrics.RecordEvaluation(task.Status)
	e.metrics.RecordReport(result.Report)
	e.emit(ctx, task, types.StateEnd, task.StartTime, map[string]interface{}{"status": task.Status.String()})
	log.Info("coverage evaluation finished",
		"duration", task.Duration,
		"hash_coverage", result.Report.HashCoverageRate,
		"simple_coverage", result.Report.SimpleKnowledgeCoverage,
		"weighted_coverage", result.Report.WeightedKnowledgeCoverage,
		"gaps", result.Report.GapCount,
		"warnings", result.Report.Warnings,
	)
	return result, nil
}

func (e *Engine) evaluate(ctx context.Context, task *types.EvaluationTask,
	document string, groups []types.TopicGroup,
) (*types.EvaluationResult, error) {
	log := logger.FromContext(ctx, e.log)

	if err := ValidateInput(document, groups); err != nil {
		return nil, err
	}
	e.emit(ctx, task, types.StateBegin, task.StartTime, map[string]interface{}{
		"documentChars": utils.RuneLen(document),
		"qaPairs":       task.Total,
	})

	start := time.Now()
	segments := e.lexical.Segment(document)
	e.emit(ctx, task, types.StateAfterSegmentation, start, map[string]interface{}{"segments": len(segments)})

	start = time.Now()
	lex, err := e.lexical.AnalyzeSegments(ctx, segments, groups)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, task, types.StateAfterLexical, start, map[string]interface{}{
		"coveredParagraphs": len(lex.Stats.CoveredParagraphs),
		"coverageRate":      lex.Stats.CoverageRate,
	})

	start = time.Now()
	raw, err := e.extractor.Extract(ctx, document, segments)
	if err != nil {
		if _, ok := apperrors.IsAppError(err); !ok {
			err = apperrors.NewCollaboratorError(apperrors.CollaboratorExtractor, "document", err)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.emit(ctx, task, types.StateAfterExtraction, start, map[string]interface{}{"rawPoints": len(raw)})

	start = time.Now()
	points := knowledge.Prioritize(raw, lex.Stats.LowCoverageSegments())
	e.emit(ctx, task, types.StateAfterPrioritize, start, map[string]interface{}{"points": len(points)})

	start = time.Now()
	if p, ok := e.similarity.(Preparer); ok && len(points) > 0 {
		texts := make([]string, 0, len(lex.Units)+len(points))
		for _, unit := range lex.Units {
			texts = append(texts, unit.Text())
		}
		for _, point := range points {
			texts = append(texts, point.Text)
		}
		if err := p.Prepare(ctx, texts); err != nil {
			return nil, apperrors.NewCollaboratorError(apperrors.CollaboratorSimilarity, "prepare", err)
		}
	}
	total := len(lex.Units)
	mapper := knowledge.NewMapper(knowledge.MapperConfig{
		Threshold:   e.cfg.SimilarityThreshold,
		Concurrency: e.cfg.MappingConcurrency,
	}, e.similarity).OnProgress(func(done int) {
		if done == total || done%50 == 0 {
			log.Debug("semantic mapping progress", "finished", done, "total", total)
		}
	})
	mapping, err := mapper.Map(ctx, lex.Units, points)
	if err != nil {
		return nil, err
	}
	task.Finished = total
	e.emit(ctx, task, types.StateAfterMapping, start, map[string]interface{}{"qaUnits": total})

	start = time.Now()
	report := knowledge.ComputeCoverage(mapping, points, e.cfg.Weights)
	report.HashCoverageRate = lex.Stats.CoverageRate
	report.QAMatchRate = lex.Stats.QAMatchRate
	report.TotalParagraphs = lex.Stats.TotalParagraphs
	report.CoveredParagraphs = len(lex.Stats.CoveredParagraphs)
	for ti, group := range groups {
		name := types.TopicName(group, ti)
		if _, ok := report.PerTopicCoverage[name]; !ok {
			report.PerTopicCoverage[name] = types.TopicCoverage{}
		}
	}
	if len(segments) == 0 {
		report.AddWarning(types.WarningNoSegments)
		log.Warn("document produced no segments", "min_length", e.cfg.Lexical.MinSegmentLength)
	}
	if len(points) == 0 {
		report.AddWarning(types.WarningNoKnowledgePoints)
		log.Warn("no knowledge points extracted")
	}
	e.emit(ctx, task, types.StateAfterComplete, start, map[string]interface{}{
		"gaps":             report.GapCount,
		"highPriorityGaps": report.HighPriorityGapCount,
	})

	return &types.EvaluationResult{
		Task:            task,
		Report:          report,
		Segments:        segments,
		Stats:           lex.Stats,
		Paragraphs:      lex.Paragraphs,
		QADetails:       lex.QADetails,
		KnowledgePoints: points,
		Mapping:         mapping,
	}, nil
}

// emit 记录阶段耗时并发布事件，处理程序的错误只记录日志
func (e *Engine) emit(ctx context.Context, task *types.EvaluationTask, state types.EvalState,
	start time.Time, meta map[string]interface{},
) {
	elapsed := time.Since(start)
	e.metrics.ObserveStage(state, elapsed)
	log := logger.FromContext(ctx, e.log)
	log.Debug("stage finished", "stage", state.String(), "elapsed", elapsed)
	if e.bus == nil {
		return
	}
	err := e.bus.Emit(ctx, types.Event{
		State:    state,
		Elapsed:  elapsed,
		Data:     task,
		Metadata: meta,
	})
	if err != nil && !stderrors.Is(err, context.Canceled) {
		log.Warn("stage event handler failed", "stage", state.String(), "error", err.Error())
	}
}
