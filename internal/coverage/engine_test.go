package coverage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaamingzhang/qa_coverage/internal/coverage/knowledge"
	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/event"
	"github.com/gaamingzhang/qa_coverage/internal/metrics"
	"github.com/gaamingzhang/qa_coverage/internal/types"
)

var paragraphs = []string{
	"Inventory turnover measures how often warehouse goods get sold then replaced during one accounting period.",
	"Safety stock means extra units held back to mitigate stockout risk caused by uncertain customer demand.",
	"Supplier evaluation considers delivery reliability, quality records, financial stability plus pricing terms.",
}

var pointTexts = []string{"inventory turnover", "safety stock", "supplier evaluation"}

var fieldsTokenizer = sketch.TokenizerFunc(func(text string) ([]string, error) {
	return strings.Fields(strings.ToLower(text)), nil
})

// containsSimilarity 问答文本包含知识点时为 1，否则为 0
var containsSimilarity = knowledge.SimilarityFunc(func(_ context.Context, a, b string) (float64, error) {
	if strings.Contains(strings.ToLower(a), strings.ToLower(b)) {
		return 1, nil
	}
	return 0, nil
})

// segmentExtractor 为每个段落返回对应的一个知识点
type segmentExtractor struct {
	err error
}

func (x segmentExtractor) Extract(_ context.Context, _ string, segments []types.DocumentSegment) ([]types.KnowledgePoint, error) {
	if x.err != nil {
		return nil, x.err
	}
	var points []types.KnowledgePoint
	for _, seg := range segments {
		if seg.Index < len(pointTexts) {
			points = append(points, types.KnowledgePoint{
				Text:            pointTexts[seg.Index],
				Type:            types.KnowledgePointPhrase,
				SourceParagraph: types.ParagraphRef(seg.Index),
			})
		}
	}
	return points, nil
}

func document() string {
	return strings.Join(paragraphs, "\n\n")
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), fieldsTokenizer, containsSimilarity, segmentExtractor{}, opts...)
	require.NoError(t, err)
	return e
}

func perfectGroups() []types.TopicGroup {
	return []types.TopicGroup{
		{Topic: "库存", QAPairs: []types.QAPair{
			{Question: "What does inventory turnover measure?", Answer: paragraphs[0]},
			{Question: "What is safety stock?", Answer: paragraphs[1]},
		}},
		{Topic: "采购", QAPairs: []types.QAPair{
			{Question: "What does supplier evaluation consider?", Answer: paragraphs[2]},
		}},
	}
}

func TestEvaluatePerfectCoverage(t *testing.T) {
	result, err := newEngine(t).Evaluate(context.Background(), document(), perfectGroups())
	require.NoError(t, err)

	report := result.Report
	assert.Equal(t, 1.0, report.HashCoverageRate)
	assert.Equal(t, 1.0, report.SimpleKnowledgeCoverage)
	assert.Equal(t, 1.0, report.WeightedKnowledgeCoverage)
	assert.Empty(t, report.Gaps)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 3, report.TotalParagraphs)
	assert.Equal(t, 3, report.CoveredParagraphs)
	assert.Equal(t, types.TopicCoverage{CoveredPoints: 2, CoverageRate: 2.0 / 3.0}, report.PerTopicCoverage["库存"])
	assert.Equal(t, types.TopicCoverage{CoveredPoints: 1, CoverageRate: 1.0 / 3.0}, report.PerTopicCoverage["采购"])

	assert.Equal(t, types.EvaluationStatueSuccess, result.Task.Status)
	assert.NotEmpty(t, result.Task.ID)
	assert.Equal(t, 3, result.Task.Finished)
	assert.Len(t, result.KnowledgePoints, 3)
}

func TestEvaluateZeroCoverage(t *testing.T) {
	groups := []types.TopicGroup{{Topic: "艺术", QAPairs: []types.QAPair{
		{Question: "Who painted that famous ceiling?", Answer: "Michelangelo painted it in Rome."},
	}}}

	result, err := newEngine(t).Evaluate(context.Background(), document(), groups)
	require.NoError(t, err)

	report := result.Report
	assert.Zero(t, report.HashCoverageRate)
	assert.Zero(t, report.SimpleKnowledgeCoverage)
	assert.Zero(t, report.WeightedKnowledgeCoverage)
	require.Len(t, report.Gaps, 3)
	assert.Equal(t, 3, report.HighPriorityGapCount)
	for i, gap := range report.Gaps {
		assert.Equal(t, pointTexts[i], gap.Text)
		assert.Equal(t, types.PriorityHigh, gap.Priority)
	}
	assert.Equal(t, types.TopicCoverage{}, report.PerTopicCoverage["艺术"])
}

func TestEvaluatePartialWeighted(t *testing.T) {
	// 只覆盖第一个段落：其余段落的知识点变为高优先级
	groups := []types.TopicGroup{{Topic: "库存", QAPairs: []types.QAPair{
		{Question: "What does inventory turnover measure?", Answer: paragraphs[0]},
	}}}

	result, err := newEngine(t).Evaluate(context.Background(), document(), groups)
	require.NoError(t, err)

	report := result.Report
	assert.InDelta(t, 1.0/3.0, report.HashCoverageRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, report.SimpleKnowledgeCoverage, 1e-9)
	assert.InDelta(t, 1.0/4.0, report.WeightedKnowledgeCoverage, 1e-9)
	require.Len(t, report.Gaps, 2)
	assert.Equal(t, "safety stock", report.Gaps[0].Text)
	assert.Equal(t, "supplier evaluation", report.Gaps[1].Text)

	// 高优先级知识点排在前面
	assert.Equal(t, types.PriorityHigh, result.KnowledgePoints[0].Priority)
	assert.Equal(t, "inventory turnover", result.KnowledgePoints[2].Text)
	assert.Equal(t, types.PriorityNormal, result.KnowledgePoints[2].Priority)
}

func TestEvaluateDeterministic(t *testing.T) {
	e := newEngine(t)
	first, err := e.Evaluate(context.Background(), document(), perfectGroups())
	require.NoError(t, err)
	second, err := e.Evaluate(context.Background(), document(), perfectGroups())
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
	assert.NotEqual(t, first.Task.ID, second.Task.ID)
}

func TestEvaluateDegenerate(t *testing.T) {
	groups := []types.TopicGroup{{Topic: "t", QAPairs: []types.QAPair{{Question: "q", Answer: "a"}}}}

	result, err := newEngine(t).Evaluate(context.Background(), "a very short document", groups)
	require.NoError(t, err)

	report := result.Report
	assert.Equal(t, []string{types.WarningNoSegments, types.WarningNoKnowledgePoints}, report.Warnings)
	assert.Zero(t, report.HashCoverageRate)
	assert.Zero(t, report.QAMatchRate)
	assert.Zero(t, report.SimpleKnowledgeCoverage)
	assert.Zero(t, report.WeightedKnowledgeCoverage)
	assert.Empty(t, report.Gaps)
}

func TestEvaluateInputErrors(t *testing.T) {
	tests := []struct {
		name     string
		document string
		groups   []types.TopicGroup
		cause    error
	}{
		{"空文档", "  \n ", perfectGroups(), apperrors.ErrEmptyDocument},
		{"没有分组", document(), nil, apperrors.ErrNoQAGroups},
		{"没有问答对", document(), []types.TopicGroup{{Topic: "t"}}, apperrors.ErrNoQAPairs},
		{"缺少问题", document(), []types.TopicGroup{{QAPairs: []types.QAPair{{Answer: "a"}}}}, apperrors.ErrMissingQuestion},
		{"缺少答案", document(), []types.TopicGroup{{QAPairs: []types.QAPair{{Question: "q"}}}}, apperrors.ErrMissingAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine(t).Evaluate(context.Background(), tt.document, tt.groups)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidInput))
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestEvaluateCollaboratorErrors(t *testing.T) {
	t.Run("抽取器失败", func(t *testing.T) {
		e, err := NewEngine(DefaultConfig(), fieldsTokenizer, containsSimilarity,
			segmentExtractor{err: errors.New("model offline")})
		require.NoError(t, err)

		_, err = e.Evaluate(context.Background(), document(), perfectGroups())
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCollaborator, appErr.Code)
		assert.Equal(t, apperrors.CollaboratorExtractor, appErr.Collaborator)
		assert.Equal(t, "document", appErr.Unit)
	})

	t.Run("相似度函数失败", func(t *testing.T) {
		failing := knowledge.SimilarityFunc(func(context.Context, string, string) (float64, error) {
			return 0, errors.New("embedding service down")
		})
		e, err := NewEngine(DefaultConfig(), fieldsTokenizer, failing, segmentExtractor{})
		require.NoError(t, err)

		_, err = e.Evaluate(context.Background(), document(), perfectGroups())
		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CollaboratorSimilarity, appErr.Collaborator)
	})
}

func TestEvaluateTimeout(t *testing.T) {
	t.Run("调用方取消", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newEngine(t).Evaluate(ctx, document(), perfectGroups())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrTimeout))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("超过单次评估时限", func(t *testing.T) {
		blocking := knowledge.SimilarityFunc(func(ctx context.Context, _, _ string) (float64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		cfg := DefaultConfig()
		cfg.Timeout = 20 * time.Millisecond
		e, err := NewEngine(cfg, fieldsTokenizer, blocking, segmentExtractor{})
		require.NoError(t, err)

		_, err = e.Evaluate(context.Background(), document(), perfectGroups())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrTimeout))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

type recordingPreparer struct {
	knowledge.SimilarityFunc
	mu    sync.Mutex
	texts []string
}

func (p *recordingPreparer) Prepare(_ context.Context, texts []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, texts...)
	return nil
}

func TestEvaluateEventsMetricsAndPrepare(t *testing.T) {
	bus := event.NewEventBus()
	var states []types.EvalState
	bus.OnAll(func(ctx context.Context, evt types.Event) error {
		states = append(states, evt.State)
		assert.NotEmpty(t, evt.RunID)
		assert.Equal(t, types.RunIDFromContext(ctx), evt.RunID)
		return nil
	})
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	sim := &recordingPreparer{SimilarityFunc: containsSimilarity}

	e, err := NewEngine(DefaultConfig(), fieldsTokenizer, sim, segmentExtractor{},
		WithEventBus(bus), WithMetrics(m))
	require.NoError(t, err)

	_, err = e.Evaluate(context.Background(), document(), perfectGroups())
	require.NoError(t, err)

	assert.Equal(t, []types.EvalState{
		types.StateBegin,
		types.StateAfterSegmentation,
		types.StateAfterLexical,
		types.StateAfterExtraction,
		types.StateAfterPrioritize,
		types.StateAfterMapping,
		types.StateAfterComplete,
		types.StateEnd,
	}, states)
	assert.Len(t, sim.texts, 6)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CoverageRate.WithLabelValues("simple")))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Lexical.Threshold = 0
	assert.True(t, apperrors.HasCode(bad.Validate(), apperrors.ErrInvalidConfig))

	bad = cfg
	bad.SimilarityThreshold = 1
	assert.Error(t, bad.Validate())

	_, err := NewEngine(cfg, nil, containsSimilarity, segmentExtractor{})
	assert.Error(t, err)
}
