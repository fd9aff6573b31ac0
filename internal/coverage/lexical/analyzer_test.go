package lexical

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/types"
)

var fieldsTokenizer = sketch.TokenizerFunc(func(text string) ([]string, error) {
	return strings.Fields(strings.ToLower(text)), nil
})

var paragraphs = []string{
	"Inventory turnover measures how often warehouse goods get sold then replaced during one accounting period.",
	"Safety stock means extra units held back to mitigate stockout risk caused by uncertain customer demand.",
	"Supplier evaluation considers delivery reliability, quality records, financial stability plus pricing terms.",
}

func testDocument() string {
	return strings.Join(paragraphs, "\n\n")
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinParagraphs = 1
	return cfg
}

func TestSegment(t *testing.T) {
	segments := Segment(testDocument(), 50, 1)
	require.Len(t, segments, 3)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, paragraphs[i], seg.Text)
		assert.Equal(t, len([]rune(paragraphs[i])), seg.Length)
	}
}

func TestAnalyzePerfectCoverage(t *testing.T) {
	var groups []types.TopicGroup
	for i, p := range paragraphs {
		groups = append(groups, types.TopicGroup{
			SegmentID: i,
			QAPairs:   []types.QAPair{{Question: "", Answer: p}},
		})
	}

	result, err := NewAnalyzer(testConfig(), fieldsTokenizer, nil).Analyze(context.Background(), testDocument(), groups)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Stats.CoverageRate)
	assert.Equal(t, 1.0, result.Stats.QAMatchRate)
	assert.Equal(t, []int{0, 1, 2}, result.Stats.CoveredParagraphs)
	for i := range paragraphs {
		assert.Contains(t, result.Stats.ParagraphToQA[i], i)
		assert.Contains(t, result.Stats.QAToParagraph[i], i)
	}
	require.Len(t, result.Paragraphs, 3)
	assert.Equal(t, "未命名主题_0", result.QADetails[0].Topic)
	assert.GreaterOrEqual(t, result.Paragraphs[0].MatchedQACount, 1)
}

func TestAnalyzeZeroCoverage(t *testing.T) {
	groups := []types.TopicGroup{{
		Topic: "无关",
		QAPairs: []types.QAPair{
			{Question: "who painted that famous ceiling", Answer: "michelangelo painted it in rome"},
		},
	}}

	result, err := NewAnalyzer(testConfig(), fieldsTokenizer, nil).Analyze(context.Background(), testDocument(), groups)
	require.NoError(t, err)

	assert.Zero(t, result.Stats.CoverageRate)
	assert.Zero(t, result.Stats.QAMatchRate)
	assert.Empty(t, result.Stats.CoveredParagraphs)
	assert.Len(t, result.Stats.LowCoverageSegments(), 3)
	assert.Equal(t, []int{}, result.QADetails[0].MatchedParagraphs)
}

func TestAnalyzeDegenerate(t *testing.T) {
	t.Run("没有段落", func(t *testing.T) {
		groups := []types.TopicGroup{{Topic: "t", QAPairs: []types.QAPair{{Question: "q", Answer: "a"}}}}
		result, err := NewAnalyzer(testConfig(), fieldsTokenizer, nil).Analyze(context.Background(), "too short", groups)
		require.NoError(t, err)
		assert.Empty(t, result.Segments)
		assert.Zero(t, result.Stats.CoverageRate)
		assert.Zero(t, result.Stats.QAMatchRate)
	})

	t.Run("没有问答单元", func(t *testing.T) {
		result, err := NewAnalyzer(testConfig(), fieldsTokenizer, nil).Analyze(context.Background(), testDocument(), nil)
		require.NoError(t, err)
		assert.Zero(t, result.Stats.CoverageRate)
		assert.Zero(t, result.Stats.QAMatchRate)
	})
}

func TestAnalyzeTokenizerError(t *testing.T) {
	failing := sketch.TokenizerFunc(func(string) ([]string, error) {
		return nil, errors.New("dictionary not loaded")
	})

	_, err := NewAnalyzer(testConfig(), failing, nil).Analyze(context.Background(), testDocument(), nil)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CollaboratorTokenizer, appErr.Collaborator)
	assert.True(t, strings.HasPrefix(appErr.Unit, "segment "))
}

func TestAnalyzeMonotonic(t *testing.T) {
	base := []types.TopicGroup{{Topic: "库存", QAPairs: []types.QAPair{{Answer: paragraphs[0]}}}}
	extended := []types.TopicGroup{{Topic: "库存", QAPairs: []types.QAPair{{Answer: paragraphs[0]}, {Answer: paragraphs[2]}}}}

	a := NewAnalyzer(testConfig(), fieldsTokenizer, nil)
	r1, err := a.Analyze(context.Background(), testDocument(), base)
	require.NoError(t, err)
	r2, err := a.Analyze(context.Background(), testDocument(), extended)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(r2.Stats.CoveredParagraphs), len(r1.Stats.CoveredParagraphs))
	assert.Contains(t, r2.Stats.CoveredParagraphs, 2)
}
