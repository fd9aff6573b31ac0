package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

func TestComputeCoverage(t *testing.T) {
	t.Run("部分覆盖的加权计算", func(t *testing.T) {
		points := []types.KnowledgePoint{
			{Text: "安全库存", Type: types.KnowledgePointEntity, Priority: types.PriorityHigh},
			{Text: "供应商", Type: types.KnowledgePointPhrase, Priority: types.PriorityNormal},
		}
		mapping := &types.Mapping{
			QA: []types.QAMapping{{
				Unit:    types.QAUnit{Topic: "采购"},
				Matches: []types.MappingEntry{{KnowledgePointIndex: 1, Similarity: 0.9}},
			}},
			PerPoint: [][]types.PointMatch{{}, {{QAIndex: 0, QAID: "0_0", Similarity: 0.9}}},
		}

		report := ComputeCoverage(mapping, points, DefaultWeights())
		assert.InDelta(t, 0.4, report.WeightedKnowledgeCoverage, 1e-9)
		assert.InDelta(t, 0.5, report.SimpleKnowledgeCoverage, 1e-9)
		assert.Equal(t, 1, report.CoveredKnowledgePoints)
		require.Len(t, report.Gaps, 1)
		assert.Equal(t, "安全库存", report.Gaps[0].Text)
		assert.Equal(t, types.KnowledgePointEntity, report.Gaps[0].Type)
		assert.Equal(t, 1, report.HighPriorityGapCount)
		assert.Equal(t, types.TopicCoverage{CoveredPoints: 1, CoverageRate: 0.5}, report.PerTopicCoverage["采购"])
	})

	t.Run("没有知识点", func(t *testing.T) {
		report := ComputeCoverage(&types.Mapping{}, nil, DefaultWeights())
		assert.Zero(t, report.SimpleKnowledgeCoverage)
		assert.Zero(t, report.WeightedKnowledgeCoverage)
		assert.Empty(t, report.Gaps)
	})

	t.Run("主题没有命中时覆盖率为0", func(t *testing.T) {
		mapping := &types.Mapping{
			QA:       []types.QAMapping{{Unit: types.QAUnit{Topic: "物流"}}},
			PerPoint: [][]types.PointMatch{{}},
		}
		report := ComputeCoverage(mapping, []types.KnowledgePoint{{Text: "x"}}, DefaultWeights())
		assert.Equal(t, types.TopicCoverage{}, report.PerTopicCoverage["物流"])
		assert.Contains(t, report.PerTopicCoverage, "物流")
	})
}

func TestGapOrderingRespectsPriority(t *testing.T) {
	raw := []types.KnowledgePoint{
		{Text: "n1", SourceParagraph: types.ParagraphRef(0)},
		{Text: "h1", SourceParagraph: types.ParagraphRef(1)},
		{Text: "n2"},
		{Text: "h2", SourceParagraph: types.ParagraphRef(1)},
	}
	points := Prioritize(raw, map[int]struct{}{1: {}})
	mapping, err := NewMapper(MapperConfig{Threshold: 0.5}, SimilarityFunc(containsSimilarity)).
		Map(context.Background(), nil, points)
	require.NoError(t, err)

	report := ComputeCoverage(mapping, points, DefaultWeights())
	require.Len(t, report.Gaps, 4)
	seenNormal := false
	for _, gap := range report.Gaps {
		if gap.Priority == types.PriorityNormal {
			seenNormal = true
		} else {
			assert.False(t, seenNormal, "high priority gap %q after a normal one", gap.Text)
		}
	}
	assert.Equal(t, []string{"h1", "h2", "n1", "n2"}, []string{
		report.Gaps[0].Text, report.Gaps[1].Text, report.Gaps[2].Text, report.Gaps[3].Text,
	})
}

func TestGapOrderingWithoutPrioritize(t *testing.T) {
	points := []types.KnowledgePoint{
		{Text: "n1", Priority: types.PriorityNormal},
		{Text: "h1", Priority: types.PriorityHigh},
		{Text: "n2", Priority: types.PriorityNormal},
		{Text: "h2", Priority: types.PriorityHigh},
	}

	report := ComputeCoverage(&types.Mapping{PerPoint: make([][]types.PointMatch, len(points))}, points, DefaultWeights())
	require.Len(t, report.Gaps, 4)
	assert.Equal(t, []string{"h1", "h2", "n1", "n2"}, []string{
		report.Gaps[0].Text, report.Gaps[1].Text, report.Gaps[2].Text, report.Gaps[3].Text,
	})
	assert.Equal(t, []int{1, 3, 0, 2}, []int{
		report.Gaps[0].Index, report.Gaps[1].Index, report.Gaps[2].Index, report.Gaps[3].Index,
	})
	assert.Equal(t, 2, report.HighPriorityGapCount)
}

func TestCoverageMonotonicity(t *testing.T) {
	points := []types.KnowledgePoint{{Text: "安全库存"}, {Text: "供应商"}}
	units := testUnits()[:1]
	m := NewMapper(MapperConfig{Threshold: 0.5}, SimilarityFunc(containsSimilarity))

	before, err := m.Map(context.Background(), units, points)
	require.NoError(t, err)
	after, err := m.Map(context.Background(), testUnits(), points)
	require.NoError(t, err)

	r1 := ComputeCoverage(before, points, DefaultWeights())
	r2 := ComputeCoverage(after, points, DefaultWeights())
	assert.GreaterOrEqual(t, r2.CoveredKnowledgePoints, r1.CoveredKnowledgePoints)
	assert.Equal(t, 2, r2.CoveredKnowledgePoints)
}
