package knowledge

import (
	"slices"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

// 知识点权重的默认值
const (
	DefaultHighWeight   = 1.5
	DefaultNormalWeight = 1.0
)

// Weights 按优先级区分的知识点权重
type Weights struct {
	High   float64
	Normal float64
}

// DefaultWeights 返回默认权重
func DefaultWeights() Weights {
	return Weights{High: DefaultHighWeight, Normal: DefaultNormalWeight}
}

func priorityRank(p types.Priority) int {
	if p == types.PriorityHigh {
		return 0
	}
	return 1
}

func (w Weights) of(point types.KnowledgePoint) float64 {
	if point.IsHighPriority() {
		return w.High
	}
	return w.Normal
}

// ComputeCoverage 汇总映射关系，得到简单覆盖率、加权覆盖率、主题覆盖与缺口列表
// 缺口按高优先级在前排列，同一优先级内保持知识点的输入顺序
// 只填充知识点相关字段，段落相关字段由调用方补充
func ComputeCoverage(mapping *types.Mapping, points []types.KnowledgePoint, weights Weights) *types.CoverageReport {
	report := &types.CoverageReport{
		TotalKnowledgePoints: len(points),
		Gaps:                 []types.Gap{},
		PerTopicCoverage:     make(map[string]types.TopicCoverage),
	}

	var totalWeight, coveredWeight float64
	for i, point := range points {
		w := weights.of(point)
		totalWeight += w
		if mapping != nil && mapping.IsCovered(i) {
			report.CoveredKnowledgePoints++
			coveredWeight += w
			continue
		}
		report.Gaps = append(report.Gaps, types.Gap{
			Index:    i,
			Text:     point.Text,
			Type:     point.Type,
			Priority: point.Priority,
		})
		if point.IsHighPriority() {
			report.HighPriorityGapCount++
		}
	}
	slices.SortStableFunc(report.Gaps, func(a, b types.Gap) int {
		return priorityRank(a.Priority) - priorityRank(b.Priority)
	})
	report.GapCount = len(report.Gaps)
	report.SimpleKnowledgeCoverage = types.Ratio(report.CoveredKnowledgePoints, len(points))
	if totalWeight > 0 {
		report.WeightedKnowledgeCoverage = coveredWeight / totalWeight
	}

	if mapping == nil {
		return report
	}
	reached := make(map[string]map[int]struct{})
	for _, qa := range mapping.QA {
		topic := qa.Unit.Topic
		if _, ok := reached[topic]; !ok {
			reached[topic] = make(map[int]struct{})
		}
		for _, entry := range qa.Matches {
			reached[topic][entry.KnowledgePointIndex] = struct{}{}
		}
	}
	for topic, set := range reached {
		report.PerTopicCoverage[topic] = types.TopicCoverage{
			CoveredPoints: len(set),
			CoverageRate:  types.Ratio(len(set), len(points)),
		}
	}
	return report
}
