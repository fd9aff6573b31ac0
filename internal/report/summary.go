// Package report 将评估结果整理为摘要、文本报告与热图数据
package report

import (
	"fmt"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

const (
	// LowCoverageThreshold 覆盖率低于该值时给出改进建议
	LowCoverageThreshold = 0.7
	// MaxUncoveredAreas 摘要中列出的高优先级缺口数
	MaxUncoveredAreas = 5
	// MaxTextReportGaps 文本报告中列出的高优先级缺口数
	MaxTextReportGaps = 10
)

// Summary 综合评估报告
type Summary struct {
	Summary         Overview        `json:"summary"`
	Recommendations Recommendations `json:"recommendations"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// Overview 总体数据
type Overview struct {
	OriginalDocument          string  `json:"originalDocument"`
	QAPairsFile               string  `json:"qaPairsFile"`
	HashCoverageRate          float64 `json:"hashCoverageRate"`
	QAMatchRate               float64 `json:"qaMatchRate"`
	KnowledgeCoverageRate     float64 `json:"knowledgeCoverageRate"`
	WeightedKnowledgeCoverage float64 `json:"weightedKnowledgeCoverage"`
	TotalParagraphs           int     `json:"totalParagraphs"`
	CoveredParagraphs         int     `json:"coveredParagraphs"`
	TotalKnowledgePoints      int     `json:"totalKnowledgePoints"`
	CoveredKnowledgePoints    int     `json:"coveredKnowledgePoints"`
	UncoveredKnowledgePoints  int     `json:"uncoveredKnowledgePoints"`
	HighPriorityGaps          int     `json:"highPriorityGaps"`
}

// Recommendations 改进建议
type Recommendations struct {
	SuggestedImprovements []string        `json:"suggestedImprovements"`
	UncoveredAreas        []UncoveredArea `json:"uncoveredAreas"`
}

// UncoveredArea 未覆盖的高优先级知识点
type UncoveredArea struct {
	KnowledgePoint string         `json:"knowledgePoint"`
	Priority       types.Priority `json:"priority"`
}

// BuildSummary 根据覆盖报告生成摘要与建议
func BuildSummary(report *types.CoverageReport, documentPath, qaPath string) *Summary {
	s := &Summary{
		Summary: Overview{
			OriginalDocument:          documentPath,
			QAPairsFile:               qaPath,
			HashCoverageRate:          report.HashCoverageRate,
			QAMatchRate:               report.QAMatchRate,
			KnowledgeCoverageRate:     report.SimpleKnowledgeCoverage,
			WeightedKnowledgeCoverage: report.WeightedKnowledgeCoverage,
			TotalParagraphs:           report.TotalParagraphs,
			CoveredParagraphs:         report.CoveredParagraphs,
			TotalKnowledgePoints:      report.TotalKnowledgePoints,
			CoveredKnowledgePoints:    report.CoveredKnowledgePoints,
			UncoveredKnowledgePoints:  report.GapCount,
			HighPriorityGaps:          report.HighPriorityGapCount,
		},
		Recommendations: Recommendations{
			SuggestedImprovements: []string{},
			UncoveredAreas:        []UncoveredArea{},
		},
		Warnings: report.Warnings,
	}

	rec := &s.Recommendations
	if report.HighPriorityGapCount > 0 {
		rec.SuggestedImprovements = append(rec.SuggestedImprovements, "建议增加以下高优先级知识点的问答对")
		for i, gap := range report.HighPriorityGaps() {
			if i >= MaxUncoveredAreas {
				break
			}
			rec.UncoveredAreas = append(rec.UncoveredAreas, UncoveredArea{KnowledgePoint: gap.Text, Priority: gap.Priority})
		}
	}
	if report.HashCoverageRate < LowCoverageThreshold {
		rec.SuggestedImprovements = append(rec.SuggestedImprovements,
			fmt.Sprintf("文档段落覆盖率较低(%.2f)，建议增加问答对数量", report.HashCoverageRate))
	}
	if report.SimpleKnowledgeCoverage < LowCoverageThreshold {
		rec.SuggestedImprovements = append(rec.SuggestedImprovements,
			fmt.Sprintf("知识点覆盖率较低(%.2f)，建议增加问答多样性", report.SimpleKnowledgeCoverage))
	}
	return s
}
