package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// 输出文件名
const (
	HashResultsFile      = "hash_evaluation_results.json"
	KnowledgePointsFile  = "knowledge_points.json"
	KnowledgeResultsFile = "knowledge_evaluation_results.json"
	ReportJSONFile       = "coverage_evaluation_report.json"
	ReportTextFile       = "coverage_evaluation_report.txt"
	HeatmapFile          = "coverage_heatmap.json"
)

// HashResults 词汇覆盖阶段的输出
type HashResults struct {
	CoverageRate      float64                 `json:"coverageRate"`
	CoveredParagraphs int                     `json:"coveredParagraphs"`
	TotalParagraphs   int                     `json:"totalParagraphs"`
	QAWithMatch       int                     `json:"qaWithMatch"`
	QAMatchRate       float64                 `json:"qaMatchRate"`
	ParagraphDetails  []types.ParagraphDetail `json:"paragraphDetails"`
	QADetails         []types.QADetail        `json:"qaDetails"`
}

// KnowledgeResults 知识点覆盖阶段的输出
type KnowledgeResults struct {
	SimpleCoverage   float64                        `json:"simpleCoverage"`
	WeightedCoverage float64                        `json:"weightedCoverage"`
	CoveredPoints    int                            `json:"coveredPoints"`
	TotalPoints      int                            `json:"totalPoints"`
	TopicCoverage    map[string]types.TopicCoverage `json:"topicCoverage"`
	Gaps             []types.Gap                    `json:"gaps"`
	GapCount         int                            `json:"gapCount"`
	HighPriorityGaps int                            `json:"highPriorityGapCount"`
	Mapping          *types.Mapping                 `json:"mapping"`
}

// WriteAll 将评估结果写入输出目录，返回写入的文件路径
func WriteAll(dir string, result *types.EvaluationResult, documentPath, qaPath string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	r := result.Report
	summary := BuildSummary(r, documentPath, qaPath)
	jsonFiles := []struct {
		name  string
		value any
	}{
		{HashResultsFile, HashResults{
			CoverageRate:      result.Stats.CoverageRate,
			CoveredParagraphs: len(result.Stats.CoveredParagraphs),
			TotalParagraphs:   result.Stats.TotalParagraphs,
			QAWithMatch:       result.Stats.QAWithMatch,
			QAMatchRate:       result.Stats.QAMatchRate,
			ParagraphDetails:  result.Paragraphs,
			QADetails:         result.QADetails,
		}},
		{KnowledgePointsFile, result.KnowledgePoints},
		{KnowledgeResultsFile, KnowledgeResults{
			SimpleCoverage:   r.SimpleKnowledgeCoverage,
			WeightedCoverage: r.WeightedKnowledgeCoverage,
			CoveredPoints:    r.CoveredKnowledgePoints,
			TotalPoints:      r.TotalKnowledgePoints,
			TopicCoverage:    r.PerTopicCoverage,
			Gaps:             r.Gaps,
			GapCount:         r.GapCount,
			HighPriorityGaps: r.HighPriorityGapCount,
			Mapping:          result.Mapping,
		}},
		{ReportJSONFile, summary},
		{HeatmapFile, HeatmapGrid(result.Paragraphs, DefaultHeatmapColumns)},
	}

	written := make([]string, 0, len(jsonFiles)+1)
	for _, f := range jsonFiles {
		data, err := utils.ToIndentedJSON(f.value)
		if err != nil {
			return written, fmt.Errorf("marshal %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, ReportTextFile)
	if err := os.WriteFile(path, []byte(RenderText(summary, r)), 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", ReportTextFile, err)
	}
	return append(written, path), nil
}
