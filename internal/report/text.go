package report

import (
	"fmt"
	"strings"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

// RenderText 渲染 markdown 格式的文本报告
func RenderText(s *Summary, report *types.CoverageReport) string {
	o := s.Summary
	var b strings.Builder
	b.WriteString("# 文档覆盖度评估报告\n\n")
	b.WriteString("## 总体情况\n")
	fmt.Fprintf(&b, "- 原始文档: %s\n", o.OriginalDocument)
	fmt.Fprintf(&b, "- 问答对文件: %s\n", o.QAPairsFile)
	fmt.Fprintf(&b, "- 文档段落覆盖率: %.2f (%d/%d)\n", o.HashCoverageRate, o.CoveredParagraphs, o.TotalParagraphs)
	fmt.Fprintf(&b, "- 知识点覆盖率: %.2f (%d/%d)\n", o.KnowledgeCoverageRate, o.CoveredKnowledgePoints, o.TotalKnowledgePoints)
	fmt.Fprintf(&b, "- 加权知识点覆盖率: %.2f\n", o.WeightedKnowledgeCoverage)
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "- 注意: %s\n", w)
	}

	b.WriteString("\n## 未覆盖的高优先级知识点\n")
	gaps := report.HighPriorityGaps()
	if len(gaps) == 0 {
		b.WriteString("- 无高优先级知识点缺口\n")
	}
	for i, gap := range gaps {
		if i >= MaxTextReportGaps {
			break
		}
		fmt.Fprintf(&b, "- %d. %s\n", i+1, gap.Text)
	}

	b.WriteString("\n## 建议改进\n")
	for _, suggestion := range s.Recommendations.SuggestedImprovements {
		fmt.Fprintf(&b, "- %s\n", suggestion)
	}
	return b.String()
}
