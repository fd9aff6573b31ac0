// Package knowledge 实现知识点的去重、优先级调整、语义映射与加权覆盖计算
package knowledge

import (
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// Deduplicate 按忽略大小写、折叠空白后的文本去重，保留首次出现的知识点
// 文本为空的知识点会被丢弃
func Deduplicate(points []types.KnowledgePoint) []types.KnowledgePoint {
	seen := make(map[string]struct{}, len(points))
	result := make([]types.KnowledgePoint, 0, len(points))
	for _, point := range points {
		key := utils.NormalizeKey(point.Text)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, point)
	}
	return result
}

// Prioritize 先去重，再为来源段落属于低覆盖段落的知识点设置高优先级
// 输出为稳定划分：高优先级在前，各层内部保持输入顺序
func Prioritize(points []types.KnowledgePoint, lowCoverage map[int]struct{}) []types.KnowledgePoint {
	deduped := Deduplicate(points)
	high := make([]types.KnowledgePoint, 0, len(deduped))
	normal := make([]types.KnowledgePoint, 0, len(deduped))
	for _, point := range deduped {
		point.Priority = types.PriorityNormal
		if point.HasSource() {
			if _, low := lowCoverage[*point.SourceParagraph]; low {
				point.Priority = types.PriorityHigh
			}
		}
		if point.IsHighPriority() {
			high = append(high, point)
		} else {
			normal = append(normal, point)
		}
	}
	return append(high, normal...)
}
