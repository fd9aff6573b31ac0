// Package extractor 从文档段落中抽取候选知识点
package extractor

import (
	"context"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

// Extractor 知识点抽取器
type Extractor interface {
	Extract(ctx context.Context, document string, segments []types.DocumentSegment) ([]types.KnowledgePoint, error)
}

// Combined 依次调用多个抽取器并按顺序拼接结果
// 去重由调用方完成
type Combined []Extractor

// Extract 实现 Extractor，任一抽取器失败即返回错误
func (c Combined) Extract(ctx context.Context, document string, segments []types.DocumentSegment) ([]types.KnowledgePoint, error) {
	var points []types.KnowledgePoint
	for _, e := range c {
		if e == nil {
			continue
		}
		got, err := e.Extract(ctx, document, segments)
		if err != nil {
			return nil, err
		}
		points = append(points, got...)
	}
	return points, nil
}

// Static 返回固定知识点列表的抽取器
type Static []types.KnowledgePoint

// Extract 实现 Extractor
func (s Static) Extract(context.Context, string, []types.DocumentSegment) ([]types.KnowledgePoint, error) {
	return append([]types.KnowledgePoint(nil), s...), nil
}
