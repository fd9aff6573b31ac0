package report

import "github.com/gaamingzhang/qa_coverage/internal/types"

// DefaultHeatmapColumns 热图每行的段落数
const DefaultHeatmapColumns = 4

// Heatmap 段落覆盖热图数据，按行优先排列，末行不足的位置为 0
type Heatmap struct {
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	Max    int     `json:"max"`
	Values [][]int `json:"values"` // 每个段落匹配到的问答对数
}

// HeatmapGrid 根据段落明细生成热图数据
func HeatmapGrid(paragraphs []types.ParagraphDetail, cols int) *Heatmap {
	if cols <= 0 {
		cols = DefaultHeatmapColumns
	}
	rows := (len(paragraphs) + cols - 1) / cols
	h := &Heatmap{Rows: rows, Cols: cols, Values: make([][]int, rows)}
	for r := range h.Values {
		h.Values[r] = make([]int, cols)
	}
	for i, p := range paragraphs {
		h.Values[i/cols][i%cols] = p.MatchedQACount
		if p.MatchedQACount > h.Max {
			h.Max = p.MatchedQACount
		}
	}
	return h
}
