package types

import "sort"

// CoverageStats 是哈希（词汇重叠）阶段的覆盖统计，每次评估重新构建
type CoverageStats struct {
	TotalParagraphs   int           `json:"totalParagraphs"`
	CoveredParagraphs []int         `json:"coveredParagraphs"` // 升序
	ParagraphToQA     map[int][]int `json:"paragraphToQA"`     // 段落 -> 匹配的问答单元序号
	QAToParagraph     map[int][]int `json:"qaToParagraph"`     // 问答单元序号 -> 匹配的段落
	TotalQA           int           `json:"totalQA"`
	QAWithMatch       int           `json:"qaWithMatch"`
	CoverageRate      float64       `json:"coverageRate"`
	QAMatchRate       float64       `json:"qaMatchRate"`
}

// NewCoverageStats 创建空的覆盖统计
func NewCoverageStats(totalParagraphs, totalQA int) *CoverageStats {
	return &CoverageStats{
		TotalParagraphs:   totalParagraphs,
		CoveredParagraphs: []int{},
		ParagraphToQA:     make(map[int][]int),
		QAToParagraph:     make(map[int][]int),
		TotalQA:           totalQA,
	}
}

// Link 记录一次段落与问答单元的双向匹配
func (s *CoverageStats) Link(paragraph, qa int) {
	s.ParagraphToQA[paragraph] = append(s.ParagraphToQA[paragraph], qa)
	s.QAToParagraph[qa] = append(s.QAToParagraph[qa], paragraph)
}

// Finalize 根据已记录的匹配计算已覆盖段落与各项比率
// 段落或问答单元数量为 0 时比率为 0
func (s *CoverageStats) Finalize() {
	covered := make([]int, 0, len(s.ParagraphToQA))
	for idx, qas := range s.ParagraphToQA {
		if len(qas) > 0 {
			covered = append(covered, idx)
		}
	}
	sort.Ints(covered)
	s.CoveredParagraphs = covered

	s.QAWithMatch = 0
	for _, paragraphs := range s.QAToParagraph {
		if len(paragraphs) > 0 {
			s.QAWithMatch++
		}
	}

	s.CoverageRate = Ratio(len(covered), s.TotalParagraphs)
	s.QAMatchRate = Ratio(s.QAWithMatch, s.TotalQA)
}

// IsCovered 判断段落是否被至少一个问答单元匹配
func (s *CoverageStats) IsCovered(paragraph int) bool {
	return len(s.ParagraphToQA[paragraph]) > 0
}

// LowCoverageSegments 返回没有任何问答单元匹配的段落集合
func (s *CoverageStats) LowCoverageSegments() map[int]struct{} {
	low := make(map[int]struct{})
	for i := 0; i < s.TotalParagraphs; i++ {
		if !s.IsCovered(i) {
			low[i] = struct{}{}
		}
	}
	return low
}

// MappingEntry 问答单元到知识点的一条匹配
type MappingEntry struct {
	KnowledgePointIndex int      `json:"knowledgePointIndex"`
	Similarity          float64  `json:"similarity"`
	Priority            Priority `json:"priority"`
}

// QAMapping 单个问答单元的全部匹配
type QAMapping struct {
	Unit    QAUnit         `json:"unit"`
	Matches []MappingEntry `json:"matches"`
}

// PointMatch 知识点被某个问答单元匹配的记录
type PointMatch struct {
	QAIndex    int     `json:"qaIndex"` // 展开后的问答单元序号
	QAID       string  `json:"qaId"`
	Similarity float64 `json:"similarity"`
}

// Mapping 是问答单元与知识点之间的二部覆盖关系
type Mapping struct {
	QA       []QAMapping    `json:"qa"`       // 按问答单元顺序
	PerPoint [][]PointMatch `json:"perPoint"` // 按知识点顺序
}

// IsCovered 判断知识点是否至少被一个问答单元匹配
func (m *Mapping) IsCovered(point int) bool {
	return point >= 0 && point < len(m.PerPoint) && len(m.PerPoint[point]) > 0
}

// Gap 未被任何问答单元覆盖的知识点
type Gap struct {
	Index    int                `json:"index"` // 在优先级排序后知识点列表中的序号
	Text     string             `json:"text"`
	Type     KnowledgePointType `json:"type"`
	Priority Priority           `json:"priority"`
}

// TopicCoverage 单个主题对全文知识点的覆盖情况
type TopicCoverage struct {
	CoveredPoints int     `json:"coveredPoints"`
	CoverageRate  float64 `json:"coverageRate"`
}

// 退化输入的说明标记
const (
	WarningNoSegments        = "NO_SEGMENTS"
	WarningNoKnowledgePoints = "NO_KNOWLEDGE_POINTS"
)

// CoverageReport 是一次评估的最终聚合结果
type CoverageReport struct {
	HashCoverageRate          float64                  `json:"hashCoverageRate"`
	QAMatchRate               float64                  `json:"qaMatchRate"`
	WeightedKnowledgeCoverage float64                  `json:"weightedKnowledgeCoverage"`
	SimpleKnowledgeCoverage   float64                  `json:"simpleKnowledgeCoverage"`
	TotalParagraphs           int                      `json:"totalParagraphs"`
	CoveredParagraphs         int                      `json:"coveredParagraphs"`
	TotalKnowledgePoints      int                      `json:"totalKnowledgePoints"`
	CoveredKnowledgePoints    int                      `json:"coveredKnowledgePoints"`
	GapCount                  int                      `json:"gapCount"`
	HighPriorityGapCount      int                      `json:"highPriorityGapCount"`
	Gaps                      []Gap                    `json:"gaps"`
	PerTopicCoverage          map[string]TopicCoverage `json:"perTopicCoverage"`
	Warnings                  []string                 `json:"warnings,omitempty"`
}

// HighPriorityGaps 返回高优先级缺口
func (r *CoverageReport) HighPriorityGaps() []Gap {
	var gaps []Gap
	for _, gap := range r.Gaps {
		if gap.Priority == PriorityHigh {
			gaps = append(gaps, gap)
		}
	}
	return gaps
}

// AddWarning 添加退化输入标记（去重）
func (r *CoverageReport) AddWarning(code string) {
	for _, w := range r.Warnings {
		if w == code {
			return
		}
	}
	r.Warnings = append(r.Warnings, code)
}

// Ratio 计算 num/den，分母为 0 时返回 0
func Ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
