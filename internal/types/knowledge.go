package types

// KnowledgePointType 知识点来源类型
type KnowledgePointType string

const (
	// KnowledgePointEntity 命名实体
	KnowledgePointEntity KnowledgePointType = "ENTITY"
	// KnowledgePointPhrase 关键短语/名词短语
	KnowledgePointPhrase KnowledgePointType = "PHRASE"
	// KnowledgePointExtracted 由语言模型抽取的知识点
	KnowledgePointExtracted KnowledgePointType = "EXTRACTED"
)

// Priority 知识点优先级
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// KnowledgePoint 表示文档中的一个知识点
type KnowledgePoint struct {
	// 知识点文本
	Text string `json:"text"`
	// 知识点类型
	Type KnowledgePointType `json:"type"`
	// 来源段落序号，未知时为 nil
	SourceParagraph *int `json:"sourceParagraph"`
	// 优先级，由 Prioritizer 设置
	Priority Priority `json:"priority"`
}

// HasSource 判断知识点是否有已知的来源段落
func (p KnowledgePoint) HasSource() bool {
	return p.SourceParagraph != nil
}

// IsHighPriority 判断知识点是否为高优先级
func (p KnowledgePoint) IsHighPriority() bool {
	return p.Priority == PriorityHigh
}

// ParagraphRef 返回段落序号的指针，用于设置 SourceParagraph
func ParagraphRef(index int) *int {
	return &index
}
