package types

// DocumentSegment 表示文档分割后的一个段落
// 段落按创建顺序编号为 0..N-1，创建后不可变
type DocumentSegment struct {
	Index  int    `json:"index"`  // 段落序号
	Text   string `json:"text"`   // 段落文本（已去除首尾空白）
	Length int    `json:"length"` // 段落长度（字符数）
}

// ParagraphDetail 段落级别的覆盖明细，用于热图等渲染
type ParagraphDetail struct {
	Index            int    `json:"index"`
	Content          string `json:"content"` // 段落预览
	MatchedQACount   int    `json:"matchedQACount"`
	MatchedQAIndices []int  `json:"matchedQAIndices"`
}

// QADetail 问答对级别的覆盖明细
type QADetail struct {
	Index             int    `json:"index"`
	Question          string `json:"question"`
	Topic             string `json:"topic"`
	MatchedParagraphs []int  `json:"matchedParagraphs"`
}
