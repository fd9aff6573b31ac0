package lexical

import (
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
	"github.com/gaamingzhang/qa_coverage/internal/utils/splitter"
)

// Segment 将文档切分为按序编号的段落
func Segment(document string, minLength, minParagraphs int) []types.DocumentSegment {
	parts := splitter.NewParagraphSplitterWithConfig(minLength, minParagraphs).Split(document)
	segments := make([]types.DocumentSegment, 0, len(parts))
	for i, text := range parts {
		segments = append(segments, types.DocumentSegment{
			Index:  i,
			Text:   text,
			Length: utils.RuneLen(text),
		})
	}
	return segments
}
