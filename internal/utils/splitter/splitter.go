package splitter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 段落分割的默认配置
const (
	DefaultMinLength     = 50 // 段落的最小字符数，更短的段落会被丢弃
	DefaultMinParagraphs = 5  // 按空行分割得到的段落少于该值时，改为按单换行分割
)

// SplitFunc 定义一个用于分割文本的函数类型
type SplitFunc func(text string) []string

// LengthFunction 定义如何计算文本长度的函数类型
type LengthFunction func(text string) int

// ParagraphSplitter 将文档按段落边界分割
// 分割策略：
// 1. 优先按空行（可包含空白字符）分割
// 2. 去掉首尾空白，丢弃长度不足 MinLength 的段落
// 3. 如果剩余段落少于 MinParagraphs，改为按单个换行分割并重新过滤
type ParagraphSplitter struct {
	MinLength     int            // 段落最小长度（以字符计）
	MinParagraphs int            // 触发单换行回退的段落数阈值
	LengthFunc    LengthFunction // 计算文本长度的函数
	splitFuncs    []SplitFunc    // 分割函数列表，按优先级从高到低
}

// NewParagraphSplitter 创建一个新的段落分割器，使用默认配置
func NewParagraphSplitter() *ParagraphSplitter {
	return NewParagraphSplitterWithConfig(DefaultMinLength, DefaultMinParagraphs)
}

// NewParagraphSplitterWithConfig 创建一个新的段落分割器，使用自定义配置
//
// 参数：
//   - minLength: 段落最小字符数，<=0 时不过滤
//   - minParagraphs: 段落数少于该值时回退到单换行分割
func NewParagraphSplitterWithConfig(minLength, minParagraphs int) *ParagraphSplitter {
	return &ParagraphSplitter{
		MinLength:     minLength,
		MinParagraphs: minParagraphs,
		LengthFunc:    func(text string) int { return utf8.RuneCountInString(text) },
		splitFuncs: []SplitFunc{
			createRegexSplitFunc(regexp.MustCompile(`\n\s*\n`)),
			createSeparatorSplitFunc("\n"),
		},
	}
}

// Split 将文本分割成段落，返回的段落已去除首尾空白
//
// 示例：
//
//	ps := NewParagraphSplitter()
//	for i, p := range ps.Split(document) {
//	    fmt.Printf("段落 %d: %s\n", i, p)
//	}
func (ps *ParagraphSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	var paragraphs []string
	for i, splitFunc := range ps.splitFuncs {
		paragraphs = ps.filter(splitFunc(text))
		// 最后一个分割函数的结果直接使用
		if i == len(ps.splitFuncs)-1 || len(paragraphs) >= ps.MinParagraphs {
			break
		}
	}
	return paragraphs
}

// filter 去除首尾空白并丢弃过短的片段
func (ps *ParagraphSplitter) filter(parts []string) []string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" || ps.LengthFunc(trimmed) < ps.MinLength {
			continue
		}
		filtered = append(filtered, trimmed)
	}
	return filtered
}

// 辅助函数

// createRegexSplitFunc 使用正则表达式作为分隔符创建分割函数
func createRegexSplitFunc(pattern *regexp.Regexp) SplitFunc {
	return func(text string) []string {
		return pattern.Split(text, -1)
	}
}

// createSeparatorSplitFunc 为给定的分隔符创建分割函数
func createSeparatorSplitFunc(separator string) SplitFunc {
	return func(text string) []string {
		return strings.Split(text, separator)
	}
}
