package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeWhitespace 将连续空白字符折叠为单个空格
func NormalizeWhitespace(text string) string {
	return whitespaceRegex.ReplaceAllString(text, " ")
}

// NormalizeKey 返回用于去重比较的文本：小写、空白折叠、去除首尾空白
func NormalizeKey(text string) string {
	return strings.TrimSpace(NormalizeWhitespace(strings.ToLower(text)))
}

// RuneLen 返回文本的字符数（UTF-8 rune 计数）
func RuneLen(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes 按字符截断文本，超出时追加 "..."
func TruncateRunes(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}
