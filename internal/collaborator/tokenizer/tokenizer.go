// Package tokenizer 提供用于构建文本签名的分词器
package tokenizer

import (
	"strings"
	"sync"
	"unicode"

	"github.com/yanyiwu/gojieba"
)

var (
	jiebaOnce sync.Once
	jieba     *gojieba.Jieba
)

// Shared 返回进程内共享的 jieba 实例，首次调用时加载词典
func Shared() *gojieba.Jieba {
	jiebaOnce.Do(func() {
		jieba = gojieba.NewJieba()
	})
	return jieba
}

// Jieba 基于 jieba 的中文分词器，开启 HMM 新词发现
type Jieba struct {
	jieba     *gojieba.Jieba
	lowercase bool
}

// NewJieba 创建分词器，lowercase 为 true 时将英文 token 转为小写
func NewJieba(lowercase bool) *Jieba {
	return &Jieba{jieba: Shared(), lowercase: lowercase}
}

// Tokenize 分词并丢弃纯空白 token
func (t *Jieba) Tokenize(text string) ([]string, error) {
	words := t.jieba.Cut(text, true)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			continue
		}
		if t.lowercase {
			w = strings.ToLower(w)
		}
		tokens = append(tokens, w)
	}
	return tokens, nil
}

// Whitespace 按空白与标点切分的简单分词器，不依赖词典
type Whitespace struct{}

// Tokenize 按空白与标点切分
func (Whitespace) Tokenize(text string) ([]string, error) {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}), nil
}
