package extractor

import (
	"context"
	"strings"

	"github.com/yanyiwu/gojieba"

	"github.com/gaamingzhang/qa_coverage/internal/collaborator/tokenizer"
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// entityTags 视为命名实体的词性：人名、地名、机构名、其他专名
var entityTags = map[string]struct{}{
	"nr": {},
	"ns": {},
	"nt": {},
	"nz": {},
}

// RuleConfig 基于规则的抽取配置
type RuleConfig struct {
	KeywordsPerSegment int // 每个段落抽取的关键词数
	MinPhraseLength    int // 关键短语的最小字符数
}

// DefaultRuleConfig 返回默认配置
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{KeywordsPerSegment: 5, MinPhraseLength: 2}
}

// Rule 基于 jieba 词性标注与 TF-IDF 关键词的知识点抽取器
type Rule struct {
	cfg   RuleConfig
	jieba *gojieba.Jieba
}

// NewRule 创建规则抽取器
func NewRule(cfg RuleConfig) *Rule {
	return &Rule{cfg: cfg, jieba: tokenizer.Shared()}
}

// Extract 逐段抽取命名实体与关键短语，并记录来源段落
func (r *Rule) Extract(ctx context.Context, _ string, segments []types.DocumentSegment) ([]types.KnowledgePoint, error) {
	var points []types.KnowledgePoint
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, tagged := range r.jieba.Tag(seg.Text) {
			word, tag, ok := splitTag(tagged)
			if !ok {
				continue
			}
			if _, entity := entityTags[tag]; entity {
				points = append(points, types.KnowledgePoint{
					Text:            word,
					Type:            types.KnowledgePointEntity,
					SourceParagraph: types.ParagraphRef(seg.Index),
				})
			}
		}
		if r.cfg.KeywordsPerSegment <= 0 {
			continue
		}
		for _, kw := range r.jieba.ExtractWithWeight(seg.Text, r.cfg.KeywordsPerSegment) {
			word := strings.TrimSpace(kw.Word)
			if utils.RuneLen(word) < r.cfg.MinPhraseLength {
				continue
			}
			points = append(points, types.KnowledgePoint{
				Text:            word,
				Type:            types.KnowledgePointPhrase,
				SourceParagraph: types.ParagraphRef(seg.Index),
			})
		}
	}
	return points, nil
}

// splitTag 拆分 "词/词性" 形式的标注结果
func splitTag(tagged string) (word, tag string, ok bool) {
	i := strings.LastIndex(tagged, "/")
	if i <= 0 || i == len(tagged)-1 {
		return "", "", false
	}
	word = strings.TrimSpace(tagged[:i])
	return word, tagged[i+1:], word != ""
}
