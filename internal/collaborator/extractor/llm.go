package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// NoKnowledgePointMarker 模型在段落中没有知识点时输出的标记
const NoKnowledgePointMarker = "无明确知识点"

const extractionPrompt = `请从以下技术文档段落中提取关键知识点。
每个知识点应该是文档中明确表达的概念、技术、方法、趋势或见解。
格式要求：
1. 每个知识点用一句简洁的话表达
2. 不要添加编号和解释
3. 以 JSON 输出：{"knowledge_points": ["知识点1", "知识点2"]}
4. 如果段落中没有明确的知识点，请输出 {"knowledge_points": ["` + NoKnowledgePointMarker + `"]}

文档段落:
%s
`

// extractionOutput 模型的结构化输出
type extractionOutput struct {
	KnowledgePoints []string `json:"knowledge_points" jsonschema:"知识点列表，每项一句话"`
}

// Generator 文本生成服务，*api.Client 满足该接口
type Generator interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// LLMConfig 基于语言模型的抽取配置
type LLMConfig struct {
	Model           string
	MinSegmentChars int // 短于该字符数的段落不送入模型
}

// LLM 逐段调用语言模型抽取知识点
type LLM struct {
	cfg       LLMConfig
	generator Generator
	schema    json.RawMessage
}

// NewLLM 创建语言模型抽取器
func NewLLM(cfg LLMConfig, generator Generator) *LLM {
	return &LLM{
		cfg:       cfg,
		generator: generator,
		schema:    utils.GenerateSchema[extractionOutput](),
	}
}

// Extract 实现 Extractor，模型调用失败时返回 CollaboratorError
func (l *LLM) Extract(ctx context.Context, _ string, segments []types.DocumentSegment) ([]types.KnowledgePoint, error) {
	var points []types.KnowledgePoint
	for _, seg := range segments {
		if seg.Length < l.cfg.MinSegmentChars {
			continue
		}
		texts, err := l.extractSegment(ctx, seg.Text)
		if err != nil {
			return nil, apperrors.NewCollaboratorError(apperrors.CollaboratorExtractor,
				fmt.Sprintf("segment %d", seg.Index), err)
		}
		for _, text := range texts {
			points = append(points, types.KnowledgePoint{
				Text:            text,
				Type:            types.KnowledgePointExtracted,
				SourceParagraph: types.ParagraphRef(seg.Index),
			})
		}
	}
	return points, nil
}

func (l *LLM) extractSegment(ctx context.Context, text string) ([]string, error) {
	stream := false
	var out strings.Builder
	err := l.generator.Generate(ctx, &api.GenerateRequest{
		Model:  l.cfg.Model,
		Prompt: fmt.Sprintf(extractionPrompt, text),
		Format: l.schema,
		Stream: &stream,
	}, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ParseKnowledgePoints(out.String()), nil
}

// ParseKnowledgePoints 解析模型输出
// 优先按 JSON 解析，失败时按行切分，并去掉无知识点标记与空行
func ParseKnowledgePoints(raw string) []string {
	var candidates []string
	var parsed extractionOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err == nil {
		candidates = parsed.KnowledgePoints
	} else {
		candidates = strings.Split(raw, "\n")
	}

	points := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || strings.Contains(c, NoKnowledgePointMarker) {
			continue
		}
		points = append(points, c)
	}
	return points
}
