package types

import (
	"time"

	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// EvaluationStatue 表示评估任务的状态
type EvaluationStatue int

const (
	EvaluationStatuePending EvaluationStatue = iota // 任务等待开始
	EvaluationStatueRunning                         // 任务进行中
	EvaluationStatueSuccess                         // 任务成功完成
	EvaluationStatueFailed                          // 任务失败
)

// String 返回状态名
func (s EvaluationStatue) String() string {
	switch s {
	case EvaluationStatuePending:
		return "pending"
	case EvaluationStatueRunning:
		return "running"
	case EvaluationStatueSuccess:
		return "success"
	case EvaluationStatueFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EvaluationTask 包含一次覆盖度评估的运行信息
type EvaluationTask struct {
	ID        string           `json:"id"`                // 唯一运行ID
	StartTime time.Time        `json:"start_time"`        // 开始时间
	Duration  time.Duration    `json:"duration"`          // 耗时
	Status    EvaluationStatue `json:"status"`            // 当前状态
	ErrMsg    string           `json:"err_msg,omitempty"` // 失败时的错误消息

	Total    int `json:"total,omitempty"`    // 需要评估的问答单元数
	Finished int `json:"finished,omitempty"` // 已完成语义映射的问答单元数
}

// String 返回 EvaluationTask 的 JSON 表示
func (e *EvaluationTask) String() string {
	return utils.ToJSON(e)
}

// EvaluationResult 包含一次评估的最终报告与中间结果
// 中间结果供需要段落级细节的调用方使用（例如热图渲染）
type EvaluationResult struct {
	Task            *EvaluationTask   `json:"task"`
	Report          *CoverageReport   `json:"report"`
	Segments        []DocumentSegment `json:"segments"`
	Stats           *CoverageStats    `json:"stats"`
	Paragraphs      []ParagraphDetail `json:"paragraphs"`
	QADetails       []QADetail        `json:"qaDetails"`
	KnowledgePoints []KnowledgePoint  `json:"knowledgePoints"` // 去重并按优先级排序后的知识点
	Mapping         *Mapping          `json:"mapping"`
}

// EvalState 表示评估过程的不同阶段
type EvalState int

const (
	StateBegin             EvalState = iota // 评估开始
	StateAfterSegmentation                  // 文档分段后
	StateAfterLexical                       // 哈希覆盖分析后
	StateAfterExtraction                    // 知识点抽取后
	StateAfterPrioritize                    // 知识点去重与优先级调整后
	StateAfterMapping                       // 语义映射后
	StateAfterComplete                      // 覆盖率与缺口计算后
	StateEnd                                // 评估结束
)

// String 返回阶段名，用于日志与指标标签
func (s EvalState) String() string {
	switch s {
	case StateBegin:
		return "begin"
	case StateAfterSegmentation:
		return "segmentation"
	case StateAfterLexical:
		return "lexical"
	case StateAfterExtraction:
		return "extraction"
	case StateAfterPrioritize:
		return "prioritize"
	case StateAfterMapping:
		return "mapping"
	case StateAfterComplete:
		return "complete"
	case StateEnd:
		return "end"
	default:
		return "unknown"
	}
}
