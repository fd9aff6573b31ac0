package types

import "context"

// ContextKey定义了上下文键的类型，以避免字符串冲突
type ContextKey string

const (
	// RunIDContextKey 是评估运行ID的上下文键
	RunIDContextKey ContextKey = "RunId"

	// LoggerContextKey 是日志记录器的上下文键
	LoggerContextKey ContextKey = "Logger"
)

// String 返回上下文键的字符串表示
func (c ContextKey) String() string {
	return string(c)
}

// RunIDFromContext 返回 context 中的评估运行ID，不存在时返回空字符串
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RunIDContextKey).(string)
	return id
}
