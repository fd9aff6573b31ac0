// Package logger 封装 zap 结构化日志
package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// maxValueLength 日志中单个文本字段的最大字符数
const maxValueLength = 200

// Logger 结构化日志记录器
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New 按模式创建日志记录器，mode 为 prod/production 时使用 JSON 编码
func New(mode string, level string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewNop 返回丢弃所有输出的日志记录器
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Sync 刷新缓冲
func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}

// With 返回附带固定字段的子日志记录器
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

// WithContext 将日志记录器放入 context
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, types.LoggerContextKey, l)
}

// FromContext 从 context 中取出日志记录器，不存在时返回 fallback
// fallback 为 nil 时返回 no-op 记录器
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(types.LoggerContextKey).(*Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return NewNop()
}

// sanitizeKVs 清理字符串与字符串切片中的换行和控制字符，长字符串会被截断
func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i, v := range kv {
		if i%2 == 1 {
			switch val := v.(type) {
			case string:
				v = utils.TruncateRunes(utils.SanitizeForLog(val), maxValueLength)
			case []string:
				v = utils.SanitizeForLogArray(val)
			}
		}
		out = append(out, v)
	}
	return out
}
