package types

import (
	"context"
	"time"
)

// EventHandler 事件处理函数
type EventHandler func(ctx context.Context, evt Event) error

// Event 评估阶段事件
type Event struct {
	RunID    string                 // 评估运行ID
	State    EvalState              // 刚完成的阶段
	Elapsed  time.Duration          // 该阶段耗时
	Data     interface{}            // 事件数据
	Metadata map[string]interface{} // 事件元数据，如计数
}

// EventBusInterface 定义事件总线操作的接口
// 这个接口允许引擎发出阶段事件而不依赖具体实现
type EventBusInterface interface {
	// On 为特定阶段注册事件处理程序
	On(state EvalState, handler EventHandler)

	// Emit 向所有已注册的处理程序发布事件
	Emit(ctx context.Context, evt Event) error
}
