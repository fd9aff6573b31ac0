// Package event 提供同步的评估阶段事件总线
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaamingzhang/qa_coverage/internal/types"
)

// EventBus 同步事件总线，处理程序按注册顺序在 Emit 的调用方 goroutine 中执行
type EventBus struct {
	mu       sync.RWMutex
	handlers map[types.EvalState][]types.EventHandler
	all      []types.EventHandler
}

var _ types.EventBusInterface = (*EventBus)(nil)

// NewEventBus 创建事件总线
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[types.EvalState][]types.EventHandler)}
}

// On 为特定阶段注册处理程序
func (b *EventBus) On(state types.EvalState, handler types.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[state] = append(b.handlers[state], handler)
}

// OnAll 注册接收所有阶段事件的处理程序
func (b *EventBus) OnAll(handler types.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

// Emit 发布事件，第一个返回错误的处理程序会中断后续处理
// 事件未携带 RunID 时使用 context 中的运行ID
func (b *EventBus) Emit(ctx context.Context, evt types.Event) error {
	if evt.RunID == "" {
		evt.RunID = types.RunIDFromContext(ctx)
	}
	b.mu.RLock()
	handlers := append(append([]types.EventHandler(nil), b.handlers[evt.State]...), b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			return fmt.Errorf("event handler for %s: %w", evt.State, err)
		}
	}
	return nil
}
