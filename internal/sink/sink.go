// Package sink 模拟事件的接收方：结构化日志遥测与计数
package sink

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"bombsim/pkg/core"
)

// Telemetry 把事件写到日志，高频事件（放弹、爆炸、砖块）只在 Debug 级别输出
type Telemetry struct {
	logger *log.Logger
}

var _ core.EventSink = (*Telemetry)(nil)

// NewTelemetry 创建遥测接收方
func NewTelemetry(logger *log.Logger) *Telemetry {
	if logger == nil {
		logger = log.Default()
	}
	return &Telemetry{logger: logger.WithPrefix("event")}
}

// Notify 实现 core.EventSink
func (t *Telemetry) Notify(name string, ev core.Event) {
	kv := []any{"frame", ev.Frame, "x", ev.Pos.GridX, "y", ev.Pos.GridY}
	if ev.Actor != 0 {
		kv = append(kv, "actor", ev.Actor)
	}
	if ev.Value != 0 {
		kv = append(kv, "value", ev.Value)
	}

	switch ev.Kind {
	case core.EventBombPlaced, core.EventExplosion, core.EventBlockDestroyed, core.EventBombKicked:
		t.logger.Debug(name, kv...)
	case core.EventPlayerDeath, core.EventTimeUp, core.EventGameOver:
		t.logger.Warn(name, kv...)
	default:
		t.logger.Info(name, kv...)
	}
}

// Counter 按事件名计数，可并发读取
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
}

var _ core.EventSink = (*Counter)(nil)

// NewCounter 创建计数器
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Notify 实现 core.EventSink
func (c *Counter) Notify(name string, _ core.Event) {
	c.mu.Lock()
	c.counts[name]++
	c.mu.Unlock()
}

// Count 某个事件出现的次数
func (c *Counter) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Entry 计数项
type Entry struct {
	Name  string
	Count int
}

// Summary 按次数降序，次数相同按名称排序
func (c *Counter) Summary() []Entry {
	c.mu.Lock()
	out := make([]Entry, 0, len(c.counts))
	for name, n := range c.counts {
		out = append(out, Entry{Name: name, Count: n})
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Reset 清空计数
func (c *Counter) Reset() {
	c.mu.Lock()
	c.counts = make(map[string]int)
	c.mu.Unlock()
}
