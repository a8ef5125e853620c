package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount        int64 // 统计的 Tick 次数
	CommandsAccepted int64 // Submit 入队的命令数
	CommandsApplied  int64 // 应用到玩家的命令数
	UnknownEntity    int64 // 因玩家不存在被丢弃的命令数
	QueueFull        int64 // 因队列满被拒绝的命令数
	Joined           int64 // 加入的玩家数
	Departed         int64 // 主动离开或被踢出的玩家数
	Reaped           int64 // 因空闲被回收的玩家数
	ChatMessages     int64 // 转发的聊天消息数
	TickPanics       int64 // 因 panic 中断的 Tick 数
	TotalTickNs      int64 // Tick 累计耗时（纳秒）
	MaxTickNs        int64 // 最慢一次 Tick（纳秒）
}

func (m *RoomMetrics) IncAccepted()     { atomic.AddInt64(&m.CommandsAccepted, 1) }
func (m *RoomMetrics) IncQueueFull()    { atomic.AddInt64(&m.QueueFull, 1) }
func (m *RoomMetrics) IncJoined()       { atomic.AddInt64(&m.Joined, 1) }
func (m *RoomMetrics) IncDeparted()     { atomic.AddInt64(&m.Departed, 1) }
func (m *RoomMetrics) IncChat()         { atomic.AddInt64(&m.ChatMessages, 1) }
func (m *RoomMetrics) IncTickPanic()    { atomic.AddInt64(&m.TickPanics, 1) }
func (m *RoomMetrics) AddReaped(n int)  { atomic.AddInt64(&m.Reaped, int64(n)) }
func (m *RoomMetrics) AddApplied(n int) { atomic.AddInt64(&m.CommandsApplied, int64(n)) }
func (m *RoomMetrics) AddUnknown(n int) { atomic.AddInt64(&m.UnknownEntity, int64(n)) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
	for {
		cur := atomic.LoadInt64(&m.MaxTickNs)
		if ns <= cur || atomic.CompareAndSwapInt64(&m.MaxTickNs, cur, ns) {
			return
		}
	}
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"commands_accepted": atomic.LoadInt64(&m.CommandsAccepted),
		"commands_applied":  atomic.LoadInt64(&m.CommandsApplied),
		"unknown_entity":    atomic.LoadInt64(&m.UnknownEntity),
		"queue_full":        atomic.LoadInt64(&m.QueueFull),
		"joined":            atomic.LoadInt64(&m.Joined),
		"departed":          atomic.LoadInt64(&m.Departed),
		"reaped":            atomic.LoadInt64(&m.Reaped),
		"chat_messages":     atomic.LoadInt64(&m.ChatMessages),
		"tick_panics":       atomic.LoadInt64(&m.TickPanics),
		"avg_tick_ms":       avgMs,
		"max_tick_ms":       float64(atomic.LoadInt64(&m.MaxTickNs)) / 1e6,
	}
}
