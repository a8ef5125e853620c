package server

import (
	"context"
	"time"
)

// Start 启动 Tick 循环与空闲回收（ctx 结束即停止，重复调用无效）
func (r *Room) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		// 核心循环：处理输入 → 更新世界 → 广播结果
		go r.runLoop(ctx, r.opts.TickInterval, "tick", func() { r.Step() })
		go r.runLoop(ctx, r.opts.ReapInterval, "reap", func() { r.ReapIdle() })
		Log.Infow("room started", "room", r.ID, "tick", r.opts.TickInterval, "reap", r.opts.ReapInterval,
			"idle_timeout", r.cfg.IdleTimeoutDuration())
	})
}

func (r *Room) runLoop(ctx context.Context, every time.Duration, name string, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			Log.Debugw("room loop stopped", "room", r.ID, "loop", name)
			return
		case <-ticker.C:
			r.guard(name, fn)
		}
	}
}

// guard 单次迭代 panic 不终止循环
func (r *Room) guard(name string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.IncTickPanic()
			Log.Errorw("room loop iteration panicked", "room", r.ID, "loop", name, "panic", p)
		}
	}()
	fn()
}
