package server

import (
	"errors"
	"sync"
	"time"

	"sidearena/game"
)

// ErrQueueFull 命令队列已满（瞬时状态，调用方可重试或丢弃）
var ErrQueueFull = errors.New("command queue full")

// RoomOptions 房间循环参数
type RoomOptions struct {
	TickInterval time.Duration // 模拟周期，每个 Tick 固定推进 game.TickDelta
	ReapInterval time.Duration // 空闲扫描周期
	QueueSize    int           // 命令队列容量
	Clock        func() time.Time
}

// DefaultRoomOptions 默认 60Hz Tick，30s 回收一次，队列 256
func DefaultRoomOptions() RoomOptions {
	return RoomOptions{
		TickInterval: time.Second / game.TickRate,
		ReapInterval: 30 * time.Second,
		QueueSize:    256,
		Clock:        time.Now,
	}
}

func (o RoomOptions) withDefaults() RoomOptions {
	def := DefaultRoomOptions()
	if o.TickInterval <= 0 {
		o.TickInterval = def.TickInterval
	}
	if o.ReapInterval <= 0 {
		o.ReapInterval = def.ReapInterval
	}
	if o.QueueSize <= 0 {
		o.QueueSize = def.QueueSize
	}
	if o.Clock == nil {
		o.Clock = def.Clock
	}
	return o
}

// Room 房间世界：权威状态维护在内存，单线程 Tick 推进
// 命令队列只由 Tick 消费；除 Join/Leave 外只有 Tick 与回收协程写世界
// 持锁期间不做 I/O，也不广播
type Room struct {
	ID string

	mu    sync.RWMutex
	world *game.World

	cfg       *game.Config
	inputChan chan Input
	hub       *Hub
	metrics   *RoomMetrics
	opts      RoomOptions

	startOnce sync.Once
}

// NewRoom 创建空房间，cfg 为 nil 时使用默认配置
func NewRoom(id string, cfg *game.Config, opts RoomOptions) *Room {
	if cfg == nil {
		cfg = game.DefaultConfig()
	}
	opts = opts.withDefaults()
	return &Room{
		ID:        id,
		world:     game.NewWorld(cfg),
		cfg:       cfg,
		inputChan: make(chan Input, opts.QueueSize),
		hub:       NewHub(),
		metrics:   &RoomMetrics{},
		opts:      opts,
	}
}

func (r *Room) Config() *game.Config { return r.cfg }

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Join 玩家不存在时加入，返回是否新建
func (r *Room) Join(id game.EntityID, label string) bool {
	now := r.opts.Clock()
	r.mu.Lock()
	added := r.world.Add(id, label, now)
	if !added {
		r.world.Touch(id, now)
	}
	r.mu.Unlock()

	if added {
		r.metrics.IncJoined()
		Log.Infow("player joined", "room", r.ID, "player", id, "name", label)
	}
	return added
}

// Leave 移除玩家并广播离开事件（未知 id 忽略）
func (r *Room) Leave(id game.EntityID) bool {
	r.mu.Lock()
	e, ok := r.world.Remove(id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.metrics.IncDeparted()
	Log.Infow("player left", "room", r.ID, "player", id, "name", e.Label)
	r.hub.Publish(Event{Kind: EventDeparture, Departure: game.Departure{ID: e.ID, Label: e.Label}})
	return true
}

// Submit 刷新活跃时间并将命令排入下一 Tick
// 非阻塞：队列满返回 ErrQueueFull；未知玩家的命令直接丢弃
func (r *Room) Submit(id game.EntityID, cmd game.Command) error {
	r.mu.Lock()
	known := r.world.Touch(id, r.opts.Clock())
	r.mu.Unlock()
	if !known {
		r.metrics.AddUnknown(1)
		return nil
	}

	select {
	case r.inputChan <- Input{PlayerID: id, Command: cmd}:
		r.metrics.IncAccepted()
		return nil
	default:
		r.metrics.IncQueueFull()
		return ErrQueueFull
	}
}

// Subscribe 订阅房间事件流（快照、离开、聊天）
func (r *Room) Subscribe() *Subscription { return r.hub.Subscribe() }

// Subscribers 当前订阅者数量
func (r *Room) Subscribers() int { return r.hub.Len() }

// Snapshot 返回当前世界状态
func (r *Room) Snapshot() game.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.world.Snapshot()
}

// Entity 返回单个玩家状态的副本
func (r *Room) Entity(id game.EntityID) (game.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.world.Get(id)
}

// Len 玩家数量
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.world.Len()
}

// QueueLen 等待下一 Tick 的命令数
func (r *Room) QueueLen() int { return len(r.inputChan) }

// Step 执行一个 Tick：取出命令 → 应用 → 推进物理 → 广播快照
func (r *Room) Step() game.Snapshot {
	start := time.Now()
	inputs := r.drainInputs()
	snap, applied := r.advance(inputs)

	r.metrics.AddApplied(applied)
	r.metrics.AddUnknown(len(inputs) - applied)
	r.metrics.AddTick(time.Since(start).Nanoseconds())
	r.hub.Publish(Event{Kind: EventSnapshot, Snapshot: snap})
	return snap
}

func (r *Room) advance(inputs []Input) (game.Snapshot, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied := 0
	for _, in := range inputs {
		if r.world.ApplyCommand(in.PlayerID, in.Command) {
			applied++
		}
	}
	r.world.Advance(game.TickDelta)
	return r.world.Snapshot(), applied
}

// drainInputs 只取当前已排队的命令，之后到达的留给下一 Tick
func (r *Room) drainInputs() []Input {
	n := len(r.inputChan)
	if n == 0 {
		return nil
	}
	inputs := make([]Input, 0, n)
	for i := 0; i < n; i++ {
		select {
		case in := <-r.inputChan:
			inputs = append(inputs, in)
		default:
			return inputs
		}
	}
	return inputs
}

// ReapIdle 移除超时未活跃的玩家，每人广播一次离开事件
// 读锁下扫描，写锁下逐个复核后再移除（期间恢复活跃的玩家保留）
func (r *Room) ReapIdle() []game.Departure {
	now := r.opts.Clock()
	timeout := r.cfg.IdleTimeoutDuration()

	r.mu.RLock()
	candidates := r.world.IdleSince(now, timeout)
	r.mu.RUnlock()
	if len(candidates) == 0 {
		return nil
	}

	removed := make([]game.Departure, 0, len(candidates))
	r.mu.Lock()
	for _, c := range candidates {
		e, ok := r.world.Get(c.ID)
		if !ok || now.Sub(e.LastActivity) <= timeout {
			continue
		}
		r.world.Remove(c.ID)
		c.Idle = now.Sub(e.LastActivity)
		removed = append(removed, c)
	}
	r.mu.Unlock()

	for _, d := range removed {
		Log.Infow("player timed out", "room", r.ID, "player", d.ID, "name", d.Label,
			"idle", d.Idle.Round(time.Second), "timeout", timeout)
		r.hub.Publish(Event{Kind: EventDeparture, Departure: d})
	}
	r.metrics.AddReaped(len(removed))
	return removed
}
