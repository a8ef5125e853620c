package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"sidearena/game"
)

// EventKind 事件类型
type EventKind int

const (
	EventSnapshot EventKind = iota + 1
	EventDeparture
	EventChat
)

func (k EventKind) String() string {
	switch k {
	case EventSnapshot:
		return "state"
	case EventDeparture:
		return "player_left"
	case EventChat:
		return "chat"
	}
	return "unknown"
}

// Event 房间事件流中的一项，只设置与 Kind 对应的字段
type Event struct {
	Kind      EventKind
	Snapshot  game.Snapshot
	Departure game.Departure
	Chat      ChatMessage
}

// ErrSubscriptionClosed Close 之后 Next 返回此错误
var ErrSubscriptionClosed = errors.New("subscription closed")

// subscriberBacklog 每个订阅者排队的离开/聊天事件上限
const subscriberBacklog = 64

// Hub 向任意数量订阅者广播，发布方永不阻塞
// 快照只保留最新一份；其他事件最多排队 subscriberBacklog 条，满则丢最旧
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe 注册订阅者，用完需 Close
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub:    h,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish 投递给所有订阅者，返回订阅者数量（无订阅者时什么也不做）
func (h *Hub) Publish(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		s.push(ev)
	}
	return len(h.subs)
}

// Len 当前订阅者数量
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Subscription 单个消费者的事件队列
type Subscription struct {
	hub *Hub

	mu      sync.Mutex
	pending []Event // 至多一份快照，总是最新的

	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	if ev.Kind == EventSnapshot {
		for i, p := range s.pending {
			if p.Kind == EventSnapshot {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				s.dropped.Add(1)
				break
			}
		}
	} else if s.queuedLocked() >= subscriberBacklog {
		for i, p := range s.pending {
			if p.Kind != EventSnapshot {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				s.dropped.Add(1)
				break
			}
		}
	}
	s.pending = append(s.pending, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription) queuedLocked() int {
	n := 0
	for _, p := range s.pending {
		if p.Kind != EventSnapshot {
			n++
		}
	}
	return n
}

// Next 阻塞直到有事件、ctx 结束或订阅关闭
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		s.mu.Lock()
		if len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()
			return ev, nil
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-s.done:
			return Event{}, ErrSubscriptionClosed
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Dropped 被覆盖或丢弃的事件数
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

// Close 注销订阅（可重复调用）
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)
		close(s.done)
	})
}
