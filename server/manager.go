package server

import (
	"context"
	"errors"
	"sort"
	"sync"

	"sidearena/game"
)

// ErrUnknownRoom 房间不存在
var ErrUnknownRoom = errors.New("unknown room")

// RoomManager 管理多个房间的生命周期（随 ctx 取消而停止）
type RoomManager struct {
	ctx  context.Context
	opts RoomOptions

	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   *game.Config
}

func NewRoomManager(ctx context.Context, cfg *game.Config, opts RoomOptions) *RoomManager {
	if cfg == nil {
		cfg = game.DefaultConfig()
	}
	return &RoomManager{
		ctx:   ctx,
		opts:  opts,
		rooms: make(map[string]*Room),
		cfg:   cfg,
	}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok = m.rooms[id]
	if !ok {
		r = NewRoom(id, m.cfg, m.opts)
		m.rooms[id] = r
		r.Start(m.ctx)
	}
	return r
}

// Room 获取已存在的房间
func (m *RoomManager) Room(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrUnknownRoom
	}
	return r, nil
}

// Rooms 按字典序列出房间 id
func (m *RoomManager) Rooms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Config 新建房间使用的配置
func (m *RoomManager) Config() *game.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// SetConfig 替换之后新建房间的配置（运行中的房间不受影响）
func (m *RoomManager) SetConfig(cfg *game.Config) {
	if cfg == nil {
		return
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}
