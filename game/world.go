package game

import (
	"sort"
	"time"
)

// EntityState is the published, immutable view of one entity.
type EntityState struct {
	ID          EntityID
	Label       string
	X, Y        float64
	VX, VY      float64
	FacingRight bool
	Ground      GroundState
}

// Snapshot is a complete copy of the world at one tick. Entities are sorted
// by ID.
type Snapshot struct {
	Tick     uint64
	Entities []EntityState
}

// Departure describes an entity that left the world.
type Departure struct {
	ID    EntityID
	Label string
	Idle  time.Duration
}

// World maps entity ids to entities. It is not safe for concurrent use;
// server.Room serialises access.
type World struct {
	cfg      *Config
	level    *Level
	entities map[EntityID]*Entity
	tick     uint64
}

// NewWorld creates an empty world. A nil cfg selects DefaultConfig.
func NewWorld(cfg *Config) *World {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &World{
		cfg:      cfg,
		level:    NewLevel(cfg),
		entities: make(map[EntityID]*Entity),
	}
}

func (w *World) Config() *Config { return w.cfg }

func (w *World) Len() int { return len(w.entities) }

func (w *World) Tick() uint64 { return w.tick }

// Add spawns id standing on the ground. Adding an existing id is a no-op;
// the return value reports whether an entity was created.
func (w *World) Add(id EntityID, label string, now time.Time) bool {
	if _, ok := w.entities[id]; ok {
		return false
	}
	w.entities[id] = newEntity(id, label, &w.level.Physics, now)
	return true
}

// Remove deletes id and returns the removed entity.
func (w *World) Remove(id EntityID) (Entity, bool) {
	e, ok := w.entities[id]
	if !ok {
		return Entity{}, false
	}
	delete(w.entities, id)
	return *e, true
}

// Get returns a copy of the entity.
func (w *World) Get(id EntityID) (Entity, bool) {
	e, ok := w.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Touch refreshes the activity timestamp of id, if present.
func (w *World) Touch(id EntityID, now time.Time) bool {
	e, ok := w.entities[id]
	if ok {
		e.Touch(now)
	}
	return ok
}

// ApplyCommand runs cmd against id. Unknown ids are ignored and reported
// with false.
func (w *World) ApplyCommand(id EntityID, cmd Command) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	ApplyCommand(e, cmd, &w.level.Physics)
	return true
}

// Advance runs the physics step for every entity. Entities do not interact,
// so iteration order does not matter.
func (w *World) Advance(dt float64) {
	w.tick++
	for _, e := range w.entities {
		Step(e, w.level, dt)
	}
}

// Snapshot copies the current state of every entity.
func (w *World) Snapshot() Snapshot {
	out := make([]EntityState, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, EntityState{
			ID:          e.ID,
			Label:       e.Label,
			X:           e.X,
			Y:           e.Y,
			VX:          e.VX,
			VY:          e.VY,
			FacingRight: e.FacingRight,
			Ground:      e.Ground,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return Snapshot{Tick: w.tick, Entities: out}
}

// IdleSince lists entities whose last activity is older than timeout.
func (w *World) IdleSince(now time.Time, timeout time.Duration) []Departure {
	var idle []Departure
	for _, e := range w.entities {
		if d := now.Sub(e.LastActivity); d > timeout {
			idle = append(idle, Departure{ID: e.ID, Label: e.Label, Idle: d})
		}
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].ID < idle[j].ID })
	return idle
}
