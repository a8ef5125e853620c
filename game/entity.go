package game

import "time"

// EntityID identifies a connected participant.
type EntityID string

// Entity is the authoritative state of one participant. X and Y are the
// centre of its bounding box.
type Entity struct {
	ID           EntityID
	Label        string
	X, Y         float64
	VX, VY       float64
	FacingRight  bool
	Ground       GroundState
	LastActivity time.Time
}

// newEntity spawns an entity standing on the ground.
func newEntity(id EntityID, label string, p *PhysicsConfig, now time.Time) *Entity {
	return &Entity{
		ID:           id,
		Label:        label,
		X:            p.SpawnX,
		Y:            p.GroundY + p.PlayerHeight/2,
		FacingRight:  true,
		Ground:       Grounded{Platform: NoPlatform},
		LastActivity: now,
	}
}

// Touch refreshes the activity timestamp.
func (e *Entity) Touch(now time.Time) {
	if now.After(e.LastActivity) {
		e.LastActivity = now
	}
}

// bounds returns the entity's bounding box for the current position.
func (e *Entity) bounds(p *PhysicsConfig) rect {
	hw, hh := p.PlayerWidth/2, p.PlayerHeight/2
	return rect{left: e.X - hw, right: e.X + hw, bottom: e.Y - hh, top: e.Y + hh}
}
