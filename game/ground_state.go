package game

// Side is the side of the entity on which a sliding surface lies.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// PlatformRef optionally names a platform by its index in Config.Platforms.
// The zero value refers to no platform (the ground or a wall).
type PlatformRef struct {
	index int
	ok    bool
}

// NoPlatform is the empty reference used for the ground and for walls.
var NoPlatform = PlatformRef{}

// OnPlatform references the platform at index i.
func OnPlatform(i int) PlatformRef { return PlatformRef{index: i, ok: true} }

// Get returns the platform index and whether one is set.
func (p PlatformRef) Get() (int, bool) { return p.index, p.ok }

// GroundState describes an entity's surface contact. Exactly one of Grounded,
// Sliding or Flying; the set is closed by the unexported marker method.
type GroundState interface {
	groundState()
	String() string
}

// Grounded: resting on the ground, a platform top or a wall top.
type Grounded struct {
	Platform PlatformRef
}

// Sliding: against a wall or platform edge while descending.
type Sliding struct {
	Side     Side
	Platform PlatformRef
}

// Flying: no surface contact.
type Flying struct{}

func (Grounded) groundState() {}
func (Sliding) groundState()  {}
func (Flying) groundState()   {}

func (Grounded) String() string { return "grounded" }
func (Sliding) String() string  { return "sliding" }
func (Flying) String() string   { return "flying" }

// IsGrounded reports whether s is Grounded.
func IsGrounded(s GroundState) bool {
	_, ok := s.(Grounded)
	return ok
}

// IsSliding reports whether s is Sliding.
func IsSliding(s GroundState) bool {
	_, ok := s.(Sliding)
	return ok
}

// IsFlying reports whether s is Flying. A nil state counts as flying.
func IsFlying(s GroundState) bool {
	switch s.(type) {
	case Flying, nil:
		return true
	}
	return false
}

// IsAirborne is Sliding or Flying.
func IsAirborne(s GroundState) bool { return IsSliding(s) || IsFlying(s) }

// IsOnSurface is Grounded or Sliding.
func IsOnSurface(s GroundState) bool { return IsGrounded(s) || IsSliding(s) }
