package game

import (
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-9

func flatConfig() *Config {
	cfg := DefaultConfig()
	cfg.Platforms = nil
	return cfg
}

func wallConfig() *Config {
	cfg := flatConfig()
	cfg.Walls = []Wall{{ID: "wall_1", X: 2, YBottom: -10, YTop: 10, Width: 1}}
	return cfg
}

func checkInvariants(t *testing.T, tick int, e *Entity, p *PhysicsConfig) {
	t.Helper()
	if e.Ground == nil {
		t.Fatalf("tick %d: nil ground state", tick)
	}
	if IsGrounded(e.Ground) && e.VY != 0 {
		t.Fatalf("tick %d: grounded with vy=%v", tick, e.VY)
	}
	if math.Abs(e.VX) > p.MaxHorizontalVelocity {
		t.Fatalf("tick %d: |vx|=%v exceeds %v", tick, math.Abs(e.VX), p.MaxHorizontalVelocity)
	}
	n := 0
	for _, q := range []bool{IsGrounded(e.Ground), IsSliding(e.Ground), e.Ground == Flying{}} {
		if q {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("tick %d: %d ground states hold", tick, n)
	}
}

func TestDropSettlesOnGround(t *testing.T) {
	cfg := flatConfig()
	lvl := NewLevel(cfg)
	p := &lvl.Physics
	rest := p.GroundY + p.PlayerHeight/2

	e := &Entity{ID: "a", X: 0, Y: 10, Ground: Flying{}}
	settled := -1
	for tick := 0; tick < 120; tick++ {
		Step(e, lvl, TickDelta)
		checkInvariants(t, tick, e, p)
		if e.Y < rest-p.SnapEpsilon {
			t.Fatalf("tick %d: y=%v fell below %v", tick, e.Y, rest)
		}
		if IsGrounded(e.Ground) && settled < 0 {
			settled = tick
		}
	}
	if settled < 0 {
		t.Fatal("entity never landed")
	}
	if math.Abs(e.Y-(-10+0.75)) > tol || e.VY != 0 {
		t.Fatalf("settled at y=%v vy=%v, want y=-9.25 vy=0", e.Y, e.VY)
	}
	if e.Ground != (Grounded{Platform: NoPlatform}) {
		t.Fatalf("ground state %#v, want Grounded on ground", e.Ground)
	}
}

func TestLandsOnPlatform(t *testing.T) {
	lvl := NewLevel(DefaultConfig())
	p := &lvl.Physics

	e := &Entity{ID: "a", X: 0, Y: 5, VY: -1, Ground: Flying{}}
	for tick := 0; tick < 120 && !IsGrounded(e.Ground); tick++ {
		Step(e, lvl, TickDelta)
		checkInvariants(t, tick, e, p)
	}
	want := Grounded{Platform: OnPlatform(0)}
	if e.Ground != want {
		t.Fatalf("ground state %#v, want %#v", e.Ground, want)
	}
	if math.Abs(e.Y-(2+p.PlayerHeight/2)) > 2*p.SnapEpsilon {
		t.Fatalf("y=%v, want %v", e.Y, 2+p.PlayerHeight/2)
	}

	// Resting stays put.
	y := e.Y
	for i := 0; i < 10; i++ {
		Step(e, lvl, TickDelta)
	}
	if e.Y != y || e.Ground != want {
		t.Fatalf("resting entity drifted: y=%v state=%#v", e.Y, e.Ground)
	}
}

func TestFastFallDoesNotTunnelThinPlatform(t *testing.T) {
	cfg := flatConfig()
	cfg.Platforms = []Platform{{ID: "thin", XStart: -3, XEnd: 3, YTop: 2, Height: 0.05}}
	lvl := NewLevel(cfg)

	e := &Entity{ID: "a", X: 0, Y: 50, VY: -3000, Ground: Flying{}}
	Step(e, lvl, TickDelta)
	if e.Ground != (Grounded{Platform: OnPlatform(0)}) {
		t.Fatalf("ground state %#v, want platform 0 after one tick", e.Ground)
	}
	if e.Y < 2 {
		t.Fatalf("tunnelled to y=%v", e.Y)
	}
}

func TestCeilingHitKeepsState(t *testing.T) {
	lvl := NewLevel(DefaultConfig())
	p := &lvl.Physics

	// Platform underside is at 1.5.
	e := &Entity{ID: "a", X: 0, Y: 0, VY: 100, Ground: Flying{}}
	Step(e, lvl, TickDelta)
	if e.VY != 0 {
		t.Fatalf("vy=%v after ceiling hit, want 0", e.VY)
	}
	if want := 1.5 - p.PlayerHeight/2 - p.SnapEpsilon; math.Abs(e.Y-want) > tol {
		t.Fatalf("y=%v, want %v", e.Y, want)
	}
	if e.Ground != (Flying{}) {
		t.Fatalf("ground state %#v, want Flying", e.Ground)
	}
}

func TestWalkOffPlatformStartsFalling(t *testing.T) {
	lvl := NewLevel(DefaultConfig())
	p := &lvl.Physics
	e := &Entity{ID: "a", X: 4, Y: 2 + p.PlayerHeight/2 + p.SnapEpsilon, Ground: Grounded{Platform: OnPlatform(0)}}
	Step(e, lvl, TickDelta)
	if e.Ground != (Flying{}) {
		t.Fatalf("ground state %#v, want Flying off the platform edge", e.Ground)
	}
}

func TestWallStopsGroundedEntity(t *testing.T) {
	lvl := NewLevel(wallConfig())
	p := &lvl.Physics
	e := &Entity{ID: "a", X: 1, Y: p.GroundY + p.PlayerHeight/2, VX: 60, Ground: Grounded{}}
	Step(e, lvl, TickDelta)
	if e.VX != 0 {
		t.Fatalf("vx=%v, want 0 after hitting wall", e.VX)
	}
	if want := 2 - p.PlayerWidth/2 - p.SnapEpsilon; math.Abs(e.X-want) > tol {
		t.Fatalf("x=%v, want %v", e.X, want)
	}
	if !IsGrounded(e.Ground) {
		t.Fatalf("ground state %#v, want Grounded", e.Ground)
	}
}

func TestFastEntityDoesNotTunnelThinWall(t *testing.T) {
	cfg := flatConfig()
	cfg.Walls = []Wall{{ID: "thin", X: 2, YBottom: -10, YTop: 10, Width: 0.1}}
	lvl := NewLevel(cfg)
	p := &lvl.Physics
	e := &Entity{ID: "a", X: 0, Y: p.GroundY + p.PlayerHeight/2, VX: 300, Ground: Grounded{}}
	Step(e, lvl, TickDelta)
	if e.X > 2 {
		t.Fatalf("tunnelled through wall to x=%v", e.X)
	}
}

func TestDescendingIntoWallSlides(t *testing.T) {
	lvl := NewLevel(wallConfig())
	p := &lvl.Physics
	e := &Entity{ID: "a", X: 1, Y: 0, VX: 60, VY: -10, Ground: Flying{}}

	Step(e, lvl, TickDelta)
	want := Sliding{Side: SideRight, Platform: NoPlatform}
	if e.Ground != want {
		t.Fatalf("ground state %#v, want %#v", e.Ground, want)
	}
	if e.VX != 60 {
		t.Fatalf("vx=%v, sliding keeps horizontal velocity", e.VX)
	}
	if wantX := 2 - p.PlayerWidth/2 - p.SnapEpsilon; math.Abs(e.X-wantX) > tol {
		t.Fatalf("x=%v, want %v", e.X, wantX)
	}

	vy := e.VY
	Step(e, lvl, TickDelta)
	if e.VY != vy {
		t.Fatalf("sliding entity accelerated: vy %v -> %v", vy, e.VY)
	}
	if wantVX := 60 - p.GroundSlideFriction*TickDelta; math.Abs(e.VX-wantVX) > tol {
		t.Fatalf("vx=%v, want wall friction to give %v", e.VX, wantVX)
	}
	if e.Ground != want {
		t.Fatalf("ground state %#v, want still sliding", e.Ground)
	}
}

func TestSlidingReleasesWhenPushStops(t *testing.T) {
	lvl := NewLevel(wallConfig())
	e := &Entity{ID: "a", X: 1.249, Y: 0, VY: -10, Ground: Sliding{Side: SideRight}}
	Step(e, lvl, TickDelta)
	if e.Ground != (Flying{}) {
		t.Fatalf("ground state %#v, want Flying once no longer pressed to the wall", e.Ground)
	}
}

func TestPenetrationAgainstPlatformEdgeSlides(t *testing.T) {
	lvl := NewLevel(DefaultConfig())
	p := &lvl.Physics
	// Overlaps the right edge of the platform by 0.25.
	e := &Entity{ID: "a", X: 3.5, Y: 1.75, VY: -5, Ground: Flying{}}
	resolvePenetration(e, lvl)

	want := Sliding{Side: SideLeft, Platform: OnPlatform(0)}
	if e.Ground != want {
		t.Fatalf("ground state %#v, want %#v", e.Ground, want)
	}
	if wantX := 3 + p.PlayerWidth/2 + p.SnapEpsilon; math.Abs(e.X-wantX) > tol {
		t.Fatalf("x=%v, want %v", e.X, wantX)
	}
}

func TestFallingIntoPlatformSideStopsWithoutSliding(t *testing.T) {
	lvl := NewLevel(DefaultConfig())
	p := &lvl.Physics
	// Beside the platform's right edge, level with it, moving left.
	e := &Entity{ID: "a", X: 4, Y: 1.75, VX: -300, VY: -5, Ground: Flying{}}
	Step(e, lvl, TickDelta)

	if e.Ground != (Flying{}) {
		t.Fatalf("ground state %#v, want Flying", e.Ground)
	}
	if e.VX != 0 {
		t.Fatalf("vx=%v, want 0 after hitting the platform side", e.VX)
	}
	if wantX := 3 + p.PlayerWidth/2 + p.SnapEpsilon; math.Abs(e.X-wantX) > tol {
		t.Fatalf("x=%v, want %v", e.X, wantX)
	}
}

func TestPenetrationResolvesUpward(t *testing.T) {
	lvl := NewLevel(DefaultConfig())
	p := &lvl.Physics
	// Sunk 0.1 into the platform top.
	e := &Entity{ID: "a", X: 0, Y: 2 + p.PlayerHeight/2 - 0.1, VY: -3, Ground: Flying{}}
	resolvePenetration(e, lvl)
	if e.Ground != (Grounded{Platform: OnPlatform(0)}) || e.VY != 0 {
		t.Fatalf("state %#v vy=%v, want grounded on platform", e.Ground, e.VY)
	}
}

func TestPenetrationBelowGround(t *testing.T) {
	lvl := NewLevel(flatConfig())
	e := &Entity{ID: "a", Y: -50, VY: -10, Ground: Flying{}}
	resolvePenetration(e, lvl)
	if e.Y != -9.25 || e.VY != 0 || !IsGrounded(e.Ground) {
		t.Fatalf("got y=%v vy=%v state=%#v", e.Y, e.VY, e.Ground)
	}
}

func TestFrictionDoesNotOvershoot(t *testing.T) {
	p := DefaultPhysics()
	for _, tc := range []struct {
		name  string
		state GroundState
		vx    float64
		want  float64
	}{
		{"grounded small", Grounded{}, 10, 0},
		{"grounded negative", Grounded{}, -10, 0},
		{"grounded large", Grounded{}, 100, 100 - p.MoveDeceleration*TickDelta},
		{"wall slide", Sliding{Side: SideLeft}, -100, -100 + p.GroundSlideFriction*TickDelta},
		{"platform slide", Sliding{Side: SideLeft, Platform: OnPlatform(0)}, -100, -100 + p.PlatformSlideFriction*TickDelta},
		{"flying", Flying{}, 100, 100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := &Entity{VX: tc.vx, Ground: tc.state}
			applyFriction(e, &p, TickDelta)
			if math.Abs(e.VX-tc.want) > tol {
				t.Fatalf("vx=%v, want %v", e.VX, tc.want)
			}
		})
	}
}

func TestStepClampsHorizontalVelocity(t *testing.T) {
	lvl := NewLevel(flatConfig())
	e := &Entity{Y: 5, VX: -1000, Ground: Flying{}}
	Step(e, lvl, TickDelta)
	if e.VX != -lvl.Physics.MaxHorizontalVelocity {
		t.Fatalf("vx=%v, want clamp to %v", e.VX, -lvl.Physics.MaxHorizontalVelocity)
	}
}

func TestRandomInputsKeepInvariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Walls = []Wall{
		{ID: "left", X: -12, YBottom: -10, YTop: 6, Width: 1},
		{ID: "right", X: 8, YBottom: -10, YTop: 4, Width: 0.5},
	}
	cfg.Platforms = append(cfg.Platforms, Platform{ID: "high", XStart: 4, XEnd: 7, YTop: -6, Height: 0.3})
	w := NewWorld(cfg)
	lvl := w.level
	cmds := []Command{CmdMoveLeft, CmdMoveRight, CmdJump, CmdStop}
	rng := rand.New(rand.NewSource(7))

	e := newEntity("a", "a", &lvl.Physics, zeroTime)
	for tick := 0; tick < 5000; tick++ {
		if rng.Intn(3) == 0 {
			ApplyCommand(e, cmds[rng.Intn(len(cmds))], &lvl.Physics)
		}
		Step(e, lvl, TickDelta)
		checkInvariants(t, tick, e, &lvl.Physics)
		if bottom := e.Y - lvl.Physics.PlayerHeight/2; bottom < lvl.Physics.GroundY-lvl.Physics.SnapEpsilon {
			t.Fatalf("tick %d: below ground at y=%v", tick, e.Y)
		}
	}
}
