package game

import "math"

// maxSubsteps bounds the sub-step count for very fast entities. The vertical
// check is swept, so capping it cannot tunnel vertically.
const maxSubsteps = 256

// Step advances one entity by dt seconds against lvl.
func Step(e *Entity, lvl *Level, dt float64) {
	if e.Ground == nil {
		e.Ground = Flying{}
	}
	p := &lvl.Physics

	applyGravity(e, p, dt)
	applyFriction(e, p, dt)
	e.VX = clampAbs(e.VX, p.MaxHorizontalVelocity)

	sliding := moveHorizontal(e, lvl, dt)
	c := moveVertical(e, lvl, dt)
	resolveVertical(e, p, c, sliding)
	resolvePenetration(e, lvl)
}

func applyGravity(e *Entity, p *PhysicsConfig, dt float64) {
	if IsFlying(e.Ground) {
		e.VY += p.Gravity * dt
	}
}

func applyFriction(e *Entity, p *PhysicsConfig, dt float64) {
	var friction float64
	switch s := e.Ground.(type) {
	case Grounded:
		friction = p.MoveDeceleration
	case Sliding:
		if _, onPlatform := s.Platform.Get(); onPlatform {
			friction = p.PlatformSlideFriction
		} else {
			friction = p.GroundSlideFriction
		}
	default:
		return
	}
	decay := friction * dt
	if e.VX > 0 {
		e.VX = math.Max(e.VX-decay, 0)
	} else if e.VX < 0 {
		e.VX = math.Min(e.VX+decay, 0)
	}
}

// moveHorizontal applies dx in sub-steps of at most half the entity width
// and pushes e out of the first obstacle it overlaps. It reports whether e
// started sliding down a wall.
func moveHorizontal(e *Entity, lvl *Level, dt float64) bool {
	dx := e.VX * dt
	steps := substeps(dx, lvl.Physics.PlayerWidth*0.5)
	step := dx / float64(steps)
	for i := 0; i < steps; i++ {
		e.X += step
		if hit, sliding := resolveHorizontal(e, lvl); hit {
			return sliding
		}
	}
	return false
}

func resolveHorizontal(e *Entity, lvl *Level) (hit, sliding bool) {
	p := &lvl.Physics
	hw := p.PlayerWidth / 2
	for _, o := range lvl.obstacles {
		b := e.bounds(p)
		if !b.overlaps(o.box) {
			continue
		}
		hit = true
		side := pushSide(e.VX, b, o.box)
		if side == SideRight {
			e.X = o.box.left - hw - p.SnapEpsilon
		} else {
			e.X = o.box.right + hw + p.SnapEpsilon
		}
		if o.wall && e.VY < 0 && !IsGrounded(e.Ground) {
			e.Ground = Sliding{Side: side, Platform: NoPlatform}
			sliding = true
			continue
		}
		e.VX = 0
	}
	return hit, sliding
}

// pushSide returns the side of the entity the obstacle is on: the direction
// of travel, or the nearer face when not moving.
func pushSide(vx float64, b, box rect) Side {
	switch {
	case vx > 0:
		return SideRight
	case vx < 0:
		return SideLeft
	}
	if b.right-box.left <= box.right-b.left {
		return SideRight
	}
	return SideLeft
}

// moveVertical applies dy in sub-steps of at most half the entity height.
// When a sub-step meets a surface, y stays at the sub-step start.
func moveVertical(e *Entity, lvl *Level, dt float64) contact {
	dy := e.VY * dt
	steps := substeps(dy, lvl.Physics.PlayerHeight*0.5)
	step := dy / float64(steps)
	for i := 0; i < steps; i++ {
		from := e.Y
		if c := sweepVertical(e, lvl, from, from+step); c.kind != noContact {
			return c
		}
		e.Y = from + step
	}
	return contact{}
}

// substeps splits a displacement d into pieces no longer than size.
func substeps(d, size float64) int {
	if size <= 0 {
		return 1
	}
	n := math.Ceil(math.Abs(d) / size)
	if math.IsNaN(n) || n < 1 {
		return 1
	}
	if n > maxSubsteps {
		return maxSubsteps
	}
	return int(n)
}

func resolveVertical(e *Entity, p *PhysicsConfig, c contact, sliding bool) {
	hh := p.PlayerHeight / 2
	switch c.kind {
	case contactGround:
		e.Y = p.GroundY + hh
		e.VY = 0
		e.Ground = Grounded{Platform: NoPlatform}
	case contactTop:
		e.Y = c.surface + hh + p.SnapEpsilon
		e.VY = 0
		e.Ground = Grounded{Platform: c.ref}
	case contactUnderside:
		e.Y = c.surface - hh - p.SnapEpsilon
		e.VY = 0
	default:
		if !sliding {
			e.Ground = Flying{}
		}
	}
}

// resolvePenetration pushes e out of anything it still overlaps along the
// axis of least penetration.
func resolvePenetration(e *Entity, lvl *Level) {
	p := &lvl.Physics
	hw, hh := p.PlayerWidth/2, p.PlayerHeight/2
	eps := p.SnapEpsilon

	resolveGround(e, p)
	for _, o := range lvl.obstacles {
		b := e.bounds(p)
		if !b.overlaps(o.box) {
			continue
		}
		up := o.box.top - b.bottom
		down := b.top - o.box.bottom
		left := b.right - o.box.left
		right := o.box.right - b.left

		switch math.Min(math.Min(up, down), math.Min(left, right)) {
		case up:
			e.Y = o.box.top + hh + eps
			e.VY = 0
			e.Ground = Grounded{Platform: o.ref}
		case down:
			e.Y = o.box.bottom - hh - eps
			if e.VY > 0 {
				e.VY = 0
			}
		case left:
			e.X = o.box.left - hw - eps
			pushSideways(e, SideRight, o.ref)
		default:
			e.X = o.box.right + hw + eps
			pushSideways(e, SideLeft, o.ref)
		}
	}
	resolveGround(e, p)
}

func resolveGround(e *Entity, p *PhysicsConfig) {
	hh := p.PlayerHeight / 2
	if e.Y-hh < p.GroundY {
		e.Y = p.GroundY + hh
		e.VY = 0
		e.Ground = Grounded{Platform: NoPlatform}
	}
}

// pushSideways handles a side snap. side is where the obstacle lies.
func pushSideways(e *Entity, side Side, ref PlatformRef) {
	if e.VY < 0 && !IsGrounded(e.Ground) {
		e.Ground = Sliding{Side: side, Platform: ref}
		return
	}
	if (side == SideRight && e.VX > 0) || (side == SideLeft && e.VX < 0) {
		e.VX = 0
	}
}
