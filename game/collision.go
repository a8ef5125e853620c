package game

// rect is an axis-aligned box in world units, Y up.
type rect struct {
	left, right, bottom, top float64
}

// overlaps is strict: boxes that only touch do not overlap.
func (a rect) overlaps(b rect) bool {
	return a.left < b.right && a.right > b.left && a.bottom < b.top && a.top > b.bottom
}

func (a rect) overlapsX(b rect) bool {
	return a.left < b.right && a.right > b.left
}

// obstacle is a platform or wall as seen by the collision code.
type obstacle struct {
	box  rect
	wall bool
	ref  PlatformRef
}

// Level is the static geometry and physics of a world, derived once from a
// Config.
type Level struct {
	Physics   PhysicsConfig
	obstacles []obstacle
}

// NewLevel captures the physics constants and the collision boxes of cfg.
// Platforms come first so that index order matches cfg.Platforms.
func NewLevel(cfg *Config) *Level {
	lvl := &Level{
		Physics:   cfg.Physics,
		obstacles: make([]obstacle, 0, len(cfg.Platforms)+len(cfg.Walls)),
	}
	for i, p := range cfg.Platforms {
		lvl.obstacles = append(lvl.obstacles, obstacle{
			box: rect{left: p.XStart, right: p.XEnd, bottom: p.YTop - p.Height, top: p.YTop},
			ref: OnPlatform(i),
		})
	}
	for _, w := range cfg.Walls {
		lvl.obstacles = append(lvl.obstacles, obstacle{
			box:  rect{left: w.X, right: w.X + w.Width, bottom: w.YBottom, top: w.YTop},
			wall: true,
			ref:  NoPlatform,
		})
	}
	return lvl
}

type contactKind int

const (
	noContact contactKind = iota
	contactGround
	contactTop
	contactUnderside
)

// contact is a vertical surface met while moving from one y to another.
type contact struct {
	kind    contactKind
	surface float64
	ref     PlatformRef
}

// sweepVertical looks for the first surface crossed when e's centre moves
// from y0 to y1. Descending entities meet the ground and obstacle tops,
// ascending ones meet obstacle undersides.
func sweepVertical(e *Entity, lvl *Level, y0, y1 float64) contact {
	p := &lvl.Physics
	hh := p.PlayerHeight / 2
	b := e.bounds(p)
	var best contact

	if e.VY <= 0 {
		fromBottom, toBottom := y0-hh, y1-hh
		// GroundY+hh-hh may land an ulp above GroundY.
		if toBottom <= p.GroundY+2*p.SnapEpsilon {
			best = contact{kind: contactGround, surface: p.GroundY}
		}
		for _, o := range lvl.obstacles {
			if !b.overlapsX(o.box) {
				continue
			}
			top := o.box.top
			if fromBottom < top-p.LandingTolerance || toBottom > top+2*p.SnapEpsilon {
				continue
			}
			if best.kind == noContact || top > best.surface {
				best = contact{kind: contactTop, surface: top, ref: o.ref}
			}
		}
		return best
	}

	fromTop, toTop := y0+hh, y1+hh
	for _, o := range lvl.obstacles {
		if !b.overlapsX(o.box) {
			continue
		}
		under := o.box.bottom
		if fromTop > under+p.CeilingTolerance || toTop < under {
			continue
		}
		if best.kind == noContact || under < best.surface {
			best = contact{kind: contactUnderside, surface: under, ref: o.ref}
		}
	}
	return best
}
