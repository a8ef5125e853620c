package game

import (
	"errors"
	"fmt"
	"time"
)

const (
	// TickRate is the fixed simulation frequency.
	TickRate = 60
	// FixedInputDt scales the per-command acceleration impulse.
	FixedInputDt = 0.016
	// DefaultIdleTimeoutSeconds evicts players idle for 3 minutes.
	DefaultIdleTimeoutSeconds = 180
)

// TickDelta is the simulated time covered by one tick, in seconds.
const TickDelta = 1.0 / TickRate

// Config is the immutable game configuration. The engine never mutates it;
// callers share one *Config between rooms and worlds.
type Config struct {
	// RemoteConfig, when set, names a URL the loader fetches instead.
	RemoteConfig string `json:"remote_config,omitempty" yaml:"remote_config,omitempty" jsonschema:"description=Optional URL to fetch the configuration from"`
	// IdleTimeout is in seconds.
	IdleTimeout int           `json:"idle_timeout" yaml:"idle_timeout" jsonschema:"minimum=1,default=180"`
	Physics     PhysicsConfig `json:"physics" yaml:"physics"`
	Platforms   []Platform    `json:"platforms" yaml:"platforms"`
	Walls       []Wall        `json:"walls" yaml:"walls"`
}

// PhysicsConfig holds the physics constants. Units are world units and
// seconds; Y grows upward.
type PhysicsConfig struct {
	Gravity               float64 `json:"gravity" yaml:"gravity"`
	JumpVelocity          float64 `json:"jump_velocity" yaml:"jump_velocity"`
	MoveAcceleration      float64 `json:"move_acceleration" yaml:"move_acceleration"`
	MoveDeceleration      float64 `json:"move_deceleration" yaml:"move_deceleration"`
	MaxHorizontalVelocity float64 `json:"max_horizontal_velocity" yaml:"max_horizontal_velocity"`
	GroundY               float64 `json:"ground_y" yaml:"ground_y"`
	PlayerWidth           float64 `json:"player_width" yaml:"player_width"`
	PlayerHeight          float64 `json:"player_height" yaml:"player_height"`
	// GroundSlideFriction applies while sliding along a wall.
	GroundSlideFriction float64 `json:"ground_slide_friction" yaml:"ground_slide_friction"`
	// PlatformSlideFriction applies while sliding along a platform edge.
	PlatformSlideFriction float64 `json:"platform_slide_friction" yaml:"platform_slide_friction"`
	GroundColor           string  `json:"ground_color" yaml:"ground_color"`
	SpawnX                float64 `json:"spawn_x" yaml:"spawn_x"`

	SnapEpsilon      float64 `json:"snap_epsilon" yaml:"snap_epsilon"`
	LandingTolerance float64 `json:"landing_tolerance" yaml:"landing_tolerance"`
	CeilingTolerance float64 `json:"ceiling_tolerance" yaml:"ceiling_tolerance"`
}

// Platform spans [XStart, XEnd] horizontally and [YTop-Height, YTop]
// vertically. Entities land on its top.
type Platform struct {
	ID     string  `json:"id" yaml:"id"`
	XStart float64 `json:"x_start" yaml:"x_start"`
	XEnd   float64 `json:"x_end" yaml:"x_end"`
	YTop   float64 `json:"y_top" yaml:"y_top"`
	Height float64 `json:"height" yaml:"height"`
	Color  string  `json:"color" yaml:"color"`
}

// Wall spans [X, X+Width] horizontally and [YBottom, YTop] vertically.
type Wall struct {
	ID      string  `json:"id" yaml:"id"`
	X       float64 `json:"x" yaml:"x"`
	YBottom float64 `json:"y_bottom" yaml:"y_bottom"`
	YTop    float64 `json:"y_top" yaml:"y_top"`
	Width   float64 `json:"width" yaml:"width"`
	Color   string  `json:"color" yaml:"color"`
}

// DefaultConfig returns the built-in configuration used when no file is
// available or loading fails.
func DefaultConfig() *Config {
	return &Config{
		IdleTimeout: DefaultIdleTimeoutSeconds,
		Physics:     DefaultPhysics(),
		Platforms: []Platform{{
			ID:     "platform_1",
			XStart: -3,
			XEnd:   3,
			YTop:   2,
			Height: 0.5,
			Color:  "#B34733",
		}},
		Walls: []Wall{},
	}
}

// DefaultPhysics returns the default physics constants.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		Gravity:               -2000,
		JumpVelocity:          250,
		MoveAcceleration:      1200,
		MoveDeceleration:      1500,
		MaxHorizontalVelocity: 300,
		GroundY:               -10,
		PlayerWidth:           1.5,
		PlayerHeight:          1.5,
		GroundSlideFriction:   800,
		PlatformSlideFriction: 600,
		GroundColor:           "#8B6F47",
		SnapEpsilon:           1e-3,
		LandingTolerance:      0.1,
		CeilingTolerance:      0.1,
	}
}

// IdleTimeoutDuration converts IdleTimeout to a time.Duration, falling back
// to the default for non-positive values.
func (c *Config) IdleTimeoutDuration() time.Duration {
	secs := c.IdleTimeout
	if secs <= 0 {
		secs = DefaultIdleTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// Validate checks geometry and dimensions. It returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	p := c.Physics
	if p.PlayerWidth <= 0 || p.PlayerHeight <= 0 {
		errs = append(errs, fmt.Errorf("player size must be positive, got %gx%g", p.PlayerWidth, p.PlayerHeight))
	}
	if p.MaxHorizontalVelocity < 0 {
		errs = append(errs, fmt.Errorf("max_horizontal_velocity must not be negative, got %g", p.MaxHorizontalVelocity))
	}
	if p.SnapEpsilon < 0 || p.LandingTolerance < 0 || p.CeilingTolerance < 0 {
		errs = append(errs, errors.New("tolerances must not be negative"))
	}
	for i, pl := range c.Platforms {
		if pl.XEnd <= pl.XStart {
			errs = append(errs, fmt.Errorf("platform %d (%s): x_end %g must exceed x_start %g", i, pl.ID, pl.XEnd, pl.XStart))
		}
		if pl.Height <= 0 {
			errs = append(errs, fmt.Errorf("platform %d (%s): height must be positive", i, pl.ID))
		}
	}
	for i, w := range c.Walls {
		if w.Width <= 0 {
			errs = append(errs, fmt.Errorf("wall %d (%s): width must be positive", i, w.ID))
		}
		if w.YTop <= w.YBottom {
			errs = append(errs, fmt.Errorf("wall %d (%s): y_top %g must exceed y_bottom %g", i, w.ID, w.YTop, w.YBottom))
		}
	}
	return errors.Join(errs...)
}
