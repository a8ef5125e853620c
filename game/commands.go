package game

import (
	"fmt"
	"strings"
)

// Command is a discrete player input.
type Command int

const (
	CmdMoveLeft Command = iota + 1
	CmdMoveRight
	CmdJump
	CmdStop
)

var commandNames = map[Command]string{
	CmdMoveLeft:  "move_left",
	CmdMoveRight: "move_right",
	CmdJump:      "jump",
	CmdStop:      "stop",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// ParseCommand accepts snake_case ("move_left") and the legacy
// CamelCase spelling ("MoveLeft"), case-insensitively.
func ParseCommand(s string) (Command, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch key {
	case "moveleft", "left":
		return CmdMoveLeft, nil
	case "moveright", "right":
		return CmdMoveRight, nil
	case "jump", "up":
		return CmdJump, nil
	case "stop":
		return CmdStop, nil
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

func (c Command) MarshalText() ([]byte, error) {
	s, ok := commandNames[c]
	if !ok {
		return nil, fmt.Errorf("invalid command %d", int(c))
	}
	return []byte(s), nil
}

func (c *Command) UnmarshalText(b []byte) error {
	parsed, err := ParseCommand(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ApplyCommand mutates e according to cmd. It depends only on the entity's
// current state and p, so replaying a duplicate command is harmless.
func ApplyCommand(e *Entity, cmd Command, p *PhysicsConfig) {
	switch cmd {
	case CmdMoveLeft, CmdMoveRight:
		// no air control
		if IsFlying(e.Ground) {
			return
		}
		impulse := p.MoveAcceleration * FixedInputDt
		if cmd == CmdMoveLeft {
			e.VX -= impulse
			e.FacingRight = false
		} else {
			e.VX += impulse
			e.FacingRight = true
		}
		e.VX = clampAbs(e.VX, p.MaxHorizontalVelocity)
	case CmdJump:
		if IsGrounded(e.Ground) {
			e.VY = p.JumpVelocity
			e.Ground = Flying{}
		}
	case CmdStop:
		e.VX = 0
	}
}

func clampAbs(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
