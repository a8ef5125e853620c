package server

import (
	"fmt"
	"hash/fnv"
	"math"

	"sidearena/game"
)

// GroundStateWire game.GroundState 的线上格式（带类型标签）
type GroundStateWire struct {
	Type       string `json:"type" msgpack:"type"`
	Side       string `json:"side,omitempty" msgpack:"side,omitempty"`
	PlatformID *int   `json:"platform_id" msgpack:"platform_id"`
}

// PlayerState 为广播给客户端的轻量状态
type PlayerState struct {
	ID          string          `json:"id" msgpack:"id"`
	Name        string          `json:"name" msgpack:"name"`
	Color       string          `json:"color" msgpack:"color"`
	X           float64         `json:"x" msgpack:"x"`
	Y           float64         `json:"y" msgpack:"y"`
	VelocityX   float64         `json:"velocity_x" msgpack:"velocity_x"`
	VelocityY   float64         `json:"velocity_y" msgpack:"velocity_y"`
	FacingRight bool            `json:"facing_right" msgpack:"facing_right"`
	GroundState GroundStateWire `json:"ground_state" msgpack:"ground_state"`
}

func groundStateWire(s game.GroundState) GroundStateWire {
	ref := func(p game.PlatformRef) *int {
		if i, ok := p.Get(); ok {
			return &i
		}
		return nil
	}
	switch v := s.(type) {
	case game.Grounded:
		return GroundStateWire{Type: "Grounded", PlatformID: ref(v.Platform)}
	case game.Sliding:
		return GroundStateWire{Type: "Sliding", Side: v.Side.String(), PlatformID: ref(v.Platform)}
	default:
		return GroundStateWire{Type: "Flying"}
	}
}

func playerState(e game.EntityState) PlayerState {
	return PlayerState{
		ID:          string(e.ID),
		Name:        e.Label,
		Color:       PlayerColor(e.ID),
		X:           e.X,
		Y:           e.Y,
		VelocityX:   e.VX,
		VelocityY:   e.VY,
		FacingRight: e.FacingRight,
		GroundState: groundStateWire(e.Ground),
	}
}

var (
	namePrefixes = []string{
		"Shadow", "Swift", "Brave", "Mighty", "Silent", "Fierce", "Noble", "Wild",
		"Dark", "Bright", "Storm", "Fire", "Ice", "Thunder", "Light", "Night",
		"Steel", "Crystal", "Dragon", "Wolf", "Eagle", "Falcon", "Tiger", "Lion",
	}
	nameSuffixes = []string{
		"Warrior", "Hunter", "Ranger", "Guardian", "Knight", "Rogue", "Mage", "Sage",
		"Blade", "Fang", "Claw", "Wing", "Storm", "Flame", "Frost", "Shade",
		"Strike", "Dash", "Leap", "Rush", "Bolt", "Flash", "Beam", "Ray",
	}
)

// PlayerName 由玩家 id 派生稳定的显示名
func PlayerName(id game.EntityID) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum32()
	prefix := namePrefixes[sum%uint32(len(namePrefixes))]
	suffix := nameSuffixes[(sum>>8)%uint32(len(nameSuffixes))]
	return prefix + suffix
}

// PlayerColor 由玩家 id 派生稳定的 "#RRGGBB" 颜色
func PlayerColor(id game.EntityID) string {
	var hash uint32
	for _, b := range []byte(id) {
		hash = hash*31 + uint32(b)
	}
	hue := float64(hash % 360)
	sat := float64(70+hash%30) / 100
	light := float64(50+hash%20) / 100
	r, g, b := hslToRGB(hue/360, sat, light)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return to8(r), to8(g), to8(b)
}
