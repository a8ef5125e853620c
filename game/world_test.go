package game

import (
	"testing"
	"time"
)

var zeroTime time.Time

func TestAddSpawnsOnGround(t *testing.T) {
	w := NewWorld(nil)
	if !w.Add("a", "Alpha", zeroTime) {
		t.Fatal("Add reported existing entity")
	}
	e, ok := w.Get("a")
	if !ok {
		t.Fatal("entity missing")
	}
	p := w.Config().Physics
	if e.Y != p.GroundY+p.PlayerHeight/2 || e.Ground != (Grounded{Platform: NoPlatform}) || e.Label != "Alpha" {
		t.Fatalf("unexpected spawn %#v", e)
	}
}

func TestIdleEntityStaysGroundedOnAnyGround(t *testing.T) {
	cases := []struct{ groundY, height float64 }{
		{-10, 1.5},
		{0.3, 1.5},
		{-3.1, 1.1},
		{0.1, 0.9},
		{0.1, 2.3},
		{0.3, 1.1},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		cfg.Platforms = nil
		cfg.Physics.GroundY = c.groundY
		cfg.Physics.PlayerHeight = c.height
		w := NewWorld(cfg)
		w.Add("a", "a", zeroTime)
		rest := c.groundY + c.height/2

		for tick := 0; tick < 10; tick++ {
			w.Advance(TickDelta)
			e, _ := w.Get("a")
			if e.Ground != (Grounded{Platform: NoPlatform}) || e.VY != 0 || e.Y != rest {
				t.Fatalf("ground %v height %v tick %d: state %#v y=%v vy=%v, want grounded at %v",
					c.groundY, c.height, tick, e.Ground, e.Y, e.VY, rest)
			}
		}

		w.ApplyCommand("a", CmdJump)
		e, _ := w.Get("a")
		if e.VY <= 0 || !IsFlying(e.Ground) {
			t.Fatalf("ground %v height %v: jump gave state %#v vy=%v", c.groundY, c.height, e.Ground, e.VY)
		}
	}
}

func TestAddIsIdempotent(t *testing.T) {
	w := NewWorld(nil)
	w.Add("a", "first", zeroTime)
	w.ApplyCommand("a", CmdMoveRight)
	w.Advance(TickDelta)
	before, _ := w.Get("a")

	if w.Add("a", "second", zeroTime.Add(time.Hour)) {
		t.Fatal("second Add created an entity")
	}
	after, _ := w.Get("a")
	if w.Len() != 1 || after != before {
		t.Fatalf("len=%d, state %#v -> %#v", w.Len(), before, after)
	}
}

func TestCommandAfterRemoveIsIgnored(t *testing.T) {
	w := NewWorld(nil)
	w.Add("a", "a", zeroTime)
	if _, ok := w.Remove("a"); !ok {
		t.Fatal("Remove missed entity")
	}
	if w.ApplyCommand("a", CmdJump) {
		t.Fatal("command applied to removed entity")
	}
	w.Advance(TickDelta)
	if _, ok := w.Get("a"); ok || w.Len() != 0 {
		t.Fatal("removed entity came back")
	}
	if _, ok := w.Remove("a"); ok {
		t.Fatal("second Remove succeeded")
	}
}

func TestInterleavedCommandsMatchIsolated(t *testing.T) {
	seqA := []Command{CmdMoveRight, CmdMoveRight, CmdJump, CmdMoveLeft, CmdStop}
	seqB := []Command{CmdMoveLeft, CmdJump, CmdMoveLeft, CmdMoveRight}

	run := func(ids []EntityID, script func(w *World)) *World {
		w := NewWorld(nil)
		for _, id := range ids {
			w.Add(id, string(id), zeroTime)
		}
		script(w)
		for i := 0; i < 90; i++ {
			w.Advance(TickDelta)
		}
		return w
	}

	mixed := run([]EntityID{"a", "b"}, func(w *World) {
		for i := 0; i < len(seqA) || i < len(seqB); i++ {
			if i < len(seqB) {
				w.ApplyCommand("b", seqB[i])
			}
			if i < len(seqA) {
				w.ApplyCommand("a", seqA[i])
			}
		}
	})
	onlyA := run([]EntityID{"a"}, func(w *World) {
		for _, c := range seqA {
			w.ApplyCommand("a", c)
		}
	})
	onlyB := run([]EntityID{"b"}, func(w *World) {
		for _, c := range seqB {
			w.ApplyCommand("b", c)
		}
	})

	for _, tc := range []struct {
		id   EntityID
		solo *World
	}{{"a", onlyA}, {"b", onlyB}} {
		got, _ := mixed.Get(tc.id)
		want, _ := tc.solo.Get(tc.id)
		if got != want {
			t.Errorf("%s: interleaved %#v, isolated %#v", tc.id, got, want)
		}
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	w := NewWorld(nil)
	w.Add("b", "b", zeroTime)
	w.Add("a", "a", zeroTime)
	snap := w.Snapshot()
	if len(snap.Entities) != 2 || snap.Entities[0].ID != "a" || snap.Entities[1].ID != "b" {
		t.Fatalf("snapshot not sorted: %#v", snap.Entities)
	}

	w.ApplyCommand("a", CmdJump)
	w.Advance(TickDelta)
	if snap.Entities[0].VY != 0 || !IsGrounded(snap.Entities[0].Ground) {
		t.Fatalf("snapshot changed with world: %#v", snap.Entities[0])
	}
	if next := w.Snapshot(); next.Tick != snap.Tick+1 {
		t.Fatalf("tick %d -> %d", snap.Tick, next.Tick)
	}
}

func TestIdleSince(t *testing.T) {
	w := NewWorld(nil)
	start := time.Unix(1000, 0)
	w.Add("old", "old", start)
	w.Add("fresh", "fresh", start)
	w.Touch("fresh", start.Add(50*time.Second))

	idle := w.IdleSince(start.Add(61*time.Second), time.Minute)
	if len(idle) != 1 || idle[0].ID != "old" || idle[0].Idle != 61*time.Second {
		t.Fatalf("idle = %#v", idle)
	}
	if w.Touch("ghost", start) {
		t.Fatal("Touch succeeded for unknown id")
	}
}
