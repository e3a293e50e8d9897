package scene

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/kernel/sdfx"
	"github.com/chazu/conduit/pkg/route"
)

// buildWorld indexes a 10mm box at the origin and a sphere of radius 2 at
// (30,5,5).
func buildWorld() *World {
	k := sdfx.New()
	w := NewWorld()
	w.Add("box", k.Box(10, 10, 10))
	w.Add("ball", k.Translate(k.Sphere(2), 30, 5, 5))
	return w
}

func TestWorldObstructed(t *testing.T) {
	w := buildWorld()
	tests := []struct {
		name     string
		from, to v3.Vec
		radius   float64
		want     bool
	}{
		{"through box", v3.Vec{X: -5, Y: 5, Z: 5}, v3.Vec{X: 15, Y: 5, Z: 5}, 1, true},
		{"beside box", v3.Vec{X: -5, Y: 15, Z: 5}, v3.Vec{X: 15, Y: 15, Z: 5}, 1, false},
		{"grazing with fat probe", v3.Vec{X: -5, Y: 15, Z: 5}, v3.Vec{X: 15, Y: 15, Z: 5}, 6, true},
		{"ends inside ball", v3.Vec{X: 20, Y: 5, Z: 5}, v3.Vec{X: 30, Y: 5, Z: 5}, 0, true},
		{"starts inside box", v3.Vec{X: 5, Y: 5, Z: 5}, v3.Vec{X: 5, Y: 5, Z: 20}, 1, false},
		{"far away", v3.Vec{X: 100}, v3.Vec{X: 110}, 1, false},
		{"zero length clear", v3.Vec{X: 20}, v3.Vec{X: 20}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Obstructed(tt.from, tt.to, tt.radius); got != tt.want {
				t.Errorf("Obstructed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorldRayDistance(t *testing.T) {
	w := buildWorld()
	origin := v3.Vec{X: -5, Y: 5, Z: 5}

	d, ok := w.RayDistance(origin, v3.Vec{X: 1}, route.ProbeDistance)
	if !ok || math.Abs(d-5) > 1e-3 {
		t.Errorf("RayDistance(+X) = %f, %v, want 5, true", d, ok)
	}
	if _, ok := w.RayDistance(origin, v3.Vec{X: -1}, route.ProbeDistance); ok {
		t.Error("RayDistance(-X) hit, want miss")
	}
	if _, ok := w.RayDistance(origin, v3.Vec{X: 1}, 3); ok {
		t.Error("RayDistance beyond max hit, want miss")
	}

	d, ok = w.Without("box").RayDistance(origin, v3.Vec{X: 1}, route.ProbeDistance)
	if !ok || math.Abs(d-33) > 1e-3 {
		t.Errorf("Without(box).RayDistance(+X) = %f, %v, want 33, true", d, ok)
	}
}

func TestWorldWithout(t *testing.T) {
	w := buildWorld()
	from, to := v3.Vec{X: -5, Y: 5, Z: 5}, v3.Vec{X: 15, Y: 5, Z: 5}
	if w.Without("box").Obstructed(from, to, 1) {
		t.Error("Without(box) still reports the box")
	}
	if !w.Without("ball").Obstructed(from, to, 1) {
		t.Error("Without(ball) lost the box")
	}
	if !w.Obstructed(from, to, 1) {
		t.Error("Without changed the world")
	}
}

func TestWorldRemove(t *testing.T) {
	w := buildWorld()
	k := sdfx.New()
	w.Add("pipe", k.Capsule([3]float64{0, 20, 0}, [3]float64{10, 20, 0}, 1))
	w.Add("pipe", k.Capsule([3]float64{10, 20, 0}, [3]float64{10, 30, 0}, 1))

	if w.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", w.Len())
	}
	if got := w.Remove("pipe"); got != 2 {
		t.Errorf("Remove(pipe) = %d, want 2", got)
	}
	if w.Has("pipe") || w.Len() != 2 {
		t.Errorf("after Remove: Has = %v, Len = %d", w.Has("pipe"), w.Len())
	}
	if got := w.Remove("pipe"); got != 0 {
		t.Errorf("second Remove(pipe) = %d, want 0", got)
	}
}

func TestWorldIsOracle(t *testing.T) {
	var _ route.Oracle = NewWorld()
	path, _, ok := route.FindPath(v3.Vec{X: -6, Y: 5, Z: 5}, v3.Vec{X: 18, Y: 5, Z: 5}, v3.Vec{}, route.DefaultConfig(), buildWorld())
	if !ok {
		t.Fatal("no path around the box")
	}
	for _, p := range path {
		if p.X > 0 && p.X < 10 && p.Y > 0 && p.Y < 10 && p.Z > 0 && p.Z < 10 {
			t.Errorf("waypoint %v inside the box", p)
		}
	}
}
