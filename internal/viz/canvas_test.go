package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Pixels(); w != 8 || h != 8 {
		t.Fatalf("pixels = %dx%d, want 8x8", w, h)
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("dot not set")
	}
	if c.Grid[1][1] == blank {
		t.Error("cell unchanged")
	}
	c.Unset(3, 5)
	if c.IsSet(3, 5) || c.Grid[1][1] != blank {
		t.Error("dot not cleared")
	}

	c.Set(-1, 0)
	c.Set(8, 0)
	c.Set(0, 8)
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				t.Fatal("out of range dot was drawn")
			}
		}
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(5, 3)
	lines := strings.Split(c.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 5 {
			t.Errorf("line has %d cells, want 5", n)
		}
	}
}

func TestDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(1, 2, 17, 13)
	for _, p := range [][2]int{{1, 2}, {17, 13}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("endpoint %v not set", p)
		}
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 0.4)
	if !c.IsSet(20, 20) {
		t.Error("small body should be a single dot")
	}

	c.Clear()
	c.DrawCircle(20, 20, 6)
	if c.IsSet(20, 20) {
		t.Error("circle centre should be empty")
	}
	for _, p := range [][2]int{{26, 20}, {14, 20}, {20, 26}, {20, 14}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("rim point %v not set", p)
		}
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera()
	cam.Fit([]mgl64.Vec3{{10, 0, 0}, {0, -4, 0}})
	if math.Abs(cam.Extent-11) > 1e-9 {
		t.Fatalf("extent = %g, want 11", cam.Extent)
	}

	x, y, _, ok := cam.Project(mgl64.Vec3{}, 100, 80)
	if !ok || x != 50 || y != 40 {
		t.Errorf("origin projected to (%d, %d, %v)", x, y, ok)
	}

	x, y, _, ok = cam.Project(mgl64.Vec3{10, 0, 0}, 100, 80)
	if !ok || x <= 50 || y != 40 {
		t.Errorf("+x projected to (%d, %d, %v)", x, y, ok)
	}

	_, _, _, ok = cam.Project(mgl64.Vec3{100, 0, 0}, 100, 80)
	if ok {
		t.Error("point outside the view reported visible")
	}

	cam.Rotate(0, math.Pi/2)
	x, y, _, _ = cam.Project(mgl64.Vec3{10, 0, 0}, 100, 80)
	if x != 50 || y >= 40 {
		t.Errorf("yawed +x projected to (%d, %d), want above centre", x, y)
	}
}

func TestCameraZoomBounds(t *testing.T) {
	cam := NewCamera()
	for i := 0; i < 100; i++ {
		cam.ZoomOut()
	}
	if cam.Zoom < 1e-2 {
		t.Errorf("zoom = %g below lower bound", cam.Zoom)
	}
	s0 := cam.Scale(100, 100)
	cam.ZoomIn()
	if cam.Scale(100, 100) <= s0 {
		t.Error("zooming in should increase scale")
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := map[float64]string{
		0:       "00:00:00",
		59.9:    "00:00:59",
		3725:    "01:02:05",
		90061:   "1d 01:01:01",
		2358720: "27d 07:12:00",
		-60:     "-00:01:00",
	}
	for in, want := range cases {
		if got := FormatElapsed(in); got != want {
			t.Errorf("FormatElapsed(%g) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 10); got != "█████░░░░░" {
		t.Errorf("got %q", got)
	}
	if got := ProgressBar(2, 4); got != "████" {
		t.Errorf("overfull bar %q", got)
	}
	if got := ProgressBar(-1, 3); got != "░░░" {
		t.Errorf("negative bar %q", got)
	}
}
