package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera projects inertial positions onto the canvas orthographically.
// Extent is the half-width of the view in metres at zoom 1.
type Camera struct {
	Center     mgl64.Vec3
	Extent     float64
	Pitch, Yaw float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Extent: 1, Zoom: 1}
}

func (c *Camera) Rotate(pitch, yaw float64) {
	c.Pitch += pitch
	c.Yaw += yaw
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(1e4, c.Zoom*1.25) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(1e-2, c.Zoom/1.25) }

// Fit sets Extent so that every point is inside the view with a margin.
func (c *Camera) Fit(points []mgl64.Vec3) {
	extent := 0.0
	for _, p := range points {
		extent = math.Max(extent, p.Sub(c.Center).Len())
	}
	if extent == 0 {
		extent = 1
	}
	c.Extent = 1.1 * extent
}

func (c *Camera) view() mgl64.Quat {
	return mgl64.QuatRotate(c.Pitch, mgl64.Vec3{1, 0, 0}).Mul(mgl64.QuatRotate(c.Yaw, mgl64.Vec3{0, 0, 1}))
}

// Scale returns dots per metre for a w by h dot canvas.
func (c *Camera) Scale(w, h int) float64 {
	return float64(min(w, h)) / 2 / (c.Extent / c.Zoom)
}

// Project converts a world position to dot coordinates. Returns x, y,
// depth along the view axis, and whether the point lands on the canvas.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (int, int, float64, bool) {
	q := c.view().Rotate(p.Sub(c.Center))
	s := c.Scale(w, h)
	x := w/2 + int(math.Round(q.X()*s))
	y := h/2 - int(math.Round(q.Y()*s))
	return x, y, q.Z(), x >= 0 && x < w && y >= 0 && y < h
}

// DrawPath draws a polyline through points.
func DrawPath(c *Canvas, cam *Camera, points []mgl64.Vec3) {
	w, h := c.Pixels()
	for i := 1; i < len(points); i++ {
		x0, y0, _, v0 := cam.Project(points[i-1], w, h)
		x1, y1, _, v1 := cam.Project(points[i], w, h)
		if v0 || v1 {
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

// DrawBodies draws each body as a disc outline at its projected size,
// farthest first.
func DrawBodies(c *Canvas, cam *Camera, bodies []BodyFrame) {
	w, h := c.Pixels()
	type projected struct {
		x, y  int
		r     float64
		depth float64
	}
	proj := make([]projected, 0, len(bodies))
	for _, b := range bodies {
		x, y, d, ok := cam.Project(b.Position, w, h)
		if ok {
			proj = append(proj, projected{x, y, b.Radius * cam.Scale(w, h), d})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, p := range proj {
		c.DrawCircle(p.x, p.y, p.r)
	}
}
