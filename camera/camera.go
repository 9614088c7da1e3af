// Package camera provides a 3D orbit camera and cursor picking.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/config"
)

// maxElevation keeps the eye off the poles where the up vector degenerates.
const maxElevation = math.Pi/2 - 0.01

// planeEpsilon is the smallest |n·l| treated as a real intersection.
const planeEpsilon = 1e-9

var up = mgl32.Vec3{0, 1, 0}

// Camera orbits a target point at a given distance.
type Camera struct {
	Target r3.Vec

	Distance  float64
	Azimuth   float64 // radians around Y
	Elevation float64 // radians above the XZ plane

	FovY      float64 // degrees
	Near, Far float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinDistance, MaxDistance float64

	home orbit
}

type orbit struct {
	target                        r3.Vec
	distance, azimuth, elevation float64
}

// New creates a camera looking at the origin from the configured orbit.
func New(viewportW, viewportH float64, cfg config.CameraConfig) *Camera {
	c := &Camera{
		Distance:    cfg.Distance,
		Azimuth:     cfg.Azimuth,
		Elevation:   clamp(cfg.Elevation, -maxElevation, maxElevation),
		FovY:        cfg.FovY,
		Near:        cfg.Near,
		Far:         cfg.Far,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 5,
		MaxDistance: cfg.Far / 2,
	}
	c.home = orbit{
		target:    c.Target,
		distance:  c.Distance,
		azimuth:   c.Azimuth,
		elevation: c.Elevation,
	}
	return c
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() r3.Vec {
	cosEl := math.Cos(c.Elevation)
	offset := r3.Vec{
		X: cosEl * math.Cos(c.Azimuth),
		Y: math.Sin(c.Elevation),
		Z: cosEl * math.Sin(c.Azimuth),
	}
	return r3.Add(c.Target, r3.Scale(c.Distance, offset))
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(vec3(c.Eye()), vec3(c.Target), up)
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := 1.0
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(mgl32.DegToRad(float32(c.FovY)), float32(aspect), float32(c.Near), float32(c.Far))
}

// Orbit rotates the eye around the target. Elevation is clamped short of the poles.
func (c *Camera) Orbit(dAzimuth, dElevation float64) {
	c.Azimuth = math.Mod(c.Azimuth+dAzimuth, 2*math.Pi)
	c.Elevation = clamp(c.Elevation+dElevation, -maxElevation, maxElevation)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float64) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the orbit distance by factor (factor > 1 moves closer).
func (c *Camera) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its initial orbit.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Distance = c.home.distance
	c.Azimuth = c.home.azimuth
	c.Elevation = c.home.elevation
}

// ScreenToWorld casts a ray through the screen point and intersects it with
// the plane through Target facing the camera. Reports false when there is no
// usable intersection.
func (c *Camera) ScreenToWorld(sx, sy float64) (r3.Vec, bool) {
	w, h := int(c.ViewportW), int(c.ViewportH)
	if w <= 0 || h <= 0 {
		return r3.Vec{}, false
	}

	// Perspective rays all start at the eye; only the far point needs unprojecting.
	// Window coordinates have Y up.
	winY := float32(c.ViewportH - sy)
	far, err := mgl32.UnProject(mgl32.Vec3{float32(sx), winY, 1}, c.View(), c.Projection(), 0, 0, w, h)
	if err != nil {
		return r3.Vec{}, false
	}

	origin := c.Eye()
	dir := r3.Sub(fromVec3(far), origin)
	normal := r3.Sub(c.Eye(), c.Target)
	return IntersectPlane(origin, dir, c.Target, normal)
}

// WorldToScreen projects a world point to screen coordinates (Y down).
// Reports false for points behind the eye.
func (c *Camera) WorldToScreen(p r3.Vec) (sx, sy float64, ok bool) {
	w, h := int(c.ViewportW), int(c.ViewportH)
	win := mgl32.Project(vec3(p), c.View(), c.Projection(), 0, 0, w, h)
	toPoint := r3.Sub(p, c.Eye())
	forward := r3.Sub(c.Target, c.Eye())
	if r3.Dot(toPoint, forward) <= 0 {
		return 0, 0, false
	}
	return float64(win.X()), c.ViewportH - float64(win.Y()), true
}

// IntersectPlane intersects the ray origin + t·dir (t >= 0) with the plane
// through point with the given normal.
func IntersectPlane(origin, dir, point, normal r3.Vec) (r3.Vec, bool) {
	denom := r3.Dot(normal, dir)
	if math.Abs(denom) < planeEpsilon {
		return r3.Vec{}, false
	}
	t := r3.Dot(normal, r3.Sub(point, origin)) / denom
	if t < 0 {
		return r3.Vec{}, false
	}
	hit := r3.Add(origin, r3.Scale(t, dir))
	if !finite(hit) {
		return r3.Vec{}, false
	}
	return hit, true
}

func vec3(v r3.Vec) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func fromVec3(v mgl32.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X()), Y: float64(v.Y()), Z: float64(v.Z())}
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
