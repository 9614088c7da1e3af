package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pick returns the point from the packed xyz buffer whose projection lies
// closest to the screen point (sx, sy), within maxDist pixels. Points behind
// the eye are ignored. Equal screen distances go to the point nearer the eye.
func (c *Camera) Pick(offsets []float32, count int, sx, sy, maxDist float64) (int, bool) {
	if c.ViewportW <= 0 || c.ViewportH <= 0 || maxDist < 0 {
		return -1, false
	}

	mvp := c.Projection().Mul4(c.View())

	best := -1
	bestDist := maxDist * maxDist
	bestDepth := float32(math.MaxFloat32)

	for i := 0; i < count; i++ {
		o := i * 3
		clip := mvp.Mul4x1(mgl32.Vec4{offsets[o], offsets[o+1], offsets[o+2], 1})
		w := clip.W()
		if w <= 0 {
			continue
		}

		px := (float64(clip.X()/w) + 1) / 2 * c.ViewportW
		py := (1 - float64(clip.Y()/w)) / 2 * c.ViewportH
		dx, dy := px-sx, py-sy
		d := dx*dx + dy*dy

		if d < bestDist || (d == bestDist && w < bestDepth) {
			best = i
			bestDist = d
			bestDepth = w
		}
	}

	return best, best >= 0
}
