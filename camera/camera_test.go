package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/exertion/config"
)

func testCamera() *Camera {
	return New(1280, 720, config.CameraConfig{
		Distance:  250,
		Azimuth:   0.785,
		Elevation: 0.35,
		FovY:      45,
		Near:      0.1,
		Far:       1000,
	})
}

func TestNew(t *testing.T) {
	cam := testCamera()

	if cam.Target != (r3.Vec{}) {
		t.Errorf("expected target at origin, got %v", cam.Target)
	}
	if d := r3.Norm(cam.Eye()); math.Abs(d-250) > 1e-9 {
		t.Errorf("expected eye at distance 250, got %f", d)
	}
}

func TestScreenCenterHitsTarget(t *testing.T) {
	cam := testCamera()
	cam.Target = r3.Vec{X: 5, Y: -3, Z: 2}

	hit, ok := cam.ScreenToWorld(640, 360)
	if !ok {
		t.Fatal("expected screen center to hit the target plane")
	}
	if d := r3.Norm(r3.Sub(hit, cam.Target)); d > 0.5 {
		t.Errorf("expected hit near target %v, got %v (off by %f)", cam.Target, hit, d)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := testCamera()

	testCases := []struct{ sx, sy float64 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		world, ok := cam.ScreenToWorld(tc.sx, tc.sy)
		if !ok {
			t.Errorf("(%f,%f): expected a hit", tc.sx, tc.sy)
			continue
		}
		sx, sy, ok := cam.WorldToScreen(world)
		if !ok {
			t.Errorf("(%f,%f): expected world point in front of camera", tc.sx, tc.sy)
			continue
		}
		if math.Abs(sx-tc.sx) > 2 || math.Abs(sy-tc.sy) > 2 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, world, sx, sy)
		}
	}
}

func TestScreenTopIsUp(t *testing.T) {
	cam := testCamera()

	top, ok1 := cam.ScreenToWorld(640, 50)
	bottom, ok2 := cam.ScreenToWorld(640, 670)
	if !ok1 || !ok2 {
		t.Fatal("expected both points to hit")
	}
	if top.Y <= bottom.Y {
		t.Errorf("expected top of screen to map higher in world, got top %v bottom %v", top, bottom)
	}
}

func TestScreenToWorldEmptyViewport(t *testing.T) {
	cam := testCamera()
	cam.Resize(0, 0)

	if _, ok := cam.ScreenToWorld(10, 10); ok {
		t.Error("expected no hit with an empty viewport")
	}
}

func TestIntersectPlane(t *testing.T) {
	origin := r3.Vec{Z: 10}
	point := r3.Vec{}
	normal := r3.Vec{Z: 1}

	hit, ok := IntersectPlane(origin, r3.Vec{X: 1, Z: -1}, point, normal)
	if !ok {
		t.Fatal("expected hit")
	}
	if r3.Norm(r3.Sub(hit, r3.Vec{X: 10})) > 1e-9 {
		t.Errorf("expected hit at (10,0,0), got %v", hit)
	}

	// Ray parallel to the plane: zero denominator.
	if _, ok := IntersectPlane(origin, r3.Vec{X: 1}, point, normal); ok {
		t.Error("expected no hit for a ray parallel to the plane")
	}

	// Plane behind the ray origin.
	if _, ok := IntersectPlane(origin, r3.Vec{Z: 1}, point, normal); ok {
		t.Error("expected no hit for a plane behind the ray")
	}
}

func TestOrbitClampsElevation(t *testing.T) {
	cam := testCamera()

	cam.Orbit(0, 10)
	if cam.Elevation > math.Pi/2 {
		t.Errorf("expected elevation clamped below pi/2, got %f", cam.Elevation)
	}
	cam.Orbit(0, -20)
	if cam.Elevation < -math.Pi/2 {
		t.Errorf("expected elevation clamped above -pi/2, got %f", cam.Elevation)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := testCamera()

	cam.ZoomBy(1000)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.ZoomBy(0.0001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}

	before := cam.Distance
	cam.ZoomBy(0)
	if cam.Distance != before {
		t.Errorf("expected zero factor to be ignored, got %f", cam.Distance)
	}
}

func TestReset(t *testing.T) {
	cam := testCamera()
	cam.Orbit(1, 0.2)
	cam.ZoomBy(2)
	cam.Target = r3.Vec{X: 10}

	cam.Reset()

	if cam.Distance != 250 || cam.Azimuth != 0.785 || cam.Elevation != 0.35 {
		t.Errorf("expected initial orbit, got d=%f az=%f el=%f", cam.Distance, cam.Azimuth, cam.Elevation)
	}
	if cam.Target != (r3.Vec{}) {
		t.Errorf("expected target reset to origin, got %v", cam.Target)
	}
}
