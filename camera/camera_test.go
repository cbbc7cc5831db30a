package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-4
}

func TestNew(t *testing.T) {
	cam := New(3)

	if cam.Distance != 3 {
		t.Errorf("expected distance 3, got %f", cam.Distance)
	}
	if got := cam.Eye().Len(); math.Abs(float64(got-3)) > 1e-4 {
		t.Errorf("eye should be 3 from the origin, got %f", got)
	}
	// Starts above the horizon
	if cam.Eye().Y() <= 0 {
		t.Errorf("expected eye above the horizon, got %v", cam.Eye())
	}
}

func TestEyeAxes(t *testing.T) {
	testCases := []struct {
		name        string
		inclination float32
		azimuth     float32
		want        mgl32.Vec3
	}{
		{"horizon +X", math.Pi / 2, 0, mgl32.Vec3{2, 0, 0}},
		{"horizon +Z", math.Pi / 2, math.Pi / 2, mgl32.Vec3{0, 0, 2}},
		{"straight up", 0, 0, mgl32.Vec3{0, 2, 0}},
		{"straight down", math.Pi, 0, mgl32.Vec3{0, -2, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cam := New(2)
			cam.Inclination = tc.inclination
			cam.Azimuth = tc.azimuth
			if got := cam.Eye(); !near(got, tc.want) {
				t.Errorf("Eye() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEyeFollowsTarget(t *testing.T) {
	cam := New(2)
	before := cam.Eye()
	cam.Target = mgl32.Vec3{1, -1, 0.5}
	if got := cam.Eye().Sub(cam.Target); !near(got, before) {
		t.Errorf("eye offset changed with target: %v vs %v", got, before)
	}
}

func TestRotateClampsInclination(t *testing.T) {
	cam := New(3)

	cam.Rotate(0, -10)
	if cam.Inclination != minInclination {
		t.Errorf("expected inclination clamped to %f, got %f", minInclination, cam.Inclination)
	}
	cam.Rotate(0, 10)
	if cam.Inclination != math.Pi-minInclination {
		t.Errorf("expected inclination clamped to pi-%f, got %f", minInclination, cam.Inclination)
	}
}

func TestRotateWrapsAzimuth(t *testing.T) {
	cam := New(3)
	cam.Azimuth = 0

	cam.Rotate(-0.5, 0)
	want := float32(2*math.Pi - 0.5)
	if math.Abs(float64(cam.Azimuth-want)) > 1e-5 {
		t.Errorf("expected azimuth %f, got %f", want, cam.Azimuth)
	}

	cam.Rotate(1, 0)
	if math.Abs(float64(cam.Azimuth-0.5)) > 1e-5 {
		t.Errorf("expected azimuth 0.5 after wrapping, got %f", cam.Azimuth)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(4) // limits [1, 16]

	cam.ZoomBy(100)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}

	cam.ZoomBy(0.001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}

	cam.ZoomBy(-1)
	if cam.Distance != cam.MaxDistance {
		t.Error("non-positive zoom factor should be ignored")
	}
}

func TestReset(t *testing.T) {
	cam := New(3)
	eye := cam.Eye()

	cam.Rotate(1.2, 0.4)
	cam.ZoomBy(2)
	cam.Reset()

	if !near(cam.Eye(), eye) {
		t.Errorf("expected eye %v after reset, got %v", eye, cam.Eye())
	}
}
