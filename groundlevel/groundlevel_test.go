package groundlevel

import "testing"

func within(t *testing.T, tol, want, got float32) {
	t.Helper()
	d := want - got
	if d < 0 {
		d = -d
	}
	if d > tol {
		t.Fatalf("got %f, want %f (+/- %f)", got, want, tol)
	}
}

func TestInitialization(t *testing.T) {
	e := New()
	if e.GetEGL() != 0 {
		t.Fatalf("initial EGL = %f, want 0", e.GetEGL())
	}
	agl := e.Update(250.0)
	if agl != 0 {
		t.Fatalf("first update AGL = %f, want 0", agl)
	}
	if e.GetEGL() != 250.0 {
		t.Fatalf("EGL after first sample = %f, want 250.0", e.GetEGL())
	}
}

func TestConvergesToConstantAltitude(t *testing.T) {
	e := New()
	for i := 0; i < 100; i++ {
		if agl := e.Update(350.0); agl != 0 {
			t.Fatalf("pre-launch AGL = %f, want 0", agl)
		}
	}
	within(t, 0.01, 350.0, e.GetEGL())
}

func TestFreezeAndAGL(t *testing.T) {
	e := New()
	for i := 0; i < 50; i++ {
		e.Update(300.0)
	}
	within(t, 0.01, 300.0, e.GetEGL())

	e.LaunchDetected()
	eglAtLaunch := e.GetEGL()

	within(t, 0.01, 10.0, e.Update(310.0))
	within(t, 0.01, 50.0, e.Update(350.0))
	within(t, 0.01, 125.0, e.Update(425.0))

	if e.GetEGL() != eglAtLaunch {
		t.Fatalf("EGL drifted after launch: %f != %f", e.GetEGL(), eglAtLaunch)
	}
}

func TestNegativeAGLOnDescent(t *testing.T) {
	e := New()
	for i := 0; i < 50; i++ {
		e.Update(200.0)
	}
	e.LaunchDetected()
	e.Update(500.0)
	within(t, 0.01, -10.0, e.Update(190.0))
	within(t, 0.01, -20.0, e.Update(180.0))
}

func TestExponentialMovingAverageAccuracy(t *testing.T) {
	e := New()
	samples := []float32{100.0, 102.0, 98.0, 101.0, 99.0}
	for _, s := range samples {
		e.Update(s)
	}
	within(t, 0.01, 99.9738, e.GetEGL())
}

func TestReset(t *testing.T) {
	e := New()
	e.Update(400.0)
	e.LaunchDetected()
	e.Update(500.0)
	e.Reset()
	if e.GetEGL() != 0 {
		t.Fatalf("EGL after reset = %f, want 0", e.GetEGL())
	}
	if e.IsLaunched() {
		t.Fatalf("expected not launched after reset")
	}
	if agl := e.Update(410.0); agl != 0 {
		t.Fatalf("post-reset first update AGL = %f, want 0", agl)
	}
}

func TestVariousGroundAltitudes(t *testing.T) {
	for _, groundASL := range []float32{0.0, 50.0, 500.0, 1500.0, 3000.0, 4500.0} {
		e := New()
		for i := 0; i < 50; i++ {
			if agl := e.Update(groundASL); agl != 0 {
				t.Fatalf("groundASL=%f: pre-launch AGL = %f, want 0", groundASL, agl)
			}
		}
		within(t, 0.01, groundASL, e.GetEGL())
		e.LaunchDetected()
		within(t, 0.01, 100.0, e.Update(groundASL+100.0))
	}
}
