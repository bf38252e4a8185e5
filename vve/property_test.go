package vve

import (
	"math"
	"testing"

	"github.com/CURocketEngineering/Native/internal/simflight"
)

// Exercises the second quantified property: for a flight log sampled well
// above 25 Hz, the estimator's velocity RMSE against a finite-differenced,
// 0.5-alpha-IIR-smoothed baro trace must be <= 32 m/s, and its altitude
// max absolute error against baro must be <= 100 m over the whole trace.
// Driven by the quadratic-drag simulator rather than the drag-free one, so
// the filter is checked against a non-constant-acceleration trace.
func TestVelocityRMSEAndAltitudeErrorAgainstFiniteDifferencedBaro(t *testing.T) {
	sim := simflight.NewDragSimulator(0, 80.0, 3000, 5, 0.0006)
	e := NewDefault()

	var (
		sumSqErr     float64
		n            int
		maxAltErr    float64
		haveLastBaro bool
		lastBaro     float64
		lastTsMs     uint32
		smoothedFD   float64
		haveSmoothed bool
	)

	for i := 0; i < 800000 && !sim.HasLanded(); i++ {
		sim.Tick()
		accel, baro := sim.RawSample()
		e.Update(accel, baro)

		if haveLastBaro {
			dtS := float64(baro.TimestampMs-lastTsMs) / 1000.0
			if dtS > 0 {
				fd := (float64(baro.Value) - lastBaro) / dtS
				if !haveSmoothed {
					smoothedFD = fd
					haveSmoothed = true
				} else {
					smoothedFD = 0.5*fd + 0.5*smoothedFD
				}

				velErr := float64(e.EstimatedVelocity()) - smoothedFD
				sumSqErr += velErr * velErr
				n++
			}
		}
		lastBaro = float64(baro.Value)
		lastTsMs = baro.TimestampMs
		haveLastBaro = true

		if altErr := math.Abs(float64(e.EstimatedAltitude()) - float64(baro.Value)); altErr > maxAltErr {
			maxAltErr = altErr
		}
	}

	if n == 0 {
		t.Fatalf("test produced no samples")
	}

	rmse := math.Sqrt(sumSqErr / float64(n))
	if rmse > 32.0 {
		t.Fatalf("velocity RMSE = %.2f m/s, want <= 32", rmse)
	}
	if maxAltErr > 100.0 {
		t.Fatalf("altitude max abs error = %.2fm, want <= 100", maxAltErr)
	}
}
