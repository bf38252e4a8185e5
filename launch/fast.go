package launch

import (
	"log"

	"github.com/CURocketEngineering/Native/sample"
)

// FastDetector declares a tentative launch on the very first sample whose
// |a|^2 reaches or exceeds threshold^2. It exists purely for latency: the flight state
// machine treats its detection as provisional and expects the windowed
// detector to confirm within a configured confirmation window.
type FastDetector struct {
	thresholdSquared float32

	launched       bool
	launchedTimeMs uint32
}

// NewFastDetector constructs a fast detector with the given threshold in
// m/s^2 (not squared).
func NewFastDetector(threshold float32) *FastDetector {
	return &FastDetector{thresholdSquared: threshold * threshold}
}

// Update feeds one acceleration triplet and returns the resulting status.
func (d *FastDetector) Update(accel sample.AccelTriplet) Status {
	if d.launched {
		return StatusAlreadyLaunched
	}
	if accel.SumSquares() >= d.thresholdSquared {
		d.launched = true
		d.launchedTimeMs = accel.TimestampMs()
		log.Printf("launch: fast detector tentative launch at t=%dms", d.launchedTimeMs)
		return StatusLaunchDetected
	}
	return StatusNoLaunch
}

// HasLaunched reports whether this detector has latched.
func (d *FastDetector) HasLaunched() bool {
	return d.launched
}

// LaunchedTimeMs returns the latched timestamp, or 0 if not yet launched.
func (d *FastDetector) LaunchedTimeMs() uint32 {
	return d.launchedTimeMs
}

// Reset clears the launch latch.
func (d *FastDetector) Reset() {
	d.launched = false
	d.launchedTimeMs = 0
}
