// Package apogee implements the apogee latch (Detector) and the coast-phase
// trajectory projection (Predictor), both driven by a vve.Estimate.
package apogee

import (
	"github.com/CURocketEngineering/Native/sample"
	"github.com/CURocketEngineering/Native/vve"
)

// DefaultMarginM is the sustained altitude drop from peak required to latch
// apogee when a detector is not given an explicit margin. A single noisy
// sample dipping below peak is not enough on its own; the velocity-sign
// gate in Update rejects that case even when the margin is crossed by
// measurement noise.
const DefaultMarginM = 2.0

// Detector tracks the running peak altitude reported by a VVE and latches
// apogee once the current altitude has fallen a sustained margin below that
// peak while velocity is negative.
type Detector struct {
	marginM float32

	havePeak bool
	peakAlt  float32
	peakTsMs uint32
	detected bool
	apogee   sample.Sample
}

// NewDetector constructs an unlatched detector using the given margin, a
// construction-time tunable per spec.md's tuning parameter table.
func NewDetector(marginM float32) *Detector {
	return &Detector{marginM: marginM}
}

// NewDefaultDetector constructs an unlatched detector using DefaultMarginM.
func NewDefaultDetector() *Detector {
	return NewDetector(DefaultMarginM)
}

// Update feeds the current VVE snapshot. Once latched, further calls are
// no-ops with respect to the recorded apogee.
func (d *Detector) Update(v vve.Estimate) {
	alt := v.EstimatedAltitude()
	ts := v.Timestamp()

	if !d.havePeak || alt > d.peakAlt {
		d.peakAlt = alt
		d.peakTsMs = ts
		d.havePeak = true
	}

	if d.detected {
		return
	}

	if d.havePeak && d.peakAlt-alt > d.marginM && v.EstimatedVelocity() < 0 {
		d.detected = true
		d.apogee = sample.Sample{TimestampMs: d.peakTsMs, Value: d.peakAlt}
	}
}

// IsApogeeDetected reports whether the detector has latched.
func (d *Detector) IsApogeeDetected() bool {
	return d.detected
}

// GetApogee returns the latched apogee sample, or the zero sample before
// latching.
func (d *Detector) GetApogee() sample.Sample {
	return d.apogee
}

// Reset clears the peak tracker and any latched apogee, preserving the
// configured margin.
func (d *Detector) Reset() {
	*d = Detector{marginM: d.marginM}
}
