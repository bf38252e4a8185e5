package apogee

import (
	"math"

	"github.com/CURocketEngineering/Native/vve"
)

// Predictor tuning bounds and defaults.
const (
	DefaultAlpha     = 0.2
	DefaultVMinClimb = 1.0
	KMin             = 1e-6
	KMax             = 1.0
	standardGravity  = 9.80665
)

// Predictor projects the remaining coast trajectory to zero vertical
// velocity from a VVE snapshot. Each tick it smooths the observed
// deceleration with a single-pole IIR and recovers a lumped drag
// coefficient from the unsmoothed deceleration.
//
// The projection itself uses the constant-deceleration kinematic form
// (t = v/|a|, Δh = v·t − ½·|a|·t²) driven by the filtered deceleration,
// rather than the full velocity-squared-drag closed form: at the tick rates
// this runs at, one tick's filtered |a| is a good local constant, and this
// is the form the reference implementation's own unit tests hold it to.
type Predictor struct {
	alpha     float32
	vMinClimb float32

	haveUpdate bool

	filteredDecel float32
	dragCoeff     float32

	timeToApogeeS      float32
	predictedAltitudeM float32
	predictedTsMs      uint32

	valid bool
}

// NewPredictor constructs a predictor with the given smoothing factor and
// minimum climb-velocity gate.
func NewPredictor(alpha, vMinClimb float32) *Predictor {
	return &Predictor{alpha: alpha, vMinClimb: vMinClimb}
}

// NewDefaultPredictor constructs a predictor using DefaultAlpha and
// DefaultVMinClimb.
func NewDefaultPredictor() *Predictor {
	return NewPredictor(DefaultAlpha, DefaultVMinClimb)
}

// Update recomputes the projection from the current VVE snapshot.
func (p *Predictor) Update(v vve.Estimate) {
	p.haveUpdate = true

	vel := v.EstimatedVelocity()
	accel := v.InertialVerticalAcceleration()
	d := absf32(accel)

	if !p.everFiltered() {
		p.filteredDecel = d
	} else {
		p.filteredDecel = p.alpha*d + (1-p.alpha)*p.filteredDecel
	}

	if vel > 0 && d > standardGravity {
		k := (float64(d) - standardGravity) / float64(vel*vel)
		if k < KMin {
			k = KMin
		}
		if k > KMax {
			k = KMax
		}
		p.dragCoeff = float32(k)
	}

	p.valid = vel >= p.vMinClimb && p.haveUpdate

	if p.valid && p.filteredDecel > 0 {
		t := vel / p.filteredDecel
		dh := vel*t - 0.5*p.filteredDecel*t*t

		p.timeToApogeeS = t
		p.predictedAltitudeM = v.EstimatedAltitude() + dh
		p.predictedTsMs = v.Timestamp() + uint32(t*1000.0+0.5)
	}
}

func (p *Predictor) everFiltered() bool {
	return p.filteredDecel != 0 || p.dragCoeff != 0
}

// IsPredictionValid reports whether the current climb rate and update
// history satisfy the validity gate. A false return does not clear the
// last cached projection.
func (p *Predictor) IsPredictionValid() bool {
	return p.valid
}

// GetTimeToApogeeS returns the projected seconds-to-apogee from the most
// recent valid snapshot.
func (p *Predictor) GetTimeToApogeeS() float32 { return p.timeToApogeeS }

// GetPredictedApogeeAltitudeM returns the projected apogee altitude, m.
func (p *Predictor) GetPredictedApogeeAltitudeM() float32 { return p.predictedAltitudeM }

// GetPredictedApogeeTimestampMs returns the projected apogee timestamp, ms.
func (p *Predictor) GetPredictedApogeeTimestampMs() uint32 { return p.predictedTsMs }

// GetFilteredDeceleration returns the smoothed |inertial acceleration|.
func (p *Predictor) GetFilteredDeceleration() float32 { return p.filteredDecel }

// GetDragCoefficient returns the lumped drag coefficient k from the most
// recent tick with positive velocity and |a| above g, clamped to
// [KMin, KMax]. It is not smoothed.
func (p *Predictor) GetDragCoefficient() float32 { return p.dragCoeff }

// Reset returns the predictor to its just-constructed state.
func (p *Predictor) Reset() {
	alpha, vMinClimb := p.alpha, p.vMinClimb
	*p = Predictor{alpha: alpha, vMinClimb: vMinClimb}
}

func absf32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
