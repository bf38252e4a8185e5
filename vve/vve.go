// Package vve implements the vertical-velocity estimator: a 2-state Kalman
// filter fusing inertial vertical acceleration with barometric altitude to
// track altitude and vertical velocity, in the style of the teacher's
// covariance-matrix Kalman recursions (westphae/goflying's ahrs package),
// scaled down to the 2-state problem this core needs.
package vve

import (
	"log"
	"math"

	"github.com/CURocketEngineering/Native/sample"
	"github.com/skelterjohn/go.matrix"
)

// StandardGravity is the assumed local gravitational acceleration, m/s^2.
const StandardGravity = 9.80665

// Timestep clamp bounds, per spec: [1ms, 1s].
const (
	MinDtMs uint32  = 1
	MaxDtMs uint32  = 1000
	MinDtS  float64 = float64(MinDtMs) / 1000.0
	MaxDtS  float64 = float64(MaxDtMs) / 1000.0
)

// NoiseVariances configures the process and measurement noise the filter
// assumes. Defaults match the spec's tuned values.
type NoiseVariances struct {
	AccelVariance float64 // sigma_acc^2, (m/s^2)^2
	BaroVariance  float64 // sigma_baro^2, m^2
}

// DefaultNoiseVariances are the spec's documented defaults.
func DefaultNoiseVariances() NoiseVariances {
	return NoiseVariances{AccelVariance: 1.05, BaroVariance: 10.0}
}

// Estimate is the narrow read-only view of the estimator's current state,
// exposed as an interface so tests can substitute a stub (per the design
// notes: apogee detection/prediction only ever need to read these six
// values, never mutate the filter).
type Estimate interface {
	EstimatedAltitude() float32
	EstimatedVelocity() float32
	InertialVerticalAcceleration() float32
	Timestamp() uint32
	VerticalAxis() sample.Axis
	VerticalDirection() int
}

// Estimator is the concrete 2-state Kalman filter. State vector is
// [altitude, velocity]^T; the process model integrates inertial vertical
// acceleration, the measurement model observes barometric altitude.
type Estimator struct {
	noise NoiseVariances

	x *matrix.DenseMatrix // 2x1: [h, v]
	p *matrix.DenseMatrix // 2x2 covariance

	haveFirst  bool
	haveSecond bool

	axis      sample.Axis
	direction int // +1, -1, or 0 (undetermined)

	lastTsMs uint32

	lastInertialAccel float32
}

// New constructs an Estimator with the given noise configuration.
func New(noise NoiseVariances) *Estimator {
	return &Estimator{
		noise:     noise,
		x:         matrix.Zeros(2, 1),
		p:         matrix.Diagonal([]float64{1e6, 1e6}), // wide open before first fix
		direction: 0,
		axis:      sample.AxisUndetermined,
	}
}

// NewDefault constructs an Estimator using DefaultNoiseVariances.
func NewDefault() *Estimator {
	return New(DefaultNoiseVariances())
}

// Reset returns the estimator to its just-constructed state.
func (e *Estimator) Reset() {
	e.x = matrix.Zeros(2, 1)
	e.p = matrix.Diagonal([]float64{1e6, 1e6})
	e.haveFirst = false
	e.haveSecond = false
	e.axis = sample.AxisUndetermined
	e.direction = 0
	e.lastTsMs = 0
	e.lastInertialAccel = 0
}

// Update feeds one synchronized accelerometer triplet + baro sample. The
// first call seeds altitude/timestamp with zero velocity; the second picks
// the vertical body axis and begins the Kalman recursion; every call after
// that runs a normal predict+correct step.
func (e *Estimator) Update(accel sample.AccelTriplet, baro sample.Sample) {
	if !e.haveFirst {
		e.x.Set(0, 0, float64(baro.Value))
		e.x.Set(1, 0, 0)
		e.lastTsMs = baro.TimestampMs
		e.haveFirst = true
		return
	}

	if !e.haveSecond {
		e.pickAxis(accel)
		e.haveSecond = true
	}

	dtMs := deltaTMs(e.lastTsMs, baro.TimestampMs)
	dt := clampDt(dtMs)

	a := e.inertialAccel(accel)
	e.lastInertialAccel = a

	e.predict(dt, float64(a))
	e.correct(float64(baro.Value))

	e.lastTsMs = baro.TimestampMs
}

// pickAxis selects vertical_axis = argmax|a_i| and vertical_direction =
// sign(a_axis), fixed for the estimator's lifetime.
func (e *Estimator) pickAxis(accel sample.AccelTriplet) {
	best := sample.AxisX
	bestAbs := absf(accel.X.Value)
	if v := absf(accel.Y.Value); v > bestAbs {
		best = sample.AxisY
		bestAbs = v
	}
	if v := absf(accel.Z.Value); v > bestAbs {
		best = sample.AxisZ
		bestAbs = v
	}
	e.axis = best
	if accel.Value(best) < 0 {
		e.direction = -1
	} else {
		e.direction = 1
	}
	log.Printf("vve: vertical axis fixed to %s, direction %+d", e.axis, e.direction)
}

// inertialAccel projects the raw triplet onto the chosen vertical axis and
// removes the 1g bias, giving net (inertial) vertical acceleration.
func (e *Estimator) inertialAccel(accel sample.AccelTriplet) float32 {
	if e.axis == sample.AxisUndetermined {
		return 0
	}
	raw := accel.Value(e.axis)
	return float32(e.direction)*raw - float32(StandardGravity)
}

func (e *Estimator) predict(dt, a float64) {
	h := e.x.Get(0, 0)
	v := e.x.Get(1, 0)

	h = h + v*dt + 0.5*a*dt*dt
	v = v + a*dt

	e.x.Set(0, 0, h)
	e.x.Set(1, 0, v)

	f := matrix.Eye(2)
	f.Set(0, 1, dt)

	q := matrix.Diagonal([]float64{dt * e.noise.AccelVariance, dt * e.noise.AccelVariance})

	e.p = matrix.Sum(matrix.Product(f, matrix.Product(e.p, f.Transpose())), q)
}

// correct applies the baro measurement update. The observation matrix is
// fixed at H = [1, 0] (baro observes altitude only), so the general
// P*H^T*(H*P*H^T+R)^-1 gain reduces to the first column of P over
// (P00 + R); this is computed via go.matrix operations rather than
// hand-expanded scalars to keep the recursion legible and mirror the
// teacher's Product/Transpose/Inverse-based update in ahrs_kalman0.go.
func (e *Estimator) correct(z float64) {
	h := matrix.Zeros(1, 2)
	h.Set(0, 0, 1)

	y := z - h.Get(0, 0)*e.x.Get(0, 0) - h.Get(0, 1)*e.x.Get(1, 0)

	r := matrix.Zeros(1, 1)
	r.Set(0, 0, e.noise.BaroVariance)

	s := matrix.Sum(matrix.Product(h, matrix.Product(e.p, h.Transpose())), r)
	sInv, err := s.Inverse()
	if err != nil {
		log.Printf("vve: singular innovation covariance, skipping correction: %v", err)
		return
	}

	k := matrix.Product(e.p, matrix.Product(h.Transpose(), sInv)) // 2x1 gain

	e.x.Set(0, 0, e.x.Get(0, 0)+k.Get(0, 0)*y)
	e.x.Set(1, 0, e.x.Get(1, 0)+k.Get(1, 0)*y)

	e.p = matrix.Product(matrix.Difference(matrix.Eye(2), matrix.Product(k, h)), e.p)

	// Symmetrize to guard against numerical drift.
	avgOffDiag := (e.p.Get(0, 1) + e.p.Get(1, 0)) / 2
	e.p.Set(0, 1, avgOffDiag)
	e.p.Set(1, 0, avgOffDiag)
}

// EstimatedAltitude returns the filter's current altitude estimate, m.
func (e *Estimator) EstimatedAltitude() float32 { return float32(e.x.Get(0, 0)) }

// EstimatedVelocity returns the filter's current vertical velocity
// estimate, m/s (positive is up).
func (e *Estimator) EstimatedVelocity() float32 { return float32(e.x.Get(1, 0)) }

// InertialVerticalAcceleration returns the most recent net (gravity-removed)
// vertical acceleration used to drive the filter, m/s^2.
func (e *Estimator) InertialVerticalAcceleration() float32 { return e.lastInertialAccel }

// Timestamp returns the timestamp of the most recently applied update, ms.
func (e *Estimator) Timestamp() uint32 { return e.lastTsMs }

// VerticalAxis returns the body axis chosen as "up", or AxisUndetermined
// before the second update.
func (e *Estimator) VerticalAxis() sample.Axis { return e.axis }

// VerticalDirection returns +1, -1, or 0 (undetermined).
func (e *Estimator) VerticalDirection() int { return e.direction }

func deltaTMs(last, cur uint32) int64 {
	return int64(cur) - int64(last)
}

// clampDt converts a millisecond delta to seconds, clamped to
// [MinDtS, MaxDtS]. A non-positive delta (out-of-order or duplicate
// timestamp) is treated as MinDtMs, per spec.
func clampDt(deltaMs int64) float64 {
	if deltaMs <= 0 {
		return MinDtS
	}
	dt := float64(deltaMs) / 1000.0
	if dt < MinDtS {
		return MinDtS
	}
	if dt > MaxDtS {
		return MaxDtS
	}
	return dt
}

func absf(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
