// Package simflight provides synthetic single-axis flight simulators used
// only by tests to drive the estimation and detection pipeline end to end,
// standing in for a real accelerometer/barometer pair. Nothing in the
// production code path imports this package.
package simflight

import "github.com/CURocketEngineering/Native/sample"

const standardGravity = 9.80665

// LinearBoost simulates a powered ascent followed by an unpowered coast and
// free-fall descent, with no aerodynamic drag: constant net acceleration
// during motor burn, -g afterward.
type LinearBoost struct {
	launchTimeMs   uint32
	motorAccelMps2 float32
	burnTimeMs     uint32
	tickMs         uint32

	tMs        uint32
	altitude   float32
	velocity   float32
	netAccel   float32
	landed     bool
	peakAlt    float32
	peakTimeMs uint32
}

// NewLinearBoost constructs a boost/coast/descent simulator. tickMs is the
// simulated sample period.
func NewLinearBoost(launchTimeMs uint32, motorAccelMps2 float32, burnTimeMs, tickMs uint32) *LinearBoost {
	return &LinearBoost{
		launchTimeMs:   launchTimeMs,
		motorAccelMps2: motorAccelMps2,
		burnTimeMs:     burnTimeMs,
		tickMs:         tickMs,
	}
}

// Tick advances the simulation by one tick.
func (s *LinearBoost) Tick() {
	if s.landed {
		s.tMs += s.tickMs
		return
	}

	dt := float32(s.tickMs) / 1000.0

	switch {
	case s.tMs < s.launchTimeMs:
		s.netAccel = 0
	case s.tMs < s.launchTimeMs+s.burnTimeMs:
		s.netAccel = s.motorAccelMps2 - float32(standardGravity)
	default:
		s.netAccel = -float32(standardGravity)
	}

	if s.tMs >= s.launchTimeMs && !s.landed {
		s.velocity += s.netAccel * dt
		s.altitude += s.velocity * dt

		if s.altitude > s.peakAlt {
			s.peakAlt = s.altitude
			s.peakTimeMs = s.tMs
		}

		if s.altitude <= 0 {
			s.altitude = 0
			s.velocity = 0
			s.netAccel = 0
			s.landed = true
		}
	}

	s.tMs += s.tickMs
}

// RawSample returns the raw sensor pair (accel triplet on the Z axis,
// barometric altitude) a real IMU/barometer would report at the current
// simulated instant: proper acceleration includes the +g bias a stationary
// sensor reads.
func (s *LinearBoost) RawSample() (sample.AccelTriplet, sample.Sample) {
	proper := s.netAccel + float32(standardGravity)
	accel := sample.AccelTriplet{
		X: sample.Sample{TimestampMs: s.tMs, Value: 0},
		Y: sample.Sample{TimestampMs: s.tMs, Value: 0},
		Z: sample.Sample{TimestampMs: s.tMs, Value: proper},
	}
	baro := sample.Sample{TimestampMs: s.tMs, Value: s.altitude}
	return accel, baro
}

func (s *LinearBoost) Altitude() float32     { return s.altitude }
func (s *LinearBoost) Velocity() float32     { return s.velocity }
func (s *LinearBoost) CurrentTimeMs() uint32 { return s.tMs }
func (s *LinearBoost) HasLanded() bool       { return s.landed }
func (s *LinearBoost) PeakAltitude() float32 { return s.peakAlt }
func (s *LinearBoost) PeakTimeMs() uint32    { return s.peakTimeMs }
func (s *LinearBoost) LaunchTimeMs() uint32  { return s.launchTimeMs }

// DragSimulator adds a quadratic drag term a_drag = -k*v*|v| with a known k
// to the boost model, giving tests a non-constant-acceleration trajectory.
type DragSimulator struct {
	launchTimeMs   uint32
	motorAccelMps2 float32
	burnTimeMs     uint32
	tickMs         uint32
	dragCoeff      float32

	tMs        uint32
	altitude   float32
	velocity   float32
	netAccel   float32
	landed     bool
	peakAlt    float32
	peakTimeMs uint32
}

// NewDragSimulator constructs a drag-augmented simulator with the given
// lumped drag coefficient k (in a_drag = -k*v*|v|).
func NewDragSimulator(launchTimeMs uint32, motorAccelMps2 float32, burnTimeMs, tickMs uint32, dragCoeff float32) *DragSimulator {
	return &DragSimulator{
		launchTimeMs:   launchTimeMs,
		motorAccelMps2: motorAccelMps2,
		burnTimeMs:     burnTimeMs,
		tickMs:         tickMs,
		dragCoeff:      dragCoeff,
	}
}

// SetDragCoefficient updates k mid-flight, e.g. to emulate airbrakes.
func (s *DragSimulator) SetDragCoefficient(k float32) { s.dragCoeff = k }

// DragCoefficient returns the current k.
func (s *DragSimulator) DragCoefficient() float32 { return s.dragCoeff }

// Tick advances the simulation by one tick.
func (s *DragSimulator) Tick() {
	if s.landed {
		s.tMs += s.tickMs
		return
	}

	dt := float32(s.tickMs) / 1000.0

	if s.tMs < s.launchTimeMs {
		s.netAccel = 0
	} else {
		burning := s.tMs < s.launchTimeMs+s.burnTimeMs
		thrustA := float32(0)
		if burning {
			thrustA = s.motorAccelMps2
		}
		gravityA := -float32(standardGravity)
		dragA := float32(0)
		if s.velocity != 0 {
			dragA = -s.dragCoeff * s.velocity * absf(s.velocity)
		}
		s.netAccel = thrustA + gravityA + dragA
	}

	if s.tMs >= s.launchTimeMs {
		s.velocity += s.netAccel * dt
		s.altitude += s.velocity * dt

		if s.altitude > s.peakAlt {
			s.peakAlt = s.altitude
			s.peakTimeMs = s.tMs
		}

		if s.altitude <= 0 {
			s.altitude = 0
			s.velocity = 0
			s.netAccel = 0
			s.landed = true
		}
	}

	s.tMs += s.tickMs
}

// RawSample returns the raw sensor pair for the current instant, as
// LinearBoost.RawSample does.
func (s *DragSimulator) RawSample() (sample.AccelTriplet, sample.Sample) {
	proper := s.netAccel + float32(standardGravity)
	accel := sample.AccelTriplet{
		X: sample.Sample{TimestampMs: s.tMs, Value: 0},
		Y: sample.Sample{TimestampMs: s.tMs, Value: 0},
		Z: sample.Sample{TimestampMs: s.tMs, Value: proper},
	}
	baro := sample.Sample{TimestampMs: s.tMs, Value: s.altitude}
	return accel, baro
}

func (s *DragSimulator) Altitude() float32     { return s.altitude }
func (s *DragSimulator) Velocity() float32     { return s.velocity }
func (s *DragSimulator) CurrentTimeMs() uint32 { return s.tMs }
func (s *DragSimulator) HasLanded() bool       { return s.landed }
func (s *DragSimulator) PeakAltitude() float32 { return s.peakAlt }
func (s *DragSimulator) PeakTimeMs() uint32    { return s.peakTimeMs }
func (s *DragSimulator) LaunchTimeMs() uint32  { return s.launchTimeMs }

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
