// Package sample defines the wire-level data types shared by every
// component of the flight core: a single timestamped scalar reading and a
// triaxial acceleration triplet sharing one timestamp.
package sample

// Sample is a single timestamped scalar reading, e.g. one axis of
// acceleration or one barometric altitude reading. Timestamps are
// monotonic per channel; out-of-order samples are a defined error case
// handled by each consuming component, not a panic.
type Sample struct {
	TimestampMs uint32
	Value       float32
}

// Before reports whether s occurred strictly before o, mirroring the
// DataPoint::operator< comparison exercised by the original implementation.
func (s Sample) Before(o Sample) bool {
	return s.TimestampMs < o.TimestampMs
}

// AccelTriplet is one accelerometer reading: three axis samples sharing a
// timestamp. Values are m/s^2 of proper (sensed) acceleration — a
// stationary vehicle reads ~1g along its vertical body axis.
type AccelTriplet struct {
	X, Y, Z Sample
}

// TimestampMs returns the triplet's shared timestamp, taken from the X
// axis by convention (callers are expected to construct triplets with all
// three axes sharing one timestamp).
func (t AccelTriplet) TimestampMs() uint32 {
	return t.X.TimestampMs
}

// SumSquares returns |a|^2 = ax^2 + ay^2 + az^2, the quantity the launch
// detectors threshold against.
func (t AccelTriplet) SumSquares() float32 {
	x, y, z := t.X.Value, t.Y.Value, t.Z.Value
	return x*x + y*y + z*z
}

// Axis identifies one of the three body axes.
type Axis int

const (
	AxisUndetermined Axis = iota
	AxisX
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "undetermined"
	}
}

// Value returns the triplet's component along the given axis.
func (t AccelTriplet) Value(a Axis) float32 {
	switch a {
	case AxisX:
		return t.X.Value
	case AxisY:
		return t.Y.Value
	case AxisZ:
		return t.Z.Value
	default:
		return 0
	}
}
