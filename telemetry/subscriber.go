// Package telemetry defines the flight state machine's event publication
// interface: a minimal in-process observer contract, not a wire protocol.
package telemetry

import "github.com/CURocketEngineering/Native/flightstate/state"

// Subscriber receives the four event kinds the flight core publishes. It is
// called synchronously, on the tick thread, once per event — implementations
// must not block.
type Subscriber interface {
	// OnStateTransition fires on every flight-state transition, including
	// the SoftAscent -> Armed revert.
	OnStateTransition(tMs uint32, newState state.FlightState)
	// OnLaunchDetected fires each time a detector latches: tentative=true
	// for the fast detector's tentative call, tentative=false for the
	// windowed detector's confirmation. The fast detector is reset on a
	// SoftAscent -> Armed revert and can fire again afterwards.
	OnLaunchDetected(tMs uint32, tentative bool)
	// OnApogeeDetected fires once, when the apogee detector latches.
	OnApogeeDetected(tMs uint32, altitudeM float32)
	// OnApogeePrediction fires every tick the predictor's projection is
	// valid.
	OnApogeePrediction(tMs uint32, altitudeM float32)
}
