// Package flightstate sequences the estimators and detectors through the
// Armed -> SoftAscent -> Ascent -> Descent -> Landed flight lifecycle,
// brokering events to subscribers and to the persistence sink.
package flightstate

import (
	"log"

	"github.com/google/uuid"

	"github.com/CURocketEngineering/Native/apogee"
	"github.com/CURocketEngineering/Native/flightconfig"
	"github.com/CURocketEngineering/Native/flightstate/state"
	"github.com/CURocketEngineering/Native/groundlevel"
	"github.com/CURocketEngineering/Native/launch"
	"github.com/CURocketEngineering/Native/sample"
	"github.com/CURocketEngineering/Native/sensordata"
	"github.com/CURocketEngineering/Native/telemetry"
	"github.com/CURocketEngineering/Native/vve"
)

// landingAltitudeMarginM bounds how close to the frozen ground level the
// estimator must read, alongside the velocity gate, before Descent hands
// off to Landed. Not named by the spec; chosen generously relative to
// typical baro noise.
const landingAltitudeMarginM = 5.0

// Machine owns every estimator and detector for one flight and sequences
// them through the state table. It is the sole owner of these components:
// nothing outside Machine ever calls them directly.
type Machine struct {
	cfg      flightconfig.Config
	flightID uuid.UUID

	useFastDetector bool

	state state.FlightState

	gle        *groundlevel.Estimator
	vve        *vve.Estimator
	windowDet  *launch.WindowDetector
	fastDet    *launch.FastDetector
	apogeeDet  *apogee.Detector
	apogeePred *apogee.Predictor

	sink        sensordata.PersistenceSink
	subscribers []telemetry.Subscriber

	softAscentDeadlineMs uint32

	landedConsecutive int
}

// New constructs a Machine in the Armed state. useFastDetector controls
// whether SoftAscent exists in this flight's state graph, per spec.
func New(cfg flightconfig.Config, sink sensordata.PersistenceSink, useFastDetector bool) *Machine {
	m := &Machine{}
	m.init(cfg, sink, useFastDetector)
	return m
}

func (m *Machine) init(cfg flightconfig.Config, sink sensordata.PersistenceSink, useFastDetector bool) {
	m.cfg = cfg
	m.sink = sink
	m.useFastDetector = useFastDetector
	m.flightID = uuid.New()

	m.state = state.Armed
	m.gle = groundlevel.New()
	m.vve = vve.New(vve.NoiseVariances{AccelVariance: cfg.AccelVariance, BaroVariance: cfg.BaroVariance})
	m.windowDet = launch.NewWindowDetector(cfg.LaunchThresholdMps2, cfg.WindowSizeMs, cfg.WindowIntervalMs)
	if useFastDetector {
		m.fastDet = launch.NewFastDetector(cfg.FastLaunchThresholdMps2)
	} else {
		m.fastDet = nil
	}
	m.apogeeDet = apogee.NewDetector(cfg.ApogeeMarginM)
	m.apogeePred = apogee.NewPredictor(cfg.PredictorAlpha, cfg.MinClimbVelocity)
	m.landedConsecutive = 0

	log.Printf("flightstate: new flight %s armed", m.flightID)
}

// FlightID returns this flight's session identifier.
func (m *Machine) FlightID() uuid.UUID { return m.flightID }

// GetState returns the current flight state.
func (m *Machine) GetState() state.FlightState { return m.state }

// Subscribe registers a telemetry subscriber. Order of delivery matches
// registration order.
func (m *Machine) Subscribe(s telemetry.Subscriber) {
	m.subscribers = append(m.subscribers, s)
}

// Reset reinitializes every owned component and returns to Armed with a
// fresh flight ID. No component is ever touched again from the prior
// flight after this call.
func (m *Machine) Reset() {
	m.init(m.cfg, m.sink, m.useFastDetector)
}

// Update feeds one synchronized accelerometer triplet and barometer sample
// through the pipeline appropriate to the current state.
func (m *Machine) Update(accel sample.AccelTriplet, baro sample.Sample) {
	switch m.state {
	case state.Armed:
		m.updateArmed(accel, baro)
	case state.SoftAscent:
		m.updateSoftAscent(accel, baro)
	case state.Ascent:
		m.updateAscent(accel, baro)
	case state.Descent:
		m.updateDescent(accel, baro)
	case state.Landed:
		// No feed once landed.
	}
}

func (m *Machine) updateArmed(accel sample.AccelTriplet, baro sample.Sample) {
	m.gle.Update(baro.Value)

	windowStatus := m.windowDet.Update(accel)

	// A same-tick confirmed launch always wins over a merely tentative one:
	// WindowDetector.Update only ever reports StatusLaunchDetected once, so
	// letting the fast path return first here would strand the confirmation
	// this tick already produced.
	if windowStatus == launch.StatusLaunchDetected {
		m.publishLaunchDetected(m.windowDet.LaunchedTimeMs(), false)
		m.enterAscent(accel.TimestampMs())
		return
	}

	if m.useFastDetector {
		if status := m.fastDet.Update(accel); status == launch.StatusLaunchDetected {
			m.publishLaunchDetected(accel.TimestampMs(), true)
			m.enterSoftAscent(accel.TimestampMs())
		}
	}
}

func (m *Machine) updateSoftAscent(accel sample.AccelTriplet, baro sample.Sample) {
	m.vve.Update(accel, baro)

	if status := m.windowDet.Update(accel); status == launch.StatusLaunchDetected {
		m.publishLaunchDetected(m.windowDet.LaunchedTimeMs(), false)
		m.enterAscent(accel.TimestampMs())
		return
	}

	if accel.TimestampMs() > m.softAscentDeadlineMs {
		m.revertToArmed()
	}
}

func (m *Machine) updateAscent(accel sample.AccelTriplet, baro sample.Sample) {
	m.vve.Update(accel, baro)
	m.apogeePred.Update(m.vve)
	m.publishApogeePredictionIfValid(accel.TimestampMs())

	m.apogeeDet.Update(m.vve)
	if m.apogeeDet.IsApogeeDetected() {
		apogeeSample := m.apogeeDet.GetApogee()
		m.publishApogeeDetected(apogeeSample.TimestampMs, apogeeSample.Value)
		m.enterDescent(accel.TimestampMs())
	}
}

func (m *Machine) updateDescent(accel sample.AccelTriplet, baro sample.Sample) {
	m.vve.Update(accel, baro)
	m.apogeePred.Update(m.vve)
	m.publishApogeePredictionIfValid(accel.TimestampMs())

	speed := m.vve.EstimatedVelocity()
	if speed < 0 {
		speed = -speed
	}
	agl := m.vve.EstimatedAltitude() - m.gle.GetEGL()
	if agl < 0 {
		agl = -agl
	}

	if speed < m.cfg.LandingVelocityMps && agl < landingAltitudeMarginM {
		m.landedConsecutive++
		if m.landedConsecutive >= m.cfg.LandingSampleCount {
			m.enterLanded(accel.TimestampMs())
		}
	} else {
		m.landedConsecutive = 0
	}
}

func (m *Machine) enterSoftAscent(tMs uint32) {
	m.gle.LaunchDetected()
	m.sink.SetPostLaunchMode()
	m.softAscentDeadlineMs = tMs + m.cfg.ConfirmationWindowMs
	m.transitionTo(state.SoftAscent, tMs)
}

func (m *Machine) enterAscent(tMs uint32) {
	m.gle.LaunchDetected()
	m.sink.SetPostLaunchMode()
	m.sink.RaiseSaveRate()
	m.transitionTo(state.Ascent, tMs)
}

func (m *Machine) enterDescent(tMs uint32) {
	m.transitionTo(state.Descent, tMs)
}

func (m *Machine) enterLanded(tMs uint32) {
	m.sink.LowerSaveRate()
	m.transitionTo(state.Landed, tMs)
}

func (m *Machine) revertToArmed() {
	m.fastDet.Reset()
	m.sink.ClearPostLaunchMode()
	m.transitionTo(state.Armed, m.softAscentDeadlineMs)
}

func (m *Machine) transitionTo(s state.FlightState, tMs uint32) {
	m.state = s
	log.Printf("flightstate: flight %s -> %s at t=%dms", m.flightID, s, tMs)
	m.sink.NotifyStateTransition(tMs, s.String())
	for _, sub := range m.subscribers {
		sub.OnStateTransition(tMs, s)
	}
}

func (m *Machine) publishLaunchDetected(tMs uint32, tentative bool) {
	for _, sub := range m.subscribers {
		sub.OnLaunchDetected(tMs, tentative)
	}
}

func (m *Machine) publishApogeeDetected(tMs uint32, altitudeM float32) {
	for _, sub := range m.subscribers {
		sub.OnApogeeDetected(tMs, altitudeM)
	}
}

func (m *Machine) publishApogeePredictionIfValid(tMs uint32) {
	if !m.apogeePred.IsPredictionValid() {
		return
	}
	altitudeM := m.apogeePred.GetPredictedApogeeAltitudeM()
	for _, sub := range m.subscribers {
		sub.OnApogeePrediction(tMs, altitudeM)
	}
}
