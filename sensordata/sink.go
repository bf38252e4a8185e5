package sensordata

// PersistenceSink is the full sink contract shared between sensordata
// handlers (which only call Save) and the flight state machine, which also
// toggles post-launch mode and save rate, and publishes state transitions,
// as it moves through the flight state table.
type PersistenceSink interface {
	Sink
	SetPostLaunchMode()
	ClearPostLaunchMode()
	RaiseSaveRate()
	LowerSaveRate()
	NotifyStateTransition(tMs uint32, newState string)
}
