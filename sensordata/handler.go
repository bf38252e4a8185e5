// Package sensordata implements rate-limited persistence of a single scalar
// channel through an opaque sink, independent of any particular sensor type.
package sensordata

import "github.com/CURocketEngineering/Native/sample"

// Sink is the persistence collaborator. Implementations decide how (or
// whether) to buffer; from the handler's perspective a call to Save is
// synchronous and non-blocking.
type Sink interface {
	// Save persists one sample tagged with its sensor ID. It returns 0 on
	// success and a negative value on error.
	Save(s sample.Sample, sensorID uint8) int32
}

// Handler rate-limits writes of one sensor's samples to a shared Sink.
type Handler struct {
	sensorID   uint8
	sink       Sink
	intervalMs uint32

	haveLast    bool
	lastSavedMs uint32
}

// New constructs a handler with save_interval_ms = 0 (save every sample).
func New(sensorID uint8, sink Sink) *Handler {
	return &Handler{sensorID: sensorID, sink: sink}
}

// RestrictSaveSpeed sets the minimum spacing, in ms, between saved samples.
func (h *Handler) RestrictSaveSpeed(ms uint32) {
	h.intervalMs = ms
}

// AddData saves s through the sink iff s.TimestampMs - lastSaved >
// intervalMs (or this is the first sample seen). Returns the sink's status,
// or 0 if the sample was rate-limited away.
func (h *Handler) AddData(s sample.Sample) int32 {
	if h.haveLast {
		delta := int64(s.TimestampMs) - int64(h.lastSavedMs)
		if delta <= int64(h.intervalMs) {
			return 0
		}
	}

	status := h.sink.Save(s, h.sensorID)
	h.haveLast = true
	h.lastSavedMs = s.TimestampMs
	return status
}
