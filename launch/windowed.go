package launch

import (
	"log"

	"github.com/CURocketEngineering/Native/ringbuffer"
	"github.com/CURocketEngineering/Native/sample"
)

// slackFraction is the acceptable timing slack around windowIntervalMs,
// expressed as a fraction (20%).
const slackFraction = 0.2

// spanShortfallFraction is how far below windowSizeMs the total window
// timestamp span is allowed to fall before the window is considered too
// compressed to trust (10%).
const spanShortfallFraction = 0.1

// WindowDetector declares launch when the median |a|^2 over a
// timing-validated sliding window reaches or exceeds threshold^2. A single-sample
// impulse cannot trigger it: the window requires sustained thrust sampled
// at close to the cadence the threshold was tuned for.
type WindowDetector struct {
	window *ringbuffer.RingBuffer[sample.Sample]

	windowSizeMs     uint32
	windowIntervalMs uint32
	thresholdSquared float32

	launched       bool
	launchedTimeMs uint32
}

// NewWindowDetector constructs a windowed launch detector. threshold is in
// m/s^2 (not squared); windowSizeMs and windowIntervalMs are as described
// in the spec (window capacity = windowSizeMs / windowIntervalMs).
func NewWindowDetector(threshold float32, windowSizeMs, windowIntervalMs uint32) *WindowDetector {
	capacity := int(windowSizeMs / windowIntervalMs)
	return &WindowDetector{
		window:           ringbuffer.New[sample.Sample](capacity),
		windowSizeMs:     windowSizeMs,
		windowIntervalMs: windowIntervalMs,
		thresholdSquared: threshold * threshold,
	}
}

// WindowCapacity returns the number of samples the sliding window holds.
func (d *WindowDetector) WindowCapacity() int {
	return d.window.Capacity()
}

// WindowIntervalMs returns the configured nominal sample cadence.
func (d *WindowDetector) WindowIntervalMs() uint32 {
	return d.windowIntervalMs
}

// Update feeds one acceleration triplet and returns the resulting status.
func (d *WindowDetector) Update(accel sample.AccelTriplet) Status {
	if d.launched {
		return StatusAlreadyLaunched
	}

	ts := accel.TimestampMs()
	magSq := accel.SumSquares()

	if d.window.Size() > 0 {
		headTs := d.window.GetFromHead(0).TimestampMs
		delta := int64(ts) - int64(headTs)
		if delta <= 0 {
			return StatusYoungerTimestamp
		}

		slack := float64(d.windowIntervalMs) * slackFraction
		lowerBound := float64(d.windowIntervalMs) - slack
		upperBound := float64(d.windowIntervalMs) + slack

		if float64(delta) < lowerBound {
			return StatusDataTooFast
		}
		if float64(delta) > upperBound {
			d.window.Clear()
			return StatusWindowDataStale
		}
	}

	d.window.Push(sample.Sample{TimestampMs: ts, Value: magSq})

	if !d.window.IsFull() {
		return StatusInitialPopulation
	}

	size := d.window.Size()
	span := d.window.GetFromHead(0).TimestampMs - d.window.GetFromHead(size-1).TimestampMs
	minSpan := float64(d.windowSizeMs) * (1 - spanShortfallFraction)
	if float64(span) < minSpan {
		return StatusWindowTimeRangeTooSmall
	}

	median := d.window.MedianByValue(func(a, b sample.Sample) bool { return a.Value < b.Value })
	if median.Value < d.thresholdSquared {
		return StatusAclTooLow
	}

	d.launched = true
	d.launchedTimeMs = d.window.GetFromHead(size / 2).TimestampMs
	log.Printf("launch: windowed detector confirmed launch at t=%dms", d.launchedTimeMs)
	return StatusLaunchDetected
}

// IsLaunched reports whether this detector has latched.
func (d *WindowDetector) IsLaunched() bool {
	return d.launched
}

// LaunchedTimeMs returns the latched launch timestamp, or 0 if not yet
// launched.
func (d *WindowDetector) LaunchedTimeMs() uint32 {
	return d.launchedTimeMs
}

// Reset clears the window and the launch latch.
func (d *WindowDetector) Reset() {
	d.window.Clear()
	d.launched = false
	d.launchedTimeMs = 0
}
