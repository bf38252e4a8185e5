package launch

import (
	"testing"

	"github.com/CURocketEngineering/Native/sample"
)

func trip(ts uint32, x, y, z float32) sample.AccelTriplet {
	return sample.AccelTriplet{
		X: sample.Sample{TimestampMs: ts, Value: x},
		Y: sample.Sample{TimestampMs: ts, Value: y},
		Z: sample.Sample{TimestampMs: ts, Value: z},
	}
}

func fillWindowWithInterval(d *WindowDetector, start uint32, deltaMs uint32, x, y, z float32) Status {
	var last Status
	cap := d.WindowCapacity()
	for i := 0; i < cap; i++ {
		ts := start + uint32(i)*deltaMs
		last = d.Update(trip(ts, x, y, z))
	}
	return last
}

func fillWindow(d *WindowDetector, x, y, z float32) Status {
	// Fills one whole window starting at t=0; only used on a detector whose
	// window is still empty.
	return fillWindowWithInterval(d, 0, d.WindowIntervalMs(), x, y, z)
}

func TestInitialPopulation(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	capacity := d.WindowCapacity()
	start := uint32(1000)
	var last Status
	for i := 0; i < capacity; i++ {
		ts := start + uint32(i)*d.WindowIntervalMs()
		last = d.Update(trip(ts, 1.0, 1.0, 1.0))
		if i < capacity-1 {
			if last != StatusInitialPopulation {
				t.Fatalf("iter %d: status = %v, want INITIAL_POPULATION", i, last)
			}
			if d.IsLaunched() {
				t.Fatalf("iter %d: should not be launched yet", i)
			}
		}
	}
	if last != StatusAclTooLow {
		t.Fatalf("final status = %v, want ACL_TOO_LOW", last)
	}
	if d.IsLaunched() {
		t.Fatalf("should not be launched")
	}
}

func TestAlreadyLaunched(t *testing.T) {
	d := NewWindowDetector(30.0, 100, 5)
	if d.IsLaunched() {
		t.Fatalf("should start unlaunched")
	}

	fillWindow(d, 10.0, 0, 0)

	newestTime := d.window.GetFromHead(0).TimestampMs + d.WindowIntervalMs()
	half := d.WindowCapacity() / 2
	for i := 0; i < half; i++ {
		ts := newestTime + uint32(i)*d.WindowIntervalMs()
		ret := d.Update(trip(ts, 100.0, 100.0, 100.0))
		if i < half-1 {
			if ret != StatusAclTooLow {
				t.Fatalf("iter %d: status = %v, want ACL_TOO_LOW", i, ret)
			}
			if d.IsLaunched() {
				t.Fatalf("iter %d: should not be launched yet", i)
			}
		}
	}

	if !d.IsLaunched() {
		t.Fatalf("expected launched")
	}

	ret := d.Update(trip(1_000_000, 20.0, 20.0, 20.0))
	if ret != StatusAlreadyLaunched {
		t.Fatalf("status = %v, want ALREADY_LAUNCHED", ret)
	}
}

func TestYoungerTimestampRejected(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	d.Update(trip(1000, 1.0, 1.0, 1.0))
	ret := d.Update(trip(900, 1.0, 1.0, 1.0))
	if ret != StatusYoungerTimestamp {
		t.Fatalf("status = %v, want YOUNGER_TIMESTAMP", ret)
	}
}

func TestDataTooFast(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindow(d, 1.0, 1.0, 1.0)
	headTime := d.window.GetFromHead(0).TimestampMs
	ret := d.Update(trip(headTime+3, 1.0, 1.0, 1.0))
	if ret != StatusDataTooFast {
		t.Fatalf("status = %v, want DATA_TOO_FAST", ret)
	}
}

func TestWindowDataStale(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindow(d, 1.0, 1.0, 1.0)
	headTime := d.window.GetFromHead(0).TimestampMs
	ret := d.Update(trip(headTime+7, 10.0, 10.0, 10.0))
	if ret != StatusWindowDataStale {
		t.Fatalf("status = %v, want WINDOW_DATA_STALE", ret)
	}
	ret2 := d.Update(trip(headTime+7+5, 10.0, 10.0, 10.0))
	if ret2 != StatusInitialPopulation {
		t.Fatalf("status after stale-clear = %v, want INITIAL_POPULATION", ret2)
	}
}

func TestWindowTimeRangeTooSmall(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindowWithInterval(d, 1000, 4, 10.0, 10.0, 10.0)
	headTime := d.window.GetFromHead(0).TimestampMs
	ret := d.Update(trip(headTime+4, 10.0, 10.0, 10.0))
	if ret != StatusWindowTimeRangeTooSmall {
		t.Fatalf("status = %v, want WINDOW_TIME_RANGE_TOO_SMALL", ret)
	}
	if d.IsLaunched() {
		t.Fatalf("should not be launched")
	}
}

func TestMedianBelowThreshold(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindow(d, 1.0, 1.0, 1.0)
	if d.IsLaunched() {
		t.Fatalf("should not be launched")
	}
}

func TestMedianAboveThresholdLaunches(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindow(d, 10.0, 10.0, 10.0)
	newTime := d.window.GetFromHead(0).TimestampMs + d.WindowIntervalMs()
	ret := d.Update(trip(newTime, 100.0, 100.0, 100.0))
	if ret != StatusLaunchDetected {
		t.Fatalf("status = %v, want LAUNCH_DETECTED", ret)
	}
	if !d.IsLaunched() {
		t.Fatalf("expected launched")
	}
	if d.LaunchedTimeMs() == 0 {
		t.Fatalf("launched time should be nonzero")
	}
}

func TestMedianEdgeCase(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindow(d, 9.9, 0, 0)
	if d.IsLaunched() {
		t.Fatalf("should not be launched below threshold")
	}
	fillWindowWithInterval(d, d.window.GetFromHead(0).TimestampMs+d.WindowIntervalMs(), d.WindowIntervalMs(), 10.1, 0, 0)
	if !d.IsLaunched() {
		t.Fatalf("expected launched above threshold")
	}
}

func TestWindowNotFullNoLaunch(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	ret := d.Update(trip(1000, 1.0, 1.0, 1.0))
	if ret != StatusInitialPopulation {
		t.Fatalf("status = %v, want INITIAL_POPULATION", ret)
	}
	if d.IsLaunched() {
		t.Fatalf("should not be launched")
	}
}

func TestWindowedReset(t *testing.T) {
	d := NewWindowDetector(10.0, 100, 5)
	fillWindow(d, 10.0, 0.0, 0.0)
	fillWindowWithInterval(d, d.window.GetFromHead(0).TimestampMs+d.WindowIntervalMs(), d.WindowIntervalMs(), 20.0, 0.0, 0.0)
	if !d.IsLaunched() {
		t.Fatalf("expected launched before reset")
	}

	d.Reset()
	if d.IsLaunched() {
		t.Fatalf("expected unlaunched after reset")
	}
	if d.LaunchedTimeMs() != 0 {
		t.Fatalf("launched time should reset to 0")
	}

	ret := d.Update(trip(5000, 10.0, 0.0, 0.0))
	if ret != StatusInitialPopulation {
		t.Fatalf("status after reset = %v, want INITIAL_POPULATION", ret)
	}
}
