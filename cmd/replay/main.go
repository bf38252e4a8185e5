// Command replay drives a flightstate.Machine from a recorded CSV flight
// log instead of live sensors. It is the CSV replay harness the core spec
// calls out as an external, out-of-scope collaborator: everything it does
// is glue around the real core in ../../flightstate.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/CURocketEngineering/Native/flightconfig"
	"github.com/CURocketEngineering/Native/flightstate"
	"github.com/CURocketEngineering/Native/flightstate/state"
	"github.com/CURocketEngineering/Native/sample"
)

// row is one CSV record after parsing. Gyro, magnetometer, pressure, and
// temperature columns are carried through for fidelity to the recorded
// format but are not consumed by any estimator in the core: this system's
// non-goal of attitude estimation means it never looks at gyro/mag, and
// the VVE fuses altitude directly rather than deriving it from pressure.
type row struct {
	timeMs     float64
	ax, ay, az float64
	gx, gy, gz float64
	mx, my, mz float64
	altitude   float64
	pressure   float64
	temp       float64
}

const csvColumns = 13

func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = csvColumns

	var rows []row
	lineNo := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("replay: %s line %d: %w", path, lineNo, err)
		}
		if lineNo == 1 && isHeader(rec) {
			continue
		}

		vals := make([]float64, csvColumns)
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("replay: %s line %d field %d: %w", path, lineNo, i, err)
			}
			vals[i] = v
		}
		rows = append(rows, row{
			timeMs: vals[0],
			ax:     vals[1], ay: vals[2], az: vals[3],
			gx: vals[4], gy: vals[5], gz: vals[6],
			mx: vals[7], my: vals[8], mz: vals[9],
			altitude: vals[10], pressure: vals[11], temp: vals[12],
		})
	}
	return rows, nil
}

func isHeader(rec []string) bool {
	_, err := strconv.ParseFloat(rec[0], 64)
	return err != nil
}

// interpolate produces the accel triplet and altitude at tMs by linear
// interpolation between the bracketing rows in a monotonically increasing
// series, matching the harness behavior the spec calls for. Times before
// the first row or after the last are clamped to the nearest endpoint.
func interpolate(rows []row, tMs float64) row {
	if tMs <= rows[0].timeMs {
		return rows[0]
	}
	if tMs >= rows[len(rows)-1].timeMs {
		return rows[len(rows)-1]
	}
	lo, hi := 0, len(rows)-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if rows[mid].timeMs <= tMs {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := rows[lo], rows[hi]
	frac := (tMs - a.timeMs) / (b.timeMs - a.timeMs)
	lerp := func(x, y float64) float64 { return x + frac*(y-x) }
	return row{
		timeMs:   tMs,
		ax:       lerp(a.ax, b.ax),
		ay:       lerp(a.ay, b.ay),
		az:       lerp(a.az, b.az),
		gx:       lerp(a.gx, b.gx),
		gy:       lerp(a.gy, b.gy),
		gz:       lerp(a.gz, b.gz),
		mx:       lerp(a.mx, b.mx),
		my:       lerp(a.my, b.my),
		mz:       lerp(a.mz, b.mz),
		altitude: lerp(a.altitude, b.altitude),
		pressure: lerp(a.pressure, b.pressure),
		temp:     lerp(a.temp, b.temp),
	}
}

// loggingSink implements sensordata.PersistenceSink by printing every
// saveEvery-th save, each mode change and each state transition to stdout,
// standing in for the SPI-flash logger the spec places out of scope.
type loggingSink struct {
	sensorID  uint8
	saveEvery int
	count     int
}

func (s *loggingSink) Save(smp sample.Sample, sensorID uint8) int32 {
	s.count++
	if s.count%s.saveEvery == 0 {
		fmt.Printf("save t=%dms sensor=%d value=%.4f\n", smp.TimestampMs, sensorID, smp.Value)
	}
	return 0
}

func (s *loggingSink) SetPostLaunchMode()   { fmt.Println("sink: post-launch mode ON") }
func (s *loggingSink) ClearPostLaunchMode() { fmt.Println("sink: post-launch mode OFF") }
func (s *loggingSink) RaiseSaveRate()       { s.saveEvery = 1 }
func (s *loggingSink) LowerSaveRate()       { s.saveEvery = 20 }
func (s *loggingSink) NotifyStateTransition(tMs uint32, newState string) {
	fmt.Printf("sink: state -> %s at t=%dms\n", newState, tMs)
}

// consoleSubscriber prints telemetry events as they fire.
type consoleSubscriber struct{}

func (consoleSubscriber) OnStateTransition(tMs uint32, s state.FlightState) {
	log.Printf("[%6dms] state -> %s", tMs, s)
}
func (consoleSubscriber) OnLaunchDetected(tMs uint32, tentative bool) {
	log.Printf("[%6dms] launch detected (tentative=%v)", tMs, tentative)
}
func (consoleSubscriber) OnApogeeDetected(tMs uint32, altitudeM float32) {
	log.Printf("[%6dms] apogee detected at %.2fm", tMs, altitudeM)
}
func (consoleSubscriber) OnApogeePrediction(tMs uint32, altitudeM float32) {
	log.Printf("[%6dms] apogee predicted at %.2fm", tMs, altitudeM)
}

func main() {
	csvPath := flag.String("csv", "", "path to recorded flight CSV")
	configPath := flag.String("config", "", "path to flightconfig YAML (optional, defaults to reference tuning)")
	rateHz := flag.Float64("rate", 100.0, "resampling rate in Hz supplied to the flight core")
	useFast := flag.Bool("fast", true, "enable the fast (tentative) launch detector")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("replay: -csv is required")
	}

	cfg := flightconfig.Default()
	if *configPath != "" {
		var err error
		cfg, err = flightconfig.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("replay: %v", err)
		}
	}

	rows, err := readRows(*csvPath)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
	if len(rows) < 2 {
		log.Fatal("replay: need at least two rows to interpolate")
	}

	sink := &loggingSink{saveEvery: 20}
	m := flightstate.New(cfg, sink, *useFast)
	m.Subscribe(consoleSubscriber{})

	stepMs := 1000.0 / *rateHz
	start, end := rows[0].timeMs, rows[len(rows)-1].timeMs

	for t := start; t <= end; t += stepMs {
		r := interpolate(rows, t)
		tMs := uint32(t + 0.5)

		accel := sample.AccelTriplet{
			X: sample.Sample{TimestampMs: tMs, Value: float32(r.ax)},
			Y: sample.Sample{TimestampMs: tMs, Value: float32(r.ay)},
			Z: sample.Sample{TimestampMs: tMs, Value: float32(r.az)},
		}
		baro := sample.Sample{TimestampMs: tMs, Value: float32(r.altitude)}

		m.Update(accel, baro)

		if m.GetState() == state.Landed {
			break
		}
	}

	fmt.Printf("replay complete: flight %s ended in state %s\n", m.FlightID(), m.GetState())
}
