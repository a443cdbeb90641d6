package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"readiness/internal/health"
)

// ErrNoSession is returned for FIT activity files without a session message
var ErrNoSession = errors.New("fit activity has no session")

// maxRecordGap caps how long a single FIT record is assumed to last, so
// auto-pause gaps are not credited to one heart rate reading
const maxRecordGap = time.Minute

// invalidHR is the FIT sentinel for a missing uint8 heart rate
const invalidHR = 0xFF

// LoadFIT reads a FIT activity file from disk
func LoadFIT(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fit file: %w", err)
	}
	defer f.Close()

	w, err := ReadFIT(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Dataset{Workouts: []health.RawWorkout{w}}, nil
}

// ReadFIT decodes a FIT activity into a raw workout
func ReadFIT(r io.Reader) (health.RawWorkout, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return health.RawWorkout{}, fmt.Errorf("decoding fit file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return health.RawWorkout{}, fmt.Errorf("reading fit activity: %w", err)
	}
	return workoutFromActivity(activity)
}

func workoutFromActivity(af *fit.ActivityFile) (health.RawWorkout, error) {
	if len(af.Sessions) == 0 {
		return health.RawWorkout{}, ErrNoSession
	}
	s := af.Sessions[0]

	w := health.RawWorkout{
		Type:      sportName(s.Sport),
		StartTime: s.StartTime.UTC(),
	}

	// total_timer_time is in milliseconds (scale 1000)
	if s.TotalTimerTime > 0 {
		w.EndTime = w.StartTime.Add(time.Duration(s.TotalTimerTime) * time.Millisecond)
	}
	if s.AvgHeartRate != 0 && s.AvgHeartRate != invalidHR {
		w.AvgHR = float64(s.AvgHeartRate)
	}

	for i, rec := range af.Records {
		if rec.HeartRate == 0 || rec.HeartRate == invalidHR {
			continue
		}
		start := rec.Timestamp.UTC()
		end := start.Add(time.Second)
		if i+1 < len(af.Records) {
			next := af.Records[i+1].Timestamp.UTC()
			if gap := next.Sub(start); gap > 0 {
				end = start.Add(min(gap, maxRecordGap))
			}
		}
		w.Samples = append(w.Samples, health.HeartRateSample{
			StartTime: start,
			EndTime:   end,
			BPM:       float64(rec.HeartRate),
		})
	}

	if w.EndTime.IsZero() && len(af.Records) > 0 {
		w.EndTime = af.Records[len(af.Records)-1].Timestamp.UTC()
	}
	if w.EndTime.Before(w.StartTime) {
		w.EndTime = w.StartTime
	}

	w.ID = workoutID(w.Type, w.StartTime, w.EndTime)
	return w, nil
}

// sportName maps FIT sports onto the workout type keys used by the
// load and EPOC tables
func sportName(sport fit.Sport) string {
	switch sport {
	case fit.SportRunning:
		return "running"
	case fit.SportCycling:
		return "cycling"
	case fit.SportSwimming:
		return "swimming"
	case fit.SportRowing:
		return "rowing"
	case fit.SportWalking:
		return "walking"
	case fit.SportHiking:
		return "hiking"
	case fit.SportTraining:
		return "strength"
	default:
		return strings.ToLower(sport.String())
	}
}
