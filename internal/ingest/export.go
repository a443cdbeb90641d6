// Package ingest turns exported health data into the in-memory inputs the
// analysis engine works on.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"readiness/internal/health"
)

// ErrUnsupportedFormat is returned for files that are not JSON, YAML or FIT
var ErrUnsupportedFormat = errors.New("unsupported file format")

// workoutNamespace seeds deterministic ids for workouts exported without one
var workoutNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("readiness/workout"))

// Export is the on-disk document. Timestamps are ISO-8601 strings.
type Export struct {
	Timezone      string        `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	HeartRate     []hrSampleDoc `json:"heart_rate,omitempty" yaml:"heart_rate,omitempty"`
	Workouts      []workoutDoc  `json:"workouts,omitempty" yaml:"workouts,omitempty"`
	Sleep         []sleepDoc    `json:"sleep,omitempty" yaml:"sleep,omitempty"`
	RestingHR     []sampleDoc   `json:"resting_hr,omitempty" yaml:"resting_hr,omitempty"`
	HRV           []sampleDoc   `json:"hrv,omitempty" yaml:"hrv,omitempty"`
	PreviousState *stateDoc     `json:"previous_state,omitempty" yaml:"previous_state,omitempty"`
}

type hrSampleDoc struct {
	Start string  `json:"start" yaml:"start"`
	End   string  `json:"end,omitempty" yaml:"end,omitempty"`
	BPM   float64 `json:"bpm" yaml:"bpm"`
}

type zoneDoc struct {
	Z1 float64 `json:"z1" yaml:"z1"`
	Z2 float64 `json:"z2" yaml:"z2"`
	Z3 float64 `json:"z3" yaml:"z3"`
	Z4 float64 `json:"z4" yaml:"z4"`
	Z5 float64 `json:"z5" yaml:"z5"`
}

type workoutDoc struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type        string   `json:"type" yaml:"type"`
	Start       string   `json:"start" yaml:"start"`
	End         string   `json:"end" yaml:"end"`
	ZoneMinutes *zoneDoc `json:"zone_minutes,omitempty" yaml:"zone_minutes,omitempty"`
	AvgHR       float64  `json:"avg_hr,omitempty" yaml:"avg_hr,omitempty"`
	RPE         float64  `json:"rpe,omitempty" yaml:"rpe,omitempty"`
}

type sleepDoc struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type sampleDoc struct {
	Time  string  `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

type stateDoc struct {
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
	DebtScore float64 `json:"debt_score" yaml:"debt_score"`
}

// Dataset is everything the engine needs, already resolved in memory
type Dataset struct {
	Workouts []health.RawWorkout
	Metrics  []health.DailyMetric
	Previous health.RecoveryState
	Location *time.Location

	sleep     []health.SleepSession
	restingHR []health.Sample
	hrv       []health.Sample
}

// LoadExport reads a JSON or YAML export, chosen by file extension
func LoadExport(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// DecodeJSON parses a JSON export
func DecodeJSON(r io.Reader) (*Dataset, error) {
	var doc Export
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing json export: %w", err)
	}
	return doc.Dataset()
}

// DecodeYAML parses a YAML export
func DecodeYAML(r io.Reader) (*Dataset, error) {
	var doc Export
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing yaml export: %w", err)
	}
	return doc.Dataset()
}

// Dataset resolves timestamps, attaches heart rate samples to the workouts
// they fall within and aggregates daily metrics
func (e Export) Dataset() (*Dataset, error) {
	loc := time.UTC
	if e.Timezone != "" {
		l, err := time.LoadLocation(e.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", e.Timezone, err)
		}
		loc = l
	}

	samples := make([]health.HeartRateSample, 0, len(e.HeartRate))
	for i, s := range e.HeartRate {
		start, err := parseTime(s.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("heart_rate[%d].start: %w", i, err)
		}
		end := start
		if s.End != "" {
			if end, err = parseTime(s.End, loc); err != nil {
				return nil, fmt.Errorf("heart_rate[%d].end: %w", i, err)
			}
		}
		samples = append(samples, health.HeartRateSample{StartTime: start, EndTime: end, BPM: s.BPM})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].StartTime.Before(samples[j].StartTime)
	})

	ds := &Dataset{Location: loc}

	for i, w := range e.Workouts {
		raw, err := w.raw(loc)
		if err != nil {
			return nil, fmt.Errorf("workouts[%d]: %w", i, err)
		}
		raw.Samples = samplesWithin(samples, raw.StartTime, raw.EndTime)
		ds.Workouts = append(ds.Workouts, raw)
	}

	for i, s := range e.Sleep {
		start, err := parseTime(s.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("sleep[%d].start: %w", i, err)
		}
		end, err := parseTime(s.End, loc)
		if err != nil {
			return nil, fmt.Errorf("sleep[%d].end: %w", i, err)
		}
		ds.sleep = append(ds.sleep, health.SleepSession{StartTime: start, EndTime: end})
	}

	var err error
	if ds.restingHR, err = parseSamples("resting_hr", e.RestingHR, loc); err != nil {
		return nil, err
	}
	if ds.hrv, err = parseSamples("hrv", e.HRV, loc); err != nil {
		return nil, err
	}

	if e.PreviousState != nil {
		ts, err := parseTime(e.PreviousState.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("previous_state.timestamp: %w", err)
		}
		ds.Previous = health.RecoveryState{Timestamp: ts, DebtScore: max(0, e.PreviousState.DebtScore)}
	}

	ds.Metrics = health.BuildDailyMetrics(ds.sleep, ds.restingHR, ds.hrv, loc)
	return ds, nil
}

// Merge folds other into d. Workouts whose id is already present are
// dropped, so overlapping inputs count each session once. Raw daily signals
// are combined and re-aggregated; the later previous state wins.
func (d *Dataset) Merge(other *Dataset) {
	if other == nil {
		return
	}
	seen := make(map[string]bool, len(d.Workouts))
	for _, w := range d.Workouts {
		seen[w.ID] = true
	}
	for _, w := range other.Workouts {
		if seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		d.Workouts = append(d.Workouts, w)
	}
	d.sleep = append(d.sleep, other.sleep...)
	d.restingHR = append(d.restingHR, other.restingHR...)
	d.hrv = append(d.hrv, other.hrv...)
	if other.Previous.Timestamp.After(d.Previous.Timestamp) {
		d.Previous = other.Previous
	}
	if d.Location == nil {
		d.Location = other.Location
	}
	d.Metrics = health.BuildDailyMetrics(d.sleep, d.restingHR, d.hrv, d.Location)
}

func (w workoutDoc) raw(loc *time.Location) (health.RawWorkout, error) {
	start, err := parseTime(w.Start, loc)
	if err != nil {
		return health.RawWorkout{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseTime(w.End, loc)
	if err != nil {
		return health.RawWorkout{}, fmt.Errorf("end: %w", err)
	}

	raw := health.RawWorkout{
		ID:        w.ID,
		Type:      w.Type,
		StartTime: start,
		EndTime:   end,
		AvgHR:     w.AvgHR,
		RPE:       w.RPE,
	}
	if raw.ID == "" {
		raw.ID = workoutID(w.Type, start, end)
	}
	if w.ZoneMinutes != nil {
		z := w.ZoneMinutes
		raw.ZoneMinutes = &health.ZoneMinutes{
			max(0, z.Z1), max(0, z.Z2), max(0, z.Z3), max(0, z.Z4), max(0, z.Z5),
		}
	}
	return raw, nil
}

// workoutID derives a stable UUID from the workout's type and time span
func workoutID(workoutType string, start, end time.Time) string {
	key := strings.ToLower(workoutType) + "|" + start.UTC().Format(time.RFC3339) + "|" + end.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(workoutNamespace, []byte(key)).String()
}

// samplesWithin returns samples starting within [start, end]; samples must
// be sorted by start time
func samplesWithin(samples []health.HeartRateSample, start, end time.Time) []health.HeartRateSample {
	lo := sort.Search(len(samples), func(i int) bool {
		return !samples[i].StartTime.Before(start)
	})
	hi := sort.Search(len(samples), func(i int) bool {
		return samples[i].StartTime.After(end)
	})
	if lo >= hi {
		return nil
	}
	out := make([]health.HeartRateSample, hi-lo)
	copy(out, samples[lo:hi])
	return out
}

func parseSamples(field string, docs []sampleDoc, loc *time.Location) ([]health.Sample, error) {
	out := make([]health.Sample, 0, len(docs))
	for i, s := range docs {
		ts, err := parseTime(s.Time, loc)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].time: %w", field, i, err)
		}
		out = append(out, health.Sample{Time: ts, Value: s.Value})
	}
	return out, nil
}

// parseTime accepts RFC 3339 timestamps, zone-less local timestamps and
// bare dates, the latter two interpreted in loc
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
