package health

import "time"

// NumZones is the number of heart rate intensity zones (z1..z5)
const NumZones = 5

// HeartRateSample is a single heart rate reading covering [StartTime, EndTime].
// Point samples have EndTime equal to StartTime.
type HeartRateSample struct {
	StartTime time.Time
	EndTime   time.Time
	BPM       float64
}

// ZoneMinutes holds minutes spent in each zone, index 0 = z1 ... index 4 = z5
type ZoneMinutes [NumZones]float64

// Total returns the minutes summed across all zones
func (z ZoneMinutes) Total() float64 {
	var total float64
	for _, m := range z {
		total += m
	}
	return total
}

// Scale returns a copy with every zone multiplied by k
func (z ZoneMinutes) Scale(k float64) ZoneMinutes {
	var out ZoneMinutes
	for i, m := range z {
		out[i] = m * k
	}
	return out
}

// IsZero reports whether no minutes were recorded in any zone
func (z ZoneMinutes) IsZero() bool {
	return z.Total() == 0
}

// Sex selects the TRIMP weighting curve
type Sex string

const (
	SexUnspecified Sex = ""
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
)

// Profile holds athlete-specific physiology
type Profile struct {
	MaxHR     float64
	RestingHR float64
	Sex       Sex
	VO2Max    float64
}

// LoadMethod names the strategy that produced a load score
type LoadMethod string

const (
	MethodZones            LoadMethod = "zones"
	MethodZonesFromSamples LoadMethod = "zones_from_samples"
	MethodTRIMP            LoadMethod = "trimp"
	MethodRPE              LoadMethod = "rpe"
)

// RawWorkout is a completed workout as supplied by the data collaborator,
// before zones and load are derived.
type RawWorkout struct {
	ID          string
	Type        string
	StartTime   time.Time
	EndTime     time.Time
	Samples     []HeartRateSample
	ZoneMinutes *ZoneMinutes // explicit zone time, when the source reports it
	AvgHR       float64      // 0 when unknown
	RPE         float64      // 0 when not reported
}

// DurationSeconds returns the workout length, never negative
func (w RawWorkout) DurationSeconds() int {
	d := w.EndTime.Sub(w.StartTime)
	if d < 0 {
		return 0
	}
	return int(d.Seconds())
}

// WorkoutSummary is the immutable per-workout result of load scoring
type WorkoutSummary struct {
	ID              string
	Type            string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int
	ZoneMinutes     ZoneMinutes
	LoadScore       float64
	LoadMethod      LoadMethod
}

// DurationMinutes returns the workout duration in minutes, falling back to
// the start/end span when DurationSeconds is unset
func (w WorkoutSummary) DurationMinutes() float64 {
	if w.DurationSeconds > 0 {
		return float64(w.DurationSeconds) / 60.0
	}
	d := w.EndTime.Sub(w.StartTime)
	if d <= 0 {
		return 0
	}
	return d.Minutes()
}

// DailyMetric aggregates one calendar day of biometric signals.
// Optional fields are nil when no sample exists for that signal.
type DailyMetric struct {
	Date             string   // YYYY-MM-DD
	SleepMinutes     *float64 // total sleep attributed to this day
	RestingHeartRate *float64 // bpm
	HRVSDNN          *float64 // ms
}

// HasData reports whether any signal is present for the day
func (d DailyMetric) HasData() bool {
	return positive(d.SleepMinutes) || positive(d.RestingHeartRate) || positive(d.HRVSDNN)
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

// Status is the three-level readiness classification
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Baselines are rolling medians of each biometric signal
type Baselines struct {
	SleepMinutes     float64
	HRVSDNN          float64
	RestingHeartRate float64
}

// Breakdown records the inputs applied in a single recovery update.
// It is informational only and never read back by the model.
type Breakdown struct {
	ElapsedHours     float64
	Baselines        Baselines
	SleepModifier    float64
	HRVModifier      float64
	RHRModifier      float64
	LearningModifier float64
	LearningPhase    bool
	EffectiveRate    float64 // debt points per hour
	Recovered        float64
	AddedLoad        float64
	Stalled          bool // effective rate was zero; no ready time can be projected
}

// RecoveryState is an immutable snapshot of recovery debt
type RecoveryState struct {
	Timestamp              time.Time
	DebtScore              float64
	RecoveryHoursRemaining float64
	ReadyForHardTrainingAt *time.Time
	Status                 Status
	Breakdown              Breakdown
}
