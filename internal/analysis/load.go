package analysis

import (
	"math"
	"strings"

	"readiness/internal/health"
)

// LoadInputs carries whatever a workout source can provide. Fields left at
// their zero value are treated as unavailable.
type LoadInputs struct {
	ZoneMinutes     *health.ZoneMinutes
	Samples         []health.HeartRateSample
	MaxHR           float64
	RestingHR       float64
	AvgHR           float64
	DurationMinutes float64
	Sex             health.Sex
	RPE             float64 // 1-10, 0 means unreported
	WorkoutType     string
}

// LoadResult is the scored load and the method that produced it
type LoadResult struct {
	LoadScore   float64
	ZoneMinutes health.ZoneMinutes
	Method      health.LoadMethod
}

// ScoreWorkoutLoad picks the richest available method, in order:
// explicit zone minutes, zones derived from samples, TRIMP, then RPE.
func ScoreWorkoutLoad(in LoadInputs, p LoadParams) LoadResult {
	switch {
	case in.ZoneMinutes != nil:
		return LoadResult{
			LoadScore:   ZoneLoad(*in.ZoneMinutes, p.ZoneWeights),
			ZoneMinutes: *in.ZoneMinutes,
			Method:      health.MethodZones,
		}

	case len(in.Samples) > 0 && in.MaxHR > 0:
		zm := ClassifyZones(in.Samples, in.MaxHR, p.Zones)
		return LoadResult{
			LoadScore:   ZoneLoad(zm, p.ZoneWeights),
			ZoneMinutes: zm,
			Method:      health.MethodZonesFromSamples,
		}

	case in.AvgHR > 0 && in.RestingHR > 0 && in.MaxHR > 0:
		return LoadResult{
			LoadScore: TRIMP(in.DurationMinutes, in.AvgHR, in.RestingHR, in.MaxHR, p.trimpCoefficients(in.Sex)),
			Method:    health.MethodTRIMP,
		}

	default:
		return LoadResult{
			LoadScore: RPELoad(in.DurationMinutes, in.RPE, in.WorkoutType, p),
			Method:    health.MethodRPE,
		}
	}
}

// ZoneLoad is the weighted sum of minutes per zone. Negative minutes are
// treated as zero.
func ZoneLoad(zm health.ZoneMinutes, weights [5]float64) float64 {
	var load float64
	for i, m := range zm {
		if m > 0 {
			load += m * weights[i]
		}
	}
	return load
}

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * i * C1 * e^(C2 * i)
// where i is the heart rate reserve ratio clamped to [0, 1]
func TRIMP(durationMin, avgHR, restingHR, maxHR float64, c TRIMPCoefficients) float64 {
	if durationMin <= 0 {
		return 0
	}

	hrReserve := maxHR - restingHR
	if hrReserve <= 0 {
		return 0
	}

	hrRatio := (avgHR - restingHR) / hrReserve
	if hrRatio < 0 {
		hrRatio = 0
	}
	if hrRatio > 1 {
		hrRatio = 1
	}

	return durationMin * hrRatio * c.C1 * math.Exp(c.C2*hrRatio)
}

// RPELoad scores a workout from perceived exertion:
// duration (min) * (RPE / 10) * 10 * sport multiplier
func RPELoad(durationMin, rpe float64, workoutType string, p LoadParams) float64 {
	if durationMin <= 0 {
		return 0
	}
	if rpe <= 0 {
		rpe = p.DefaultRPE
	}
	rpe = math.Max(1, math.Min(10, rpe))

	return durationMin * (rpe / 10) * 10 * p.SportMultiplier(workoutType)
}

// SportMultiplier looks up the lower-cased workout type, falling back to the
// default multiplier
func (p LoadParams) SportMultiplier(workoutType string) float64 {
	if m, ok := p.SportMultipliers[strings.ToLower(strings.TrimSpace(workoutType))]; ok {
		return m
	}
	return p.DefaultSportMultiplier
}

func (p LoadParams) trimpCoefficients(sex health.Sex) TRIMPCoefficients {
	if sex == health.SexFemale {
		return p.TRIMPFemale
	}
	return p.TRIMPMale
}

// SummarizeWorkout derives zone minutes and load for a completed workout
func SummarizeWorkout(raw health.RawWorkout, profile health.Profile, p LoadParams) health.WorkoutSummary {
	duration := raw.DurationSeconds()
	if duration == 0 && len(raw.Samples) > 0 {
		duration = int(sampleMinutes(raw.Samples) * 60)
	}

	result := ScoreWorkoutLoad(LoadInputs{
		ZoneMinutes:     raw.ZoneMinutes,
		Samples:         raw.Samples,
		MaxHR:           profile.MaxHR,
		RestingHR:       profile.RestingHR,
		AvgHR:           raw.AvgHR,
		DurationMinutes: float64(duration) / 60.0,
		Sex:             profile.Sex,
		RPE:             raw.RPE,
		WorkoutType:     raw.Type,
	}, p)

	return health.WorkoutSummary{
		ID:              raw.ID,
		Type:            raw.Type,
		StartTime:       raw.StartTime,
		EndTime:         raw.EndTime,
		DurationSeconds: duration,
		ZoneMinutes:     result.ZoneMinutes,
		LoadScore:       result.LoadScore,
		LoadMethod:      result.Method,
	}
}
