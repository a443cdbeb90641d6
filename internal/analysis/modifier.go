package analysis

import (
	"math"
	"time"

	"readiness/internal/health"
)

// RecoveryModifier is the displayed recovery multiplier and its parts.
// It is separate from the hourly debt-rate modifiers in AdvanceRecoveryState.
type RecoveryModifier struct {
	Modifier     float64
	SleepFactor  float64
	HRVFactor    float64
	RHRFactor    float64
	StressFactor float64
	RecentLoad   float64
	Baselines    health.Baselines
}

// ComputeRecoveryModifier averages sleep, HRV, RHR and training-stress
// factors. Biometric factors compare the latest entry with the median of the
// last WindowEntries entries; stress comes from load of workouts that ended
// within StressWindowDays before now.
func ComputeRecoveryModifier(metrics []health.DailyMetric, workouts []health.WorkoutSummary, now time.Time, p ModifierParams) RecoveryModifier {
	recent := lastN(metrics, p.WindowEntries)
	m := RecoveryModifier{
		Baselines:   ComputeBaselines(recent, len(recent)),
		SleepFactor: 1,
		HRVFactor:   1,
		RHRFactor:   1,
	}

	if len(recent) > 0 {
		latest := recent[len(recent)-1]
		if r, ok := ratio(latest.SleepMinutes, m.Baselines.SleepMinutes); ok {
			m.SleepFactor = sleepFactor(r*100, p)
		}
		if r, ok := ratio(latest.HRVSDNN, m.Baselines.HRVSDNN); ok {
			m.HRVFactor = hrvFactor(r, p)
		}
		if r, ok := ratio(latest.RestingHeartRate, m.Baselines.RestingHeartRate); ok {
			m.RHRFactor = rhrFactor(r, p)
		}
	}

	m.RecentLoad = RecentLoad(workouts, now, time.Duration(p.StressWindowDays)*24*time.Hour)
	m.StressFactor = StressFactor(m.RecentLoad, p)

	m.Modifier = (m.SleepFactor + m.HRVFactor + m.RHRFactor + m.StressFactor) / 4
	return m
}

func sleepFactor(score float64, p ModifierParams) float64 {
	switch {
	case score >= p.SleepExcellentPct:
		return p.SleepExcellent
	case score >= p.SleepGoodPct:
		return p.SleepGood
	case score < p.SleepPoorPct:
		return p.SleepPoor
	default:
		return 1
	}
}

func hrvFactor(r float64, p ModifierParams) float64 {
	switch {
	case r >= p.HRVHighRatio:
		return p.HRVHigh
	case r <= p.HRVLowRatio:
		return p.HRVLow
	default:
		return 1
	}
}

func rhrFactor(r float64, p ModifierParams) float64 {
	switch {
	case r <= p.RHRLowRatio:
		return p.RHRLow
	case r >= p.RHRHighRatio:
		return p.RHRHigh
	default:
		return 1
	}
}

// RecentLoad sums load of workouts ending in (now-window, now]
func RecentLoad(workouts []health.WorkoutSummary, now time.Time, window time.Duration) float64 {
	cutoff := now.Add(-window)
	var total float64
	for _, w := range workouts {
		if w.EndTime.After(cutoff) && !w.EndTime.After(now) {
			total += w.LoadScore
		}
	}
	return total
}

// StressFactor = clamp(1 - recentLoad/cap, floor, 1)
func StressFactor(recentLoad float64, p ModifierParams) float64 {
	if p.StressLoadCap <= 0 {
		return 1
	}
	return math.Max(p.StressFloor, math.Min(1, 1-recentLoad/p.StressLoadCap))
}
