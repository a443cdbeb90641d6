package analysis

import (
	"math"
	"strings"
	"time"

	"readiness/internal/health"
)

// EpocIntensity estimates the workout's intensity ratio. With zone data it
// is the minutes-weighted mean of the per-zone intensities, clamped to
// [MinIntensity, MaxIntensity]; otherwise it comes from the workout type.
func EpocIntensity(w health.WorkoutSummary, p EpocParams) float64 {
	total := 0.0
	weighted := 0.0
	for i, m := range w.ZoneMinutes {
		if m <= 0 {
			continue
		}
		total += m
		weighted += m * p.ZoneIntensity[i]
	}
	if total > 0 {
		return math.Max(p.MinIntensity, math.Min(p.MaxIntensity, weighted/total))
	}

	if v, ok := p.TypeIntensity[strings.ToLower(strings.TrimSpace(w.Type))]; ok {
		return v
	}
	return p.DefaultTypeIntensity
}

// EpocTotal = duration (min) * fInt * e^(a * intensity)
func EpocTotal(w health.WorkoutSummary, p EpocParams) float64 {
	duration := w.DurationMinutes()
	if duration <= 0 {
		return 0
	}
	return duration * p.FInt * math.Exp(p.A*EpocIntensity(w, p))
}

// EstimateEpocRecoveryAdded converts a workout's EPOC into hours of recovery:
// epoc / (VO2max * k). Non-positive VO2max or k yields 0.
func EstimateEpocRecoveryAdded(w health.WorkoutSummary, p EpocParams) float64 {
	if p.VO2Max <= 0 || p.K <= 0 {
		return 0
	}
	return EpocTotal(w, p) / (p.VO2Max * p.K)
}

// EstimateEpocRecoveryRemaining sums the un-recovered hours of every workout
// ending at or after since. Each workout decays independently by
// hoursSinceEnd * modifier and is floored at zero before summing.
func EstimateEpocRecoveryRemaining(workouts []health.WorkoutSummary, since, now time.Time, modifier float64, p EpocParams) float64 {
	var remaining float64
	for _, w := range workouts {
		if w.EndTime.Before(since) {
			continue
		}
		added := EstimateEpocRecoveryAdded(w, p)
		elapsed := math.Max(0, now.Sub(w.EndTime).Hours())
		remaining += math.Max(0, added-elapsed*modifier)
	}
	return remaining
}

// EstimateEpocRecoveryAddedSince sums recovery hours added by every workout
// ending at or after since
func EstimateEpocRecoveryAddedSince(workouts []health.WorkoutSummary, since time.Time, p EpocParams) float64 {
	var total float64
	for _, w := range workouts {
		if w.EndTime.Before(since) {
			continue
		}
		total += EstimateEpocRecoveryAdded(w, p)
	}
	return total
}
