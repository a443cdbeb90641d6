package analysis

import (
	"sort"
	"time"

	"readiness/internal/health"
)

// DailyLoad represents summed workout load for a single day
type DailyLoad struct {
	Date time.Time
	Load float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// DailyLoadsFromWorkouts buckets workout load by the UTC day each workout ended
func DailyLoadsFromWorkouts(workouts []health.WorkoutSummary) []DailyLoad {
	loads := make([]DailyLoad, 0, len(workouts))
	for _, w := range workouts {
		loads = append(loads, DailyLoad{Date: w.EndTime.UTC(), Load: w.LoadScore})
	}
	return loads
}

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads, filling days
// without training with zero load. The input slice is not modified.
func CalculateFitnessTrend(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	sorted := make([]DailyLoad, len(dailyLoads))
	copy(sorted, dailyLoads)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (42.0 + 1.0)
	atlDecay := 2.0 / (7.0 + 1.0)

	loadByDay := make(map[string]float64)
	for _, dl := range sorted {
		loadByDay[dl.Date.UTC().Format("2006-01-02")] += dl.Load
	}

	startDate := sorted[0].Date.UTC().Truncate(24 * time.Hour)
	endDate := sorted[len(sorted)-1].Date.UTC().Truncate(24 * time.Hour)

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		load := loadByDay[d.Format("2006-01-02")]

		ctl += ctlDecay * (load - ctl)
		atl += atlDecay * (load - atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// GetCurrentFitness returns the most recent CTL/ATL/TSB values
func GetCurrentFitness(dailyLoads []DailyLoad) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads)
	if len(metrics) == 0 {
		return FitnessMetrics{}
	}
	return metrics[len(metrics)-1]
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
