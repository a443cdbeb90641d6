package analysis

import (
	"sort"

	"readiness/internal/health"
)

// Median returns the median of values, 0 for an empty slice.
// Even-length input averages the two central values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ComputeBaselines takes the median of each signal over the last window
// entries of an ascending history. Missing and zero readings are skipped.
func ComputeBaselines(metrics []health.DailyMetric, window int) health.Baselines {
	recent := lastN(metrics, window)

	var sleep, hrv, rhr []float64
	for _, m := range recent {
		if v, ok := value(m.SleepMinutes); ok {
			sleep = append(sleep, v)
		}
		if v, ok := value(m.HRVSDNN); ok {
			hrv = append(hrv, v)
		}
		if v, ok := value(m.RestingHeartRate); ok {
			rhr = append(rhr, v)
		}
	}

	return health.Baselines{
		SleepMinutes:     Median(sleep),
		HRVSDNN:          Median(hrv),
		RestingHeartRate: Median(rhr),
	}
}

// ratio returns latest/baseline, ok=false when either side is unusable
func ratio(latest *float64, baseline float64) (float64, bool) {
	v, ok := value(latest)
	if !ok || baseline <= 0 {
		return 0, false
	}
	return v / baseline, true
}

func value(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func lastN(metrics []health.DailyMetric, n int) []health.DailyMetric {
	if n <= 0 || len(metrics) <= n {
		return metrics
	}
	return metrics[len(metrics)-n:]
}
