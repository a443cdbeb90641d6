package analysis

import "readiness/internal/health"

// ClassifyZones buckets heart rate samples into minutes per zone.
//
// Each sample is assigned whole to the highest zone whose floor its bpm
// reaches; samples below the z1 floor are dropped. Point samples (zero or
// negative duration) count as one minute. A zero ZoneTable uses the defaults.
func ClassifyZones(samples []health.HeartRateSample, maxHR float64, zones ZoneTable) health.ZoneMinutes {
	var result health.ZoneMinutes
	if len(samples) == 0 || maxHR <= 0 {
		return result
	}
	zones = zones.orDefault()

	var floors [health.NumZones]float64
	for i, z := range zones {
		floors[i] = z.Lower * maxHR
	}

	for _, s := range samples {
		minutes := s.EndTime.Sub(s.StartTime).Minutes()
		if minutes <= 0 {
			minutes = 1
		}
		for i := health.NumZones - 1; i >= 0; i-- {
			if s.BPM >= floors[i] {
				result[i] += minutes
				break
			}
		}
	}

	return result
}

// sampleMinutes sums sample durations the same way ClassifyZones does
func sampleMinutes(samples []health.HeartRateSample) float64 {
	var total float64
	for _, s := range samples {
		m := s.EndTime.Sub(s.StartTime).Minutes()
		if m <= 0 {
			m = 1
		}
		total += m
	}
	return total
}
