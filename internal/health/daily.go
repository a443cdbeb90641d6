package health

import (
	"sort"
	"time"
)

// SleepSession is one contiguous sleep period
type SleepSession struct {
	StartTime time.Time
	EndTime   time.Time
}

// Sample is a timestamped scalar reading (resting HR, HRV)
type Sample struct {
	Time  time.Time
	Value float64
}

// DayKey returns the calendar day of t in loc as YYYY-MM-DD
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// BuildDailyMetrics aggregates raw samples into one DailyMetric per calendar
// day, sorted ascending by date.
//
// Sleep is attributed to the day the session ends (the wake day) and summed.
// Resting HR takes the lowest same-day reading, HRV the mean. Non-positive
// readings are ignored.
func BuildDailyMetrics(sleep []SleepSession, restingHR, hrv []Sample, loc *time.Location) []DailyMetric {
	days := make(map[string]*DailyMetric)
	get := func(key string) *DailyMetric {
		d, ok := days[key]
		if !ok {
			d = &DailyMetric{Date: key}
			days[key] = d
		}
		return d
	}

	for _, s := range sleep {
		mins := s.EndTime.Sub(s.StartTime).Minutes()
		if mins <= 0 {
			continue
		}
		d := get(DayKey(s.EndTime, loc))
		if d.SleepMinutes == nil {
			d.SleepMinutes = new(float64)
		}
		*d.SleepMinutes += mins
	}

	for _, s := range restingHR {
		if s.Value <= 0 {
			continue
		}
		d := get(DayKey(s.Time, loc))
		if d.RestingHeartRate == nil || s.Value < *d.RestingHeartRate {
			v := s.Value
			d.RestingHeartRate = &v
		}
	}

	hrvSums := make(map[string]float64)
	hrvCounts := make(map[string]int)
	for _, s := range hrv {
		if s.Value <= 0 {
			continue
		}
		key := DayKey(s.Time, loc)
		get(key)
		hrvSums[key] += s.Value
		hrvCounts[key]++
	}
	for key, sum := range hrvSums {
		mean := sum / float64(hrvCounts[key])
		days[key].HRVSDNN = &mean
	}

	result := make([]DailyMetric, 0, len(days))
	for _, d := range days {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// DaysWithData counts entries carrying at least one signal
func DaysWithData(metrics []DailyMetric) int {
	n := 0
	for _, m := range metrics {
		if m.HasData() {
			n++
		}
	}
	return n
}

// MetricsThrough returns the prefix of an ascending metric history whose
// dates are on or before day
func MetricsThrough(metrics []DailyMetric, day string) []DailyMetric {
	i := sort.Search(len(metrics), func(i int) bool {
		return metrics[i].Date > day
	})
	return metrics[:i]
}
