package health

import (
	"math"
	"testing"
	"time"
)

func TestBuildDailyMetrics(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	sleep := []SleepSession{
		// 22:00 -> 06:00 ends on day2
		{StartTime: day1.Add(22 * time.Hour), EndTime: day2.Add(6 * time.Hour)},
		// afternoon nap on day2
		{StartTime: day2.Add(14 * time.Hour), EndTime: day2.Add(14*time.Hour + 30*time.Minute)},
		// inverted session ignored
		{StartTime: day2.Add(5 * time.Hour), EndTime: day2.Add(4 * time.Hour)},
	}
	rhr := []Sample{
		{Time: day1.Add(7 * time.Hour), Value: 52},
		{Time: day1.Add(9 * time.Hour), Value: 49},
		{Time: day2.Add(7 * time.Hour), Value: 0}, // ignored
	}
	hrv := []Sample{
		{Time: day2.Add(6 * time.Hour), Value: 60},
		{Time: day2.Add(7 * time.Hour), Value: 70},
	}

	metrics := BuildDailyMetrics(sleep, rhr, hrv, time.UTC)
	if len(metrics) != 2 {
		t.Fatalf("expected 2 days, got %d", len(metrics))
	}

	if metrics[0].Date != "2024-03-01" || metrics[1].Date != "2024-03-02" {
		t.Errorf("dates = %s, %s; want ascending 2024-03-01, 2024-03-02", metrics[0].Date, metrics[1].Date)
	}

	first := metrics[0]
	if first.SleepMinutes != nil {
		t.Errorf("day1 SleepMinutes = %v, want nil", *first.SleepMinutes)
	}
	if first.RestingHeartRate == nil || *first.RestingHeartRate != 49 {
		t.Errorf("day1 RestingHeartRate should be lowest reading 49")
	}
	if first.HRVSDNN != nil {
		t.Error("day1 HRVSDNN should be nil")
	}

	second := metrics[1]
	if second.SleepMinutes == nil || math.Abs(*second.SleepMinutes-510) > 0.001 {
		t.Errorf("day2 SleepMinutes should be 480+30=510")
	}
	if second.RestingHeartRate != nil {
		t.Error("day2 RestingHeartRate should be nil (zero reading ignored)")
	}
	if second.HRVSDNN == nil || math.Abs(*second.HRVSDNN-65) > 0.001 {
		t.Error("day2 HRVSDNN should be mean 65")
	}
}

func TestBuildDailyMetricsEmpty(t *testing.T) {
	metrics := BuildDailyMetrics(nil, nil, nil, nil)
	if len(metrics) != 0 {
		t.Errorf("expected no metrics, got %d", len(metrics))
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	ts := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)

	if got := DayKey(ts, nil); got != "2024-03-01" {
		t.Errorf("DayKey(UTC) = %q, want 2024-03-01", got)
	}
	if got := DayKey(ts, tokyo); got != "2024-03-02" {
		t.Errorf("DayKey(JST) = %q, want 2024-03-02", got)
	}
}

func TestDaysWithData(t *testing.T) {
	metrics := []DailyMetric{
		{Date: "2024-03-01", SleepMinutes: floatPtr(420)},
		{Date: "2024-03-02"},
		{Date: "2024-03-03", HRVSDNN: floatPtr(0)},
		{Date: "2024-03-04", RestingHeartRate: floatPtr(50)},
	}
	if got := DaysWithData(metrics); got != 2 {
		t.Errorf("DaysWithData() = %d, want 2", got)
	}
}

func TestMetricsThrough(t *testing.T) {
	metrics := []DailyMetric{
		{Date: "2024-03-01"},
		{Date: "2024-03-02"},
		{Date: "2024-03-04"},
	}

	tests := []struct {
		day  string
		want int
	}{
		{"2024-02-28", 0},
		{"2024-03-01", 1},
		{"2024-03-03", 2},
		{"2024-03-04", 3},
		{"2024-04-01", 3},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			if got := len(MetricsThrough(metrics, tt.day)); got != tt.want {
				t.Errorf("MetricsThrough(%s) len = %d, want %d", tt.day, got, tt.want)
			}
		})
	}
}

func TestZoneMinutes(t *testing.T) {
	z := ZoneMinutes{1, 2, 3, 4, 5}
	if z.Total() != 15 {
		t.Errorf("Total() = %v, want 15", z.Total())
	}
	scaled := z.Scale(2)
	if scaled.Total() != 30 || scaled[4] != 10 {
		t.Errorf("Scale(2) = %v", scaled)
	}
	if z[0] != 1 {
		t.Error("Scale should not modify the receiver")
	}
	if !(ZoneMinutes{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
}

func TestWorkoutDurations(t *testing.T) {
	start := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	raw := RawWorkout{StartTime: start, EndTime: start.Add(45 * time.Minute)}
	if raw.DurationSeconds() != 2700 {
		t.Errorf("RawWorkout.DurationSeconds() = %d, want 2700", raw.DurationSeconds())
	}
	inverted := RawWorkout{StartTime: start, EndTime: start.Add(-time.Minute)}
	if inverted.DurationSeconds() != 0 {
		t.Errorf("inverted workout duration = %d, want 0", inverted.DurationSeconds())
	}

	summary := WorkoutSummary{StartTime: start, EndTime: start.Add(30 * time.Minute)}
	if summary.DurationMinutes() != 30 {
		t.Errorf("DurationMinutes() fallback = %v, want 30", summary.DurationMinutes())
	}
	summary.DurationSeconds = 1200
	if summary.DurationMinutes() != 20 {
		t.Errorf("DurationMinutes() = %v, want 20", summary.DurationMinutes())
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
