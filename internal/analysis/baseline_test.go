package analysis

import (
	"testing"

	"readiness/internal/health"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{3, 1, 2}, 2},
		{"even averages centre", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.expected {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestMedianDoesNotSortInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 {
		t.Error("Median should not reorder its input")
	}
}

func TestComputeBaselines(t *testing.T) {
	metrics := []health.DailyMetric{
		{Date: "2024-03-01", SleepMinutes: floatPtr(100), HRVSDNN: floatPtr(10)},
		{Date: "2024-03-02", SleepMinutes: floatPtr(400), RestingHeartRate: floatPtr(0)},
		{Date: "2024-03-03", SleepMinutes: floatPtr(420), HRVSDNN: floatPtr(50), RestingHeartRate: floatPtr(52)},
		{Date: "2024-03-04", SleepMinutes: floatPtr(440), HRVSDNN: floatPtr(70), RestingHeartRate: floatPtr(48)},
	}

	all := ComputeBaselines(metrics, 28)
	if all.SleepMinutes != 410 {
		t.Errorf("SleepMinutes baseline = %v, want 410", all.SleepMinutes)
	}
	if all.HRVSDNN != 50 {
		t.Errorf("HRVSDNN baseline = %v, want 50", all.HRVSDNN)
	}
	// zero reading on 03-02 is ignored
	if all.RestingHeartRate != 50 {
		t.Errorf("RestingHeartRate baseline = %v, want 50", all.RestingHeartRate)
	}

	windowed := ComputeBaselines(metrics, 2)
	if windowed.SleepMinutes != 430 {
		t.Errorf("2-day SleepMinutes baseline = %v, want 430", windowed.SleepMinutes)
	}
	if windowed.HRVSDNN != 60 {
		t.Errorf("2-day HRVSDNN baseline = %v, want 60", windowed.HRVSDNN)
	}

	if empty := ComputeBaselines(nil, 28); empty != (health.Baselines{}) {
		t.Errorf("empty history baselines = %+v, want zero", empty)
	}
}
