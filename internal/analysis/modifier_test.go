package analysis

import (
	"math"
	"testing"
	"time"

	"readiness/internal/health"
)

func TestComputeRecoveryModifier(t *testing.T) {
	p := DefaultModifierParams()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		metrics  []health.DailyMetric
		workouts []health.WorkoutSummary
		sleep    float64
		hrv      float64
		rhr      float64
		stress   float64
		modifier float64
	}{
		{"no data is neutral", nil, nil, 1, 1, 1, 1, 1},
		{
			"excellent day, no training",
			history(6, 450, 60, 50, health.DailyMetric{SleepMinutes: floatPtr(560), HRVSDNN: floatPtr(64), RestingHeartRate: floatPtr(47)}),
			nil,
			1.5, 1.2, 1.1, 1,
			1.2,
		},
		{
			"poor day after heavy block",
			history(6, 450, 60, 50, health.DailyMetric{SleepMinutes: floatPtr(300), HRVSDNN: floatPtr(48), RestingHeartRate: floatPtr(53)}),
			[]health.WorkoutSummary{
				{EndTime: now.Add(-20 * time.Hour), LoadScore: 150},
				{EndTime: now.Add(-50 * time.Hour), LoadScore: 150},
			},
			0.5, 0.2, 0.8, 0.2,
			0.425,
		},
		{
			"neutral biometrics, moderate load",
			history(6, 450, 60, 50, health.DailyMetric{SleepMinutes: floatPtr(400), HRVSDNN: floatPtr(60), RestingHeartRate: floatPtr(50)}),
			[]health.WorkoutSummary{
				{EndTime: now.Add(-10 * time.Hour), LoadScore: 100},
				{EndTime: now.Add(-96 * time.Hour), LoadScore: 500}, // outside window
				{EndTime: now.Add(2 * time.Hour), LoadScore: 500},   // in the future
			},
			1, 1, 1, 0.6,
			0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeRecoveryModifier(tt.metrics, tt.workouts, now, p)
			check := func(label string, got, want float64) {
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %v, want %v", label, got, want)
				}
			}
			check("SleepFactor", m.SleepFactor, tt.sleep)
			check("HRVFactor", m.HRVFactor, tt.hrv)
			check("RHRFactor", m.RHRFactor, tt.rhr)
			check("StressFactor", m.StressFactor, tt.stress)
			check("Modifier", m.Modifier, tt.modifier)
		})
	}
}

func TestComputeRecoveryModifierUsesShortWindow(t *testing.T) {
	p := DefaultModifierParams()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	// 20 short nights followed by 7 normal ones: only the last 7 form the baseline
	var metrics []health.DailyMetric
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 27; i++ {
		sleep := 300.0
		if i >= 20 {
			sleep = 450
		}
		metrics = append(metrics, health.DailyMetric{
			Date:         start.AddDate(0, 0, i).Format("2006-01-02"),
			SleepMinutes: floatPtr(sleep),
		})
	}

	m := ComputeRecoveryModifier(metrics, nil, now, p)
	if m.Baselines.SleepMinutes != 450 {
		t.Errorf("sleep baseline = %v, want 450 from the last 7 entries", m.Baselines.SleepMinutes)
	}
	if m.SleepFactor != p.SleepGood {
		t.Errorf("SleepFactor = %v, want %v", m.SleepFactor, p.SleepGood)
	}
}

func TestStressFactor(t *testing.T) {
	p := DefaultModifierParams()

	tests := []struct {
		load     float64
		expected float64
	}{
		{0, 1},
		{125, 0.5},
		{200, 0.2},
		{1000, 0.2},
		{-50, 1},
	}
	for _, tt := range tests {
		if got := StressFactor(tt.load, p); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("StressFactor(%v) = %v, want %v", tt.load, got, tt.expected)
		}
	}
}
