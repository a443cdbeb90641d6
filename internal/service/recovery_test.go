package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/health"
	"readiness/internal/ingest"
	"readiness/internal/logging"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func zoneWorkout(id string, endHour int, zm health.ZoneMinutes) health.RawWorkout {
	end := day.Add(time.Duration(endHour) * time.Hour)
	return health.RawWorkout{
		ID:          id,
		Type:        "running",
		StartTime:   end.Add(-time.Duration(zm.Total()) * time.Minute),
		EndTime:     end,
		ZoneMinutes: &zm,
	}
}

func newTestService(t *testing.T) *RecoveryService {
	t.Helper()
	svc, err := NewRecoveryService(analysis.DefaultParams(), health.Profile{MaxHR: 185, RestingHR: 50}, nil)
	if err != nil {
		t.Fatalf("NewRecoveryService() error = %v", err)
	}
	return svc
}

func TestNewRecoveryServiceRejectsInvalidParams(t *testing.T) {
	p := analysis.DefaultParams()
	p.Debt.BaseRatePerHour = 0

	if _, err := NewRecoveryService(p, health.Profile{}, nil); !errors.Is(err, analysis.ErrInvalidParams) {
		t.Errorf("error = %v, want ErrInvalidParams", err)
	}
}

func TestSummarizeOrdersByEndTime(t *testing.T) {
	svc := newTestService(t)

	summaries := svc.Summarize([]health.RawWorkout{
		zoneWorkout("late", 10, health.ZoneMinutes{0, 0, 0, 10, 0}),
		zoneWorkout("early", 8, health.ZoneMinutes{30, 0, 0, 0, 0}),
	})

	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != "early" || summaries[1].ID != "late" {
		t.Errorf("order = %s, %s; want early, late", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].LoadScore != 30 || summaries[1].LoadScore != 40 {
		t.Errorf("loads = %v, %v; want 30, 40", summaries[0].LoadScore, summaries[1].LoadScore)
	}
	if summaries[1].LoadMethod != health.MethodZones {
		t.Errorf("method = %q, want zones", summaries[1].LoadMethod)
	}
}

func TestReplay(t *testing.T) {
	svc := newTestService(t)
	workouts := svc.Summarize([]health.RawWorkout{
		zoneWorkout("b", 10, health.ZoneMinutes{0, 0, 0, 10, 0}),
		zoneWorkout("a", 8, health.ZoneMinutes{30, 0, 0, 0, 0}),
	})
	now := day.Add(12 * time.Hour)

	tests := []struct {
		name       string
		prev       health.RecoveryState
		workouts   []health.WorkoutSummary
		wantStates int
		wantDebt   float64
		wantStatus health.Status
	}{
		{
			// a lands at 30; b two hours later: 30-20+40 = 50; two more hours: 30
			name:       "empty timeline",
			workouts:   workouts,
			wantStates: 3,
			wantDebt:   30,
			wantStatus: health.StatusYellow,
		},
		{
			// a predates prev; b: 15-10+40 = 45; then 45-20 = 25
			name:       "previous state absorbs earlier workouts",
			prev:       health.RecoveryState{Timestamp: day.Add(9 * time.Hour), DebtScore: 15},
			workouts:   workouts,
			wantStates: 2,
			wantDebt:   25,
			wantStatus: health.StatusYellow,
		},
		{
			name:       "no workouts",
			prev:       health.RecoveryState{Timestamp: day, DebtScore: 50},
			wantStates: 1,
			wantDebt:   0,
			wantStatus: health.StatusGreen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states, err := svc.Replay(context.Background(), tt.prev, nil, tt.workouts, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(states) != tt.wantStates {
				t.Fatalf("got %d states, want %d", len(states), tt.wantStates)
			}
			final := states[len(states)-1]
			if math.Abs(final.DebtScore-tt.wantDebt) > 1e-9 {
				t.Errorf("final debt = %v, want %v", final.DebtScore, tt.wantDebt)
			}
			if final.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", final.Status, tt.wantStatus)
			}
			if !final.Timestamp.Equal(now) {
				t.Errorf("final timestamp = %v, want %v", final.Timestamp, now)
			}
		})
	}
}

func TestReplaySkipsFutureWorkouts(t *testing.T) {
	svc := newTestService(t)
	workouts := svc.Summarize([]health.RawWorkout{
		zoneWorkout("past", 8, health.ZoneMinutes{30, 0, 0, 0, 0}),
		zoneWorkout("future", 20, health.ZoneMinutes{0, 0, 0, 0, 60}),
	})

	states, err := svc.Replay(context.Background(), health.RecoveryState{}, nil, workouts, day.Add(9*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if final := states[len(states)-1]; math.Abs(final.DebtScore-20) > 1e-9 {
		t.Errorf("final debt = %v, want 20", final.DebtScore)
	}
}

func TestReplayCanceled(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Replay(ctx, health.RecoveryState{}, nil, nil, day)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestReplayLogsThroughContextLogger(t *testing.T) {
	svc := newTestService(t)
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug")
	if err != nil {
		t.Fatal(err)
	}
	ctx := logging.ContextWithLogger(context.Background(), logger)

	workouts := svc.Summarize([]health.RawWorkout{zoneWorkout("a", 8, health.ZoneMinutes{30, 0, 0, 0, 0})})
	if _, err := svc.Replay(ctx, health.RecoveryState{}, nil, workouts, day.Add(9*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "applied workout") {
		t.Errorf("expected debug record for applied workout, got %q", buf.String())
	}
}

func TestBuildReport(t *testing.T) {
	svc := newTestService(t)
	now := day.Add(12 * time.Hour)

	ds := &ingest.Dataset{
		Workouts: []health.RawWorkout{
			zoneWorkout("a", 8, health.ZoneMinutes{30, 0, 0, 0, 0}),
			zoneWorkout("b", 10, health.ZoneMinutes{0, 0, 0, 10, 0}),
			zoneWorkout("tomorrow", 36, health.ZoneMinutes{60, 0, 0, 0, 0}),
		},
	}

	r, err := svc.BuildReport(context.Background(), ds, now)
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}

	if len(r.Workouts) != 2 {
		t.Errorf("report should only include past workouts, got %d", len(r.Workouts))
	}
	if math.Abs(r.State.DebtScore-30) > 1e-9 {
		t.Errorf("debt = %v, want 30", r.State.DebtScore)
	}
	if len(r.History) != 3 {
		t.Errorf("history length = %d, want 3", len(r.History))
	}
	if len(r.Projection) != ProjectionHours+1 || r.Projection[0] != r.State.DebtScore {
		t.Errorf("projection should start at current debt and span %d hours", ProjectionHours)
	}
	if r.Projection[len(r.Projection)-1] != 0 {
		t.Errorf("projection should reach zero within %d hours", ProjectionHours)
	}
	if r.EpocAdded <= 0 || r.EpocRemaining <= 0 || r.EpocRemaining > r.EpocAdded {
		t.Errorf("EPOC added %v remaining %v", r.EpocAdded, r.EpocRemaining)
	}
	if r.Modifier.RecentLoad != 70 {
		t.Errorf("recent load = %v, want 70", r.Modifier.RecentLoad)
	}
	if r.Fitness.CTL <= 0 || r.FormDescription == "" {
		t.Errorf("fitness not computed: %+v %q", r.Fitness, r.FormDescription)
	}
	if r.YellowThreshold != 20 || r.RedThreshold != 80 {
		t.Errorf("thresholds = %v/%v, want 20/80", r.YellowThreshold, r.RedThreshold)
	}
}

func TestBuildReportEmptyDataset(t *testing.T) {
	svc := newTestService(t)

	r, err := svc.BuildReport(context.Background(), nil, day)
	if err != nil {
		t.Fatal(err)
	}
	if r.State.DebtScore != 0 || r.State.Status != health.StatusGreen {
		t.Errorf("empty dataset should be green with no debt, got %+v", r.State)
	}
	if r.Modifier.Modifier != 1 {
		t.Errorf("modifier without data = %v, want 1", r.Modifier.Modifier)
	}
}
