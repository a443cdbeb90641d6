package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"readiness/internal/analysis"
	"readiness/internal/health"
	"readiness/internal/ingest"
	"readiness/internal/logging"
)

// RecoveryService runs the recovery engine over an ingested dataset
type RecoveryService struct {
	params  analysis.Params
	profile health.Profile
	logger  *slog.Logger
}

// NewRecoveryService creates a recovery service. Params are validated once
// here so the analysis calls can assume a sane parameter set.
func NewRecoveryService(params analysis.Params, profile health.Profile, logger *slog.Logger) (*RecoveryService, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RecoveryService{params: params, profile: profile, logger: logger}, nil
}

// Report contains everything needed to render the recovery summary
type Report struct {
	State   health.RecoveryState
	History []health.RecoveryState

	// Workouts ending at or before the report time, most recent last
	Workouts []health.WorkoutSummary

	// EPOC recovery hours
	EpocAdded     float64
	EpocRemaining float64

	Modifier analysis.RecoveryModifier

	Fitness         analysis.FitnessMetrics
	FormDescription string

	// Hourly debt from State.Timestamp, index 0 is now
	Projection []float64

	YellowThreshold float64
	RedThreshold    float64
}

// Summarize scores raw workouts and orders them by end time
func (s *RecoveryService) Summarize(raws []health.RawWorkout) []health.WorkoutSummary {
	out := make([]health.WorkoutSummary, 0, len(raws))
	for _, raw := range raws {
		out = append(out, analysis.SummarizeWorkout(raw, s.profile, s.params.Load))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndTime.Before(out[j].EndTime)
	})
	return out
}

// Replay applies workouts to prev in end-time order, each at its end time
// with the metrics known through that day, then advances to now. Day keys
// use now's location. Workouts ending at or before prev's timestamp are
// already part of prev and skipped, as are workouts ending after now.
//
// The returned slice holds a snapshot per applied update; the last entry is
// the state at now.
func (s *RecoveryService) Replay(ctx context.Context, prev health.RecoveryState, metrics []health.DailyMetric, workouts []health.WorkoutSummary, now time.Time) ([]health.RecoveryState, error) {
	logger := logging.FromContext(ctx, s.logger)
	loc := now.Location()

	ordered := make([]health.WorkoutSummary, len(workouts))
	copy(ordered, workouts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EndTime.Before(ordered[j].EndTime)
	})

	states := make([]health.RecoveryState, 0, len(ordered)+1)
	state := prev
	for i := range ordered {
		if err := ctx.Err(); err != nil {
			return states, err
		}
		w := ordered[i]
		if !prev.Timestamp.IsZero() && !w.EndTime.After(prev.Timestamp) {
			logger.Debug("skipping workout already in previous state", "id", w.ID, "end", w.EndTime)
			continue
		}
		if w.EndTime.After(now) {
			logger.Debug("skipping workout ending after report time", "id", w.ID, "end", w.EndTime)
			continue
		}

		known := health.MetricsThrough(metrics, health.DayKey(w.EndTime, loc))
		state = analysis.AdvanceRecoveryState(state, known, &w, w.EndTime, s.params.Debt)
		states = append(states, state)

		logger.Debug("applied workout",
			"id", w.ID,
			"type", w.Type,
			"method", w.LoadMethod,
			"load", w.LoadScore,
			"debt", state.DebtScore,
			"status", state.Status)
	}

	if err := ctx.Err(); err != nil {
		return states, err
	}
	known := health.MetricsThrough(metrics, health.DayKey(now, loc))
	state = analysis.AdvanceRecoveryState(state, known, nil, now, s.params.Debt)
	states = append(states, state)

	if state.Breakdown.Stalled {
		logger.Warn("recovery rate is zero, debt will not decay", "debt", state.DebtScore)
	}
	return states, nil
}

// BuildReport summarizes a dataset as of now
func (s *RecoveryService) BuildReport(ctx context.Context, ds *ingest.Dataset, now time.Time) (*Report, error) {
	if ds == nil {
		ds = &ingest.Dataset{}
	}
	loc := ds.Location
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	logger := logging.FromContext(ctx, s.logger)

	all := s.Summarize(ds.Workouts)
	past := all[:sort.Search(len(all), func(i int) bool {
		return all[i].EndTime.After(now)
	})]

	history, err := s.Replay(ctx, ds.Previous, ds.Metrics, past, now)
	if err != nil {
		return nil, fmt.Errorf("replaying recovery timeline: %w", err)
	}

	r := &Report{
		State:           history[len(history)-1],
		History:         history,
		Workouts:        past,
		YellowThreshold: s.params.Debt.YellowMax,
		RedThreshold:    s.params.Debt.RedMax,
	}

	known := health.MetricsThrough(ds.Metrics, health.DayKey(now, loc))
	r.Modifier = analysis.ComputeRecoveryModifier(known, past, now, s.params.Modifier)

	since := now.Add(-EpocLookbackHours * time.Hour)
	r.EpocAdded = analysis.EstimateEpocRecoveryAddedSince(past, since, s.params.Epoc)
	r.EpocRemaining = analysis.EstimateEpocRecoveryRemaining(past, since, now, r.Modifier.Modifier, s.params.Epoc)

	r.Fitness = analysis.GetCurrentFitness(analysis.DailyLoadsFromWorkouts(past))
	r.FormDescription = analysis.FormDescription(r.Fitness.TSB)

	r.Projection = analysis.DebtProjection(r.State, ProjectionHours)

	logger.Info("recovery report built",
		"workouts", len(past),
		"days", len(known),
		"debt", r.State.DebtScore,
		"status", r.State.Status,
		"epoc_remaining_h", r.EpocRemaining)

	return r, nil
}
