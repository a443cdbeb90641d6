package analysis

import (
	"math"
	"time"

	"readiness/internal/health"
)

// ClassifyStatus maps debt onto green/yellow/red. Thresholds are inclusive
// upper bounds: debt == yellowMax is still green.
func ClassifyStatus(debt, yellowMax, redMax float64) health.Status {
	switch {
	case debt <= yellowMax:
		return health.StatusGreen
	case debt <= redMax:
		return health.StatusYellow
	default:
		return health.StatusRed
	}
}

// AdvanceRecoveryState decays the previous debt over the time elapsed until
// now, then adds the load of newWorkout if one is given.
//
// Modifiers are recomputed from metrics (ascending by date) on every call.
// A zero previous timestamp is an empty timeline and decays nothing.
func AdvanceRecoveryState(prev health.RecoveryState, metrics []health.DailyMetric, newWorkout *health.WorkoutSummary, now time.Time, p DebtParams) health.RecoveryState {
	var elapsed float64
	if !prev.Timestamp.IsZero() {
		elapsed = math.Max(0, now.Sub(prev.Timestamp).Hours())
	}

	bd := recoveryRate(metrics, p)
	bd.ElapsedHours = elapsed

	bd.Recovered = elapsed * bd.EffectiveRate
	debt := math.Max(0, prev.DebtScore-bd.Recovered)

	if newWorkout != nil {
		bd.AddedLoad = math.Max(0, newWorkout.LoadScore)
		debt += bd.AddedLoad
	}

	state := health.RecoveryState{
		Timestamp: now,
		DebtScore: debt,
		Status:    ClassifyStatus(debt, p.YellowMax, p.RedMax),
	}

	remaining := math.Max(0, debt-p.YellowMax)
	switch {
	case remaining == 0:
	case bd.EffectiveRate <= 0:
		bd.Stalled = true
	default:
		hours := remaining / bd.EffectiveRate
		state.RecoveryHoursRemaining = hours
		// beyond time.Duration's range the ready time is left undefined
		if wait := hours * float64(time.Hour); wait < math.MaxInt64 {
			readyAt := now.Add(time.Duration(wait))
			state.ReadyForHardTrainingAt = &readyAt
		}
	}

	state.Breakdown = bd
	return state
}

// recoveryRate derives the effective hourly rate and its modifiers from the
// latest metric against the rolling baselines
func recoveryRate(metrics []health.DailyMetric, p DebtParams) health.Breakdown {
	bd := health.Breakdown{
		Baselines:        ComputeBaselines(metrics, p.BaselineDays),
		SleepModifier:    1,
		HRVModifier:      1,
		RHRModifier:      1,
		LearningModifier: 1,
	}

	if len(metrics) > 0 {
		latest := metrics[len(metrics)-1]
		if r, ok := ratio(latest.SleepMinutes, bd.Baselines.SleepMinutes); ok {
			bd.SleepModifier = p.Sleep.Modifier(r)
		}
		if r, ok := ratio(latest.HRVSDNN, bd.Baselines.HRVSDNN); ok {
			bd.HRVModifier = p.HRV.Modifier(r)
		}
		if r, ok := ratio(latest.RestingHeartRate, bd.Baselines.RestingHeartRate); ok {
			bd.RHRModifier = p.RHR.Modifier(r)
		}
	}

	if days := health.DaysWithData(metrics); days > 0 && days < p.LearningPhaseDays {
		bd.LearningPhase = true
		bd.LearningModifier = p.LearningBoost
	}

	bd.EffectiveRate = p.BaseRatePerHour * bd.SleepModifier * bd.HRVModifier * bd.RHRModifier * bd.LearningModifier
	return bd
}

// Modifier applies the gate to a value/baseline ratio
func (g SignalGate) Modifier(r float64) float64 {
	if g.LowerIsBetter {
		switch {
		case r <= g.GoodRatio:
			return g.GoodModifier
		case r >= g.PoorRatio:
			return g.PoorModifier
		}
		return 1
	}
	switch {
	case r >= g.GoodRatio:
		return g.GoodModifier
	case r < g.PoorRatio:
		return g.PoorModifier
	}
	return 1
}

// DebtProjection returns debt at each whole hour from the state's timestamp
// (index 0) through hours, decaying at the state's effective rate.
func DebtProjection(state health.RecoveryState, hours int) []float64 {
	if hours < 0 {
		hours = 0
	}
	out := make([]float64, hours+1)
	for h := range out {
		out[h] = math.Max(0, state.DebtScore-float64(h)*state.Breakdown.EffectiveRate)
	}
	return out
}
