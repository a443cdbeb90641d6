// Package report renders a recovery report for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"readiness/internal/health"
	"readiness/internal/service"
)

// Render lays out the report as of now
func Render(r *service.Report, now time.Time) string {
	sections := []string{
		titleStyle.Render("Recovery Readiness"),
		renderStatusCard(r, now),
		lipgloss.JoinHorizontal(lipgloss.Top, renderRateCard(r), "  ", renderModifierCard(r)),
		renderProjection(r),
		renderWorkouts(r),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func renderStatusCard(r *service.Report, now time.Time) string {
	s := r.State
	title := cardTitleStyle.Render("Status")

	badge := statusStyle(s.Status).Render(strings.ToUpper(string(s.Status)))

	ready := "now"
	switch {
	case s.Breakdown.Stalled:
		ready = "unknown (recovery stalled)"
	case s.ReadyForHardTrainingAt != nil:
		ready = fmt.Sprintf("%s (%s)",
			humanize.RelTime(*s.ReadyForHardTrainingAt, now, "ago", "from now"),
			s.ReadyForHardTrainingAt.In(now.Location()).Format("Mon Jan 2 15:04"))
	}

	lines := []string{
		badge,
		"",
		renderMetric("Recovery debt", fmt.Sprintf("%.1f", s.DebtScore)),
		renderMetric("Thresholds", fmt.Sprintf("%.0f / %.0f", r.YellowThreshold, r.RedThreshold)),
		renderMetric("Hours remaining", fmt.Sprintf("%.1f h", s.RecoveryHoursRemaining)),
		renderMetric("Ready for hard work", ready),
		renderMetric("EPOC recovery", fmt.Sprintf("%.1f h of %.1f h left", r.EpocRemaining, r.EpocAdded)),
	}
	if s.Breakdown.LearningPhase {
		lines = append(lines, "", mutedStyle.Render("Learning phase: baselines still forming"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func renderRateCard(r *service.Report) string {
	bd := r.State.Breakdown
	title := cardTitleStyle.Render("Debt Recovery Rate")

	lines := []string{
		renderMetric("Effective rate", fmt.Sprintf("%.2f /h", bd.EffectiveRate)),
		renderFactor("Sleep", bd.SleepModifier),
		renderFactor("HRV", bd.HRVModifier),
		renderFactor("Resting HR", bd.RHRModifier),
		renderFactor("Learning boost", bd.LearningModifier),
		"",
		renderMetric("Sleep baseline", formatBaseline(bd.Baselines.SleepMinutes, "min")),
		renderMetric("HRV baseline", formatBaseline(bd.Baselines.HRVSDNN, "ms")),
		renderMetric("RHR baseline", formatBaseline(bd.Baselines.RestingHeartRate, "bpm")),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func renderModifierCard(r *service.Report) string {
	m := r.Modifier
	title := cardTitleStyle.Render("Recovery Modifier")

	lines := []string{
		renderFactor("Overall", m.Modifier),
		renderFactor("Sleep", m.SleepFactor),
		renderFactor("HRV", m.HRVFactor),
		renderFactor("Resting HR", m.RHRFactor),
		renderFactor("Training stress", m.StressFactor),
		renderMetric("Recent load", fmt.Sprintf("%.0f", m.RecentLoad)),
		"",
		renderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", r.Fitness.CTL)),
		renderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", r.Fitness.ATL)),
		renderMetric("Form (TSB)", fmt.Sprintf("%.0f", r.Fitness.TSB)),
		mutedStyle.Render(r.FormDescription),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func renderProjection(r *service.Report) string {
	title := cardTitleStyle.Render("Debt Projection")

	if len(r.Projection) < 2 || r.Projection[0] == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No recovery debt"))
	}

	graph := asciigraph.Plot(r.Projection,
		asciigraph.Height(8),
		asciigraph.Width(50),
		asciigraph.Precision(0),
		asciigraph.Caption(fmt.Sprintf("next %d hours", len(r.Projection)-1)),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func renderWorkouts(r *service.Report) string {
	title := cardTitleStyle.Render("Recent Workouts")

	if len(r.Workouts) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No workouts"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-12s  %-16s  %8s  %6s  %-18s",
		"Date", "Type", "Duration", "Load", "Method"))

	rows := []string{header}

	// most recent first
	shown := 0
	for i := len(r.Workouts) - 1; i >= 0 && shown < service.RecentWorkoutsLimit; i-- {
		w := r.Workouts[i]
		rows = append(rows, fmt.Sprintf("%-12s  %-16s  %8s  %6.0f  %-18s",
			w.EndTime.Format("Mon Jan 02"),
			truncateName(w.Type, 16),
			formatDuration(w.DurationSeconds),
			w.LoadScore,
			w.LoadMethod,
		))
		shown++
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatBaseline(v float64, unit string) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f %s", v, unit)
}

func formatFactor(v float64) string {
	return fmt.Sprintf("x%.2f", v)
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// Brief is a single unstyled line for scripts and status bars
func Brief(r *service.Report, now time.Time) string {
	s := r.State
	line := fmt.Sprintf("%s debt=%.1f remaining=%.1fh", s.Status, s.DebtScore, s.RecoveryHoursRemaining)
	switch {
	case s.ReadyForHardTrainingAt != nil:
		line += " ready=" + s.ReadyForHardTrainingAt.In(now.Location()).Format(time.RFC3339)
	case s.Breakdown.Stalled:
		line += " ready=stalled"
	case s.Status == health.StatusGreen:
		line += " ready=now"
	}
	return line
}
