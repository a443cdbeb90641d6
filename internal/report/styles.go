package report

import (
	"github.com/charmbracelet/lipgloss"

	"readiness/internal/health"
)

// Colors
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	greenColor   = lipgloss.Color("#10B981")
	amberColor   = lipgloss.Color("#F59E0B")
	redColor     = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	textColor    = lipgloss.Color("#F9FAFB") // Light gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(22)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	boostStyle = lipgloss.NewStyle().
			Foreground(greenColor)

	dragStyle = lipgloss.NewStyle().
			Foreground(redColor)
)

// statusStyle colors a readiness status as a badge
func statusStyle(s health.Status) lipgloss.Style {
	color := greenColor
	switch s {
	case health.StatusYellow:
		color = amberColor
	case health.StatusRed:
		color = redColor
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Padding(0, 1)
}

// renderMetric renders a label/value pair
func renderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// renderFactor renders a multiplier, green above 1 and red below
func renderFactor(label string, v float64) string {
	style := metricValueStyle
	switch {
	case v > 1:
		style = boostStyle
	case v < 1:
		style = dragStyle
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		style.Render(formatFactor(v)),
	)
}
