package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ScoreBar renders a 0-100 score as a horizontal meter
type ScoreBar struct {
	Label      string
	Value      float64
	Width      int
	LabelWidth int
}

// NewScoreBar creates a score meter
func NewScoreBar(label string, value float64, width int) *ScoreBar {
	return &ScoreBar{
		Label:      label,
		Value:      value,
		Width:      width,
		LabelWidth: 12,
	}
}

// Render renders the meter
func (b *ScoreBar) Render() string {
	pct := b.Value / 100
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	width := b.Width
	if width <= 0 {
		width = 20
	}
	filledWidth := int(float64(width) * pct)

	filled := lipgloss.NewStyle().Foreground(scoreColor(b.Value)).Render(strings.Repeat("█", filledWidth))
	empty := lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Repeat("░", width-filledWidth))

	label := fmt.Sprintf("%-*s", b.LabelWidth, b.Label)
	return fmt.Sprintf("%s %s%s %3.0f", label, filled, empty, b.Value)
}

// StageProgress shows how many of the feed's stage events have arrived
type StageProgress struct {
	Width   int
	Current int
	Total   int
}

// NewStageProgress creates a stage progress bar
func NewStageProgress(width, current, total int) *StageProgress {
	return &StageProgress{Width: width, Current: current, Total: total}
}

// Render renders the progress bar
func (p *StageProgress) Render() string {
	if p.Total <= 0 {
		return ""
	}

	current := p.Current
	if current > p.Total {
		current = p.Total
	}

	filledWidth := p.Width * current / p.Total
	bar := lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(strings.Repeat("█", filledWidth)) +
		lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Repeat("░", p.Width-filledWidth))

	return fmt.Sprintf("%s %d/%d", bar, current, p.Total)
}

func scoreColor(v float64) lipgloss.AdaptiveColor {
	switch {
	case v >= 70:
		return successColor
	case v >= 40:
		return warningColor
	default:
		return errorColor
	}
}
