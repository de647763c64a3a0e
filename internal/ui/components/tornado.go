package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/nexus/internal/common"
)

// TornadoChart renders runway sensitivity bars around a shared center line.
// Downside extends left and upside extends right.
type TornadoChart struct {
	Points     []common.TornadoPoint
	HalfWidth  int
	LabelWidth int
}

// NewTornadoChart creates a tornado chart
func NewTornadoChart(points []common.TornadoPoint, halfWidth int) *TornadoChart {
	return &TornadoChart{
		Points:     points,
		HalfWidth:  halfWidth,
		LabelWidth: 14,
	}
}

// Render renders one line per point, scaled to the largest swing
func (c *TornadoChart) Render() string {
	if len(c.Points) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("No sensitivity data")
	}

	half := c.HalfWidth
	if half <= 0 {
		half = 10
	}

	scale := c.maxSwing()
	lines := make([]string, 0, len(c.Points))
	for _, p := range c.Points {
		neg := cells(p.ImpactNegative, scale, half)
		pos := cells(p.ImpactPositive, scale, half)

		left := strings.Repeat(" ", half-neg) + lipgloss.NewStyle().Foreground(errorColor).Render(strings.Repeat("█", neg))
		right := lipgloss.NewStyle().Foreground(successColor).Render(strings.Repeat("█", pos)) + strings.Repeat(" ", half-pos)

		label := p.Variable
		if len([]rune(label)) > c.LabelWidth {
			label = string([]rune(label)[:c.LabelWidth-1]) + "…"
		}

		lines = append(lines, fmt.Sprintf("%-*s %s│%s %+.1f/%+.1f mo",
			c.LabelWidth, label, left, right, p.ImpactNegative, p.ImpactPositive))
	}
	return strings.Join(lines, "\n")
}

func (c *TornadoChart) maxSwing() float64 {
	var m float64
	for _, p := range c.Points {
		m = math.Max(m, math.Abs(p.ImpactNegative))
		m = math.Max(m, math.Abs(p.ImpactPositive))
	}
	return m
}

func cells(v, scale float64, width int) int {
	if scale == 0 {
		return 0
	}
	n := int(math.Round(math.Abs(v) / scale * float64(width)))
	if n > width {
		n = width
	}
	return n
}
