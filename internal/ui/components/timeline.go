package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/nexus/internal/common"
)

var (
	mutedColor   = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#64748B"}
	titleColor   = lipgloss.AdaptiveColor{Light: "#4338CA", Dark: "#818CF8"}
	borderColor  = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#334155"}
	successColor = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	warningColor = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
)

// agentColors gives each pipeline agent its own tag color
var agentColors = map[common.Agent]lipgloss.AdaptiveColor{
	common.AgentAlpha: {Light: "#0E7490", Dark: "#22D3EE"},
	common.AgentBeta:  {Light: "#7C3AED", Dark: "#A78BFA"},
	common.AgentGamma: {Light: "#B45309", Dark: "#FCD34D"},
	common.AgentDelta: {Light: "#BE185D", Dark: "#F472B6"},
}

// AgentTerminal renders the agent feed as a fixed-height terminal window
type AgentTerminal struct {
	Title  string
	Events []common.LogEvent
	Width  int
	Height int
	// Cursor is appended to the last line while a run is in flight
	Cursor string
}

// NewAgentTerminal creates a terminal panel
func NewAgentTerminal(title string, events []common.LogEvent, width, height int) *AgentTerminal {
	return &AgentTerminal{
		Title:  title,
		Events: events,
		Width:  width,
		Height: height,
	}
}

// Render renders the terminal panel
func (t *AgentTerminal) Render() string {
	content := []string{lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(t.Title), ""}

	if len(t.Events) == 0 {
		content = append(content, lipgloss.NewStyle().Foreground(mutedColor).Render("Awaiting input stream..."))
	} else {
		content = append(content, t.renderLines()...)
	}

	joined := lipgloss.JoinVertical(lipgloss.Left, content...)
	style := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor).Padding(0, 1)
	if t.Width > 0 {
		style = style.Width(t.Width)
	}
	return style.Render(joined)
}

// visible returns the newest events that fit the panel height
func (t *AgentTerminal) visible() []common.LogEvent {
	rows := t.Height - 4
	if t.Height <= 0 || rows >= len(t.Events) {
		return t.Events
	}
	if rows < 1 {
		rows = 1
	}
	return t.Events[len(t.Events)-rows:]
}

func (t *AgentTerminal) renderLines() []string {
	events := t.visible()
	lines := make([]string, 0, len(events))

	for i, ev := range events {
		ts := lipgloss.NewStyle().Foreground(mutedColor).Render("[" + ev.Timestamp + "]")

		tagColor, ok := agentColors[ev.Agent]
		if !ok {
			tagColor = mutedColor
		}
		tag := lipgloss.NewStyle().Foreground(tagColor).Bold(true).Render(fmt.Sprintf("%-5s", ev.Agent))

		action := ev.Action
		if i == len(events)-1 && t.Cursor != "" {
			action += " " + t.Cursor
		}

		lines = append(lines, strings.Join([]string{ts, tag, statusStyle(ev.Status).Render(action)}, " "))
	}
	return lines
}

func statusStyle(status common.Status) lipgloss.Style {
	switch status {
	case common.StatusComplete:
		return lipgloss.NewStyle().Foreground(successColor)
	case common.StatusError:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(warningColor)
	}
}
