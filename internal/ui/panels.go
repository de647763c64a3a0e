package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/emoji"
	"github.com/yildizm/nexus/internal/formatter"
	"github.com/yildizm/nexus/internal/ui/components"
)

// renderDossier renders every result panel. Panels stay hidden while the
// result is still the placeholder.
func renderDossier(r *common.AnalysisResult, width int, s *Styles) string {
	if r.IsPending() {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Header.Render(emoji.GetEmoji("pending")+" "+common.PendingText),
			"",
			s.Muted.Render("Submit a pitch to populate the dossier."),
		)
	}

	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	sections := []string{
		section(s, "thesis", "Investment Thesis", wrap.Render(r.InvestmentThesis)),
		section(s, "bear", "Bear Case", s.Warning.Width(width).Render(r.BearCase)),
		section(s, "founder", "Founder DNA", renderFounder(r, width, s)),
		section(s, "market", "Market Topology", renderMarket(r, wrap, s)),
		section(s, "financials", "Financial Health", renderFinancials(r, s)),
		section(s, "simulation", "Stress Simulations", renderSimulations(r, wrap, s)),
		section(s, "tornado", "Runway Sensitivity", components.NewTornadoChart(r.RiskTornado, max(width/4, 6)).Render()),
		section(s, "question", "Truth-Seeker Questions", renderQuestions(r, wrap)),
		renderConfidence(r, s),
	}
	return strings.Join(sections, "\n\n")
}

func section(s *Styles, icon, title, body string) string {
	return s.Header.Render(emoji.GetEmoji(icon)+" "+title) + "\n" + body
}

func renderFounder(r *common.AnalysisResult, width int, s *Styles) string {
	barWidth := max(width-20, 10)
	var lines []string
	for _, p := range formatter.FounderRadar(r) {
		lines = append(lines, components.NewScoreBar(p.Axis, p.Value, barWidth).Render())
	}
	if signals := r.FounderMetrics.HighAgencySignal; len(signals) > 0 {
		lines = append(lines, s.Muted.Render("High agency: ")+strings.Join(signals, ", "))
	}
	return strings.Join(lines, "\n")
}

func renderMarket(r *common.AnalysisResult, wrap lipgloss.Style, s *Styles) string {
	m := r.MarketTopology
	lines := []string{
		fmt.Sprintf("%s %s", s.Muted.Render("Maturity:"), m.CategoryMaturity),
		fmt.Sprintf("%s %s", s.Muted.Render("TAM:"), m.TotalAddressableMarket),
		wrap.Render(s.Muted.Render("Regulatory cliff: ") + m.RegulatoryCliff),
	}
	if len(m.GhostCompetitors) > 0 {
		lines = append(lines, wrap.Render(s.Muted.Render("Ghost competitors: ")+strings.Join(m.GhostCompetitors, ", ")))
	}
	return strings.Join(lines, "\n")
}

func renderFinancials(r *common.AnalysisResult, s *Styles) string {
	f := r.Financials
	flag := func(flagged bool, text string) string {
		return lipgloss.NewStyle().Foreground(s.Theme.FlagColor(flagged)).Bold(flagged).Render(text)
	}

	return strings.Join([]string{
		fmt.Sprintf("%-16s %s", "Burn multiple", flag(formatter.BurnMultipleFlagged(f.BurnMultiple), fmt.Sprintf("%.1fx", f.BurnMultiple))),
		fmt.Sprintf("%-16s %s", "Rule of 40", flag(formatter.RuleOf40Flagged(f.RuleOf40), fmt.Sprintf("%.0f", f.RuleOf40))),
		fmt.Sprintf("%-16s %s", "Valuation", f.ValuationStatus),
		fmt.Sprintf("%-16s %.0f months", "Runway", f.RunwayMonths),
		fmt.Sprintf("%-16s %.1fx", "LTV/CAC", f.LtvCacRatio),
	}, "\n")
}

func renderSimulations(r *common.AnalysisResult, wrap lipgloss.Style, s *Styles) string {
	if len(r.Simulations) == 0 {
		return s.Muted.Render("No scenarios returned")
	}
	var lines []string
	for _, sim := range r.Simulations {
		outcome := lipgloss.NewStyle().Foreground(s.Theme.OutcomeColor(sim.Outcome)).Bold(true).Render(string(sim.Outcome))
		lines = append(lines, fmt.Sprintf("%s  %s  %.0f%% survival", sim.Name, outcome, sim.SurvivalRate))
		if sim.Description != "" {
			lines = append(lines, wrap.Render(s.Muted.Render("  "+sim.Description)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderQuestions(r *common.AnalysisResult, wrap lipgloss.Style) string {
	var lines []string
	for i, q := range r.TruthSeekerQuestions {
		lines = append(lines, wrap.Render(fmt.Sprintf("%d. %s", i+1, q)))
	}
	return strings.Join(lines, "\n")
}

func renderConfidence(r *common.AnalysisResult, s *Styles) string {
	c := r.ConfidenceIntervals
	return s.Muted.Render(fmt.Sprintf("%s Confidence: resilience %.0f%% • moat %.0f%% • exit probability %.1f%%",
		emoji.GetEmoji("confidence"), c.FounderResilience, c.TechMoatDurability, c.ExitProbability))
}
