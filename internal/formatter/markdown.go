package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/nexus/internal/common"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = false
	return &markdownFormatter{opts: opts}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	b.WriteString("# Nexus-9 Due Diligence Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))

	result := report.Result
	if result.IsPending() {
		b.WriteString("_" + common.PendingText + "_\n")
		return []byte(b.String()), nil
	}

	f.writeTableOfContents(&b, result, len(report.Logs) > 0)
	f.writeThesis(&b, result)
	f.writeFounderTable(&b, result)
	f.writeMarketTable(&b, result.MarketTopology)
	f.writeFinancialTable(&b, result.Financials)

	if len(result.Simulations) > 0 {
		f.writeSimulations(&b, result.Simulations)
	}
	if len(result.RiskTornado) > 0 {
		f.writeTornadoTable(&b, result.RiskTornado)
	}
	if len(result.TruthSeekerQuestions) > 0 {
		b.WriteString("## Truth-Seeker Questions\n\n")
		for i, q := range result.TruthSeekerQuestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}
	if len(report.Logs) > 0 {
		f.writeAgentLog(&b, report.Logs)
	}

	ci := result.ConfidenceIntervals
	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Exit probability confidence: %.1f%%", ci.ExitProbability)
	if report.Model != "" {
		fmt.Fprintf(&b, " · Model: %s", report.Model)
	}
	b.WriteString("*\n")

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeTableOfContents(b *strings.Builder, result *common.AnalysisResult, hasLogs bool) {
	b.WriteString("## Table of Contents\n")
	b.WriteString("- [Investment Thesis](#investment-thesis)\n")
	b.WriteString("- [Founder Metrics](#founder-metrics)\n")
	b.WriteString("- [Market Topology](#market-topology)\n")
	b.WriteString("- [Financial Health](#financial-health)\n")
	if len(result.Simulations) > 0 {
		b.WriteString("- [Black Swan Simulations](#black-swan-simulations)\n")
	}
	if len(result.RiskTornado) > 0 {
		b.WriteString("- [Risk Tornado](#risk-tornado)\n")
	}
	if len(result.TruthSeekerQuestions) > 0 {
		b.WriteString("- [Truth-Seeker Questions](#truth-seeker-questions)\n")
	}
	if hasLogs {
		b.WriteString("- [Agent Log](#agent-log)\n")
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeThesis(b *strings.Builder, result *common.AnalysisResult) {
	b.WriteString("## Investment Thesis\n\n")
	b.WriteString(result.InvestmentThesis + "\n\n")
	b.WriteString("> **Bear case**: " + result.BearCase + "\n\n")
}

func (f *markdownFormatter) writeFounderTable(b *strings.Builder, result *common.AnalysisResult) {
	b.WriteString("## Founder Metrics\n\n")
	b.WriteString("| Axis | Score | |\n")
	b.WriteString("|------|-------|---|\n")
	for _, point := range FounderRadar(result) {
		fmt.Fprintf(b, "| %s | %s | `%s` |\n", point.Axis, formatScore(point.Value),
			termfmt.CreateConfidenceBar(fraction(point.Value), f.opts))
	}
	b.WriteString("\n")

	if signals := result.FounderMetrics.HighAgencySignal; len(signals) > 0 {
		b.WriteString("**High agency signals**:\n")
		for _, s := range signals {
			b.WriteString("- " + s + "\n")
		}
		b.WriteString("\n")
	}
}

func (f *markdownFormatter) writeMarketTable(b *strings.Builder, m common.MarketTopology) {
	b.WriteString("## Market Topology\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Category | %s |\n", m.CategoryMaturity)
	fmt.Fprintf(b, "| TAM | %s |\n", escapeTableCell(m.TotalAddressableMarket))
	fmt.Fprintf(b, "| Regulatory Cliff | %s |\n", escapeTableCell(m.RegulatoryCliff))
	if len(m.GhostCompetitors) > 0 {
		fmt.Fprintf(b, "| Ghost Competitors | %s |\n", escapeTableCell(strings.Join(m.GhostCompetitors, ", ")))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeFinancialTable(b *strings.Builder, fin common.Financials) {
	mark := func(flagged bool) string {
		if flagged {
			return " ⚠️"
		}
		return ""
	}

	b.WriteString("## Financial Health\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Burn Multiple | %.1fx%s |\n", fin.BurnMultiple, mark(BurnMultipleFlagged(fin.BurnMultiple)))
	fmt.Fprintf(b, "| Rule of 40 | %.0f%%%s |\n", fin.RuleOf40, mark(RuleOf40Flagged(fin.RuleOf40)))
	fmt.Fprintf(b, "| Valuation | %s |\n", fin.ValuationStatus)
	fmt.Fprintf(b, "| Runway | %.0f months |\n", fin.RunwayMonths)
	fmt.Fprintf(b, "| LTV/CAC | %.1f |\n\n", fin.LtvCacRatio)
}

func (f *markdownFormatter) writeSimulations(b *strings.Builder, sims []common.Simulation) {
	b.WriteString("## Black Swan Simulations\n\n")
	for _, sim := range sims {
		fmt.Fprintf(b, "### %s (%s, %.0f%% survival)\n\n", sim.Name, sim.Outcome, sim.SurvivalRate)
		b.WriteString(sim.Description + "\n\n")
	}
}

func (f *markdownFormatter) writeTornadoTable(b *strings.Builder, points []common.TornadoPoint) {
	b.WriteString("## Risk Tornado\n\n")
	b.WriteString("| Variable | Base Runway | Downside | Upside | Note |\n")
	b.WriteString("|----------|-------------|----------|--------|------|\n")
	for _, p := range points {
		fmt.Fprintf(b, "| %s | %.0f | %s | %s | %s |\n",
			escapeTableCell(p.Variable), p.BaseRunway,
			formatSigned(p.ImpactNegative), formatSigned(p.ImpactPositive), escapeTableCell(p.Label))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeAgentLog(b *strings.Builder, logs []common.LogEvent) {
	b.WriteString("## Agent Log\n\n")
	b.WriteString("```\n")
	for _, event := range logs {
		fmt.Fprintf(b, "[%s] %-5s %-8s %s\n", event.Timestamp, event.Agent, event.Status, event.Action)
	}
	b.WriteString("```\n\n")
}

func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
