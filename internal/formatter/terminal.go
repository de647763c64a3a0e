package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/nexus/internal/common"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter
func NewTerminal(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	if len(report.Logs) > 0 {
		f.writeAgentFeed(&b, report.Logs)
	}

	result := report.Result
	if result.IsPending() {
		b.WriteString(common.PendingText + "\n")
		return []byte(b.String()), nil
	}

	f.writeNarrative(&b, result)
	f.writeFounderMetrics(&b, result)
	f.writeMarketTopology(&b, result.MarketTopology)
	f.writeFinancials(&b, result.Financials)

	if len(result.Simulations) > 0 {
		f.writeSimulations(&b, result.Simulations)
	}
	if len(result.RiskTornado) > 0 {
		f.writeRiskTornado(&b, result.RiskTornado)
	}
	if len(result.TruthSeekerQuestions) > 0 {
		f.writeTruthSeeker(&b, result.TruthSeekerQuestions)
	}

	f.writeFooter(&b, report)

	return []byte(b.String()), nil
}

// writeHeader writes the report banner with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Nexus-9 Due Diligence Report"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeAgentFeed writes the timeline lines in order
func (f *terminalFormatter) writeAgentFeed(b *strings.Builder, logs []common.LogEvent) {
	b.WriteString(symbol("ai", "»", f.opts) + " Agent Terminal\n")
	for _, event := range logs {
		fmt.Fprintf(b, "[%s] %-5s %s %s\n", event.Timestamp, event.Agent, getStatusEmoji(event.Status, f.opts), event.Action)
	}
	b.WriteString("\n")
}

func (f *terminalFormatter) writeNarrative(b *strings.Builder, result *common.AnalysisResult) {
	b.WriteString(symbol("summary", "#", f.opts) + " Investment Thesis\n")
	b.WriteString(result.InvestmentThesis + "\n\n")

	b.WriteString(symbol("warning", "!", f.opts) + " Bear Case\n")
	b.WriteString(result.BearCase + "\n\n")
}

// writeFounderMetrics writes the founder axes with bars and agency signals
func (f *terminalFormatter) writeFounderMetrics(b *strings.Builder, result *common.AnalysisResult) {
	b.WriteString(symbol("target", "*", f.opts) + " Founder Metrics\n")

	radar := FounderRadar(result)
	items := make([]termfmt.TreeItem, 0, len(radar)+1)
	for _, point := range radar {
		items = append(items, termfmt.TreeItem{
			Label: point.Axis,
			Value: termfmt.CreateConfidenceBar(fraction(point.Value), f.opts) + " " + formatScore(point.Value),
		})
	}

	signals := result.FounderMetrics.HighAgencySignal
	if len(signals) > 0 {
		children := make([]termfmt.TreeItem, 0, len(signals))
		for i, s := range signals {
			children = append(children, termfmt.TreeItem{Label: s, Last: i == len(signals)-1})
		}
		items = append(items, termfmt.TreeItem{Label: "High Agency Signals", Children: children})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeMarketTopology(b *strings.Builder, m common.MarketTopology) {
	b.WriteString(symbol("statistics", "=", f.opts) + " Market Topology\n")

	items := []termfmt.TreeItem{
		{Label: "Category", Value: string(m.CategoryMaturity)},
		{Label: "TAM", Value: m.TotalAddressableMarket},
		{Label: "Regulatory Cliff", Value: m.RegulatoryCliff},
	}
	if len(m.GhostCompetitors) > 0 {
		items = append(items, termfmt.TreeItem{Label: "Ghost Competitors", Value: strings.Join(m.GhostCompetitors, ", ")})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeFinancials writes the unit economics, flagging values outside benchmark
func (f *terminalFormatter) writeFinancials(b *strings.Builder, fin common.Financials) {
	b.WriteString(symbol("statistics", "=", f.opts) + " Financial Health\n")

	flag := func(bad bool) string {
		if bad {
			return " " + symbol("warning", "!", f.opts)
		}
		return ""
	}

	items := []termfmt.TreeItem{
		{Label: "Burn Multiple", Value: fmt.Sprintf("%.1fx%s", fin.BurnMultiple, flag(BurnMultipleFlagged(fin.BurnMultiple)))},
		{Label: "Rule of 40", Value: fmt.Sprintf("%.0f%%%s", fin.RuleOf40, flag(RuleOf40Flagged(fin.RuleOf40)))},
		{Label: "Valuation", Value: string(fin.ValuationStatus)},
		{Label: "Runway", Value: fmt.Sprintf("%.0f months", fin.RunwayMonths)},
		{Label: "LTV/CAC", Value: fmt.Sprintf("%.1f", fin.LtvCacRatio), Last: true},
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeSimulations(b *strings.Builder, sims []common.Simulation) {
	b.WriteString(symbol("insights", "~", f.opts) + " Black Swan Simulations\n")

	items := make([]termfmt.TreeItem, 0, len(sims))
	for i, sim := range sims {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", getOutcomeEmoji(sim.Outcome, f.opts), sim.Name),
			Value: fmt.Sprintf("%.0f%% survival (%s)", sim.SurvivalRate, sim.Outcome),
			Children: []termfmt.TreeItem{
				{Label: sim.Description, Last: true},
			},
			Last: i == len(sims)-1,
		})
	}

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// tornadoWidth is the number of cells on each side of the axis
const tornadoWidth = 10

// writeRiskTornado draws each variable as a bar around the base runway
func (f *terminalFormatter) writeRiskTornado(b *strings.Builder, points []common.TornadoPoint) {
	b.WriteString(symbol("target", "*", f.opts) + " Risk Tornado (runway, months)\n")

	scale := 0.0
	labelWidth := 0
	for _, p := range points {
		scale = math.Max(scale, math.Max(math.Abs(p.ImpactNegative), math.Abs(p.ImpactPositive)))
		if len(p.Variable) > labelWidth {
			labelWidth = len(p.Variable)
		}
	}

	for _, p := range points {
		fmt.Fprintf(b, "%-*s %s %s│%s %s  base %.0f",
			labelWidth, p.Variable,
			formatSigned(p.ImpactNegative),
			leftBar(p.ImpactNegative, scale), rightBar(p.ImpactPositive, scale),
			formatSigned(p.ImpactPositive), p.BaseRunway)
		if p.Label != "" {
			b.WriteString("  " + p.Label)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func cells(v, scale float64) int {
	if scale == 0 {
		return 0
	}
	n := int(math.Round(math.Abs(v) / scale * tornadoWidth))
	if n > tornadoWidth {
		n = tornadoWidth
	}
	return n
}

func leftBar(v, scale float64) string {
	n := cells(v, scale)
	return strings.Repeat(" ", tornadoWidth-n) + strings.Repeat("█", n)
}

func rightBar(v, scale float64) string {
	n := cells(v, scale)
	return strings.Repeat("█", n) + strings.Repeat(" ", tornadoWidth-n)
}

func (f *terminalFormatter) writeTruthSeeker(b *strings.Builder, questions []string) {
	b.WriteString(symbol("help", "?", f.opts) + " Truth-Seeker Questions\n")
	for i, q := range questions {
		fmt.Fprintf(b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\n")
}

// writeFooter writes the confidence line and model tag
func (f *terminalFormatter) writeFooter(b *strings.Builder, report *Report) {
	ci := report.Result.ConfidenceIntervals
	b.WriteString(strings.Repeat("─", 50) + "\n")
	fmt.Fprintf(b, "Confidence: founder resilience %.1f%% · tech moat %.1f%% · exit probability %.1f%%\n",
		ci.FounderResilience, ci.TechMoatDurability, ci.ExitProbability)
	if report.Model != "" {
		fmt.Fprintf(b, "Model: %s\n", report.Model)
	}
}
