package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/nexus/internal/common"
)

func sampleReport() *Report {
	r := common.PlaceholderResult()
	r.InvestmentThesis = "Category-defining workflow tool with strong pull."
	r.BearCase = "Incumbent CRM bundles the feature within 12 months."
	r.FounderMetrics = common.FounderMetrics{
		ResilienceScore:      80,
		TechnicalMoatScore:   45,
		RecruitingAbility:    70,
		CognitiveFlexibility: 90,
		HighAgencySignal:     []string{"Cold-emailed 400 brokers in week one"},
	}
	r.MarketTopology = common.MarketTopology{
		GhostCompetitors:       []string{"Salesforce internal AI team"},
		CategoryMaturity:       common.MaturityRedOcean,
		RegulatoryCliff:        "None identified",
		TotalAddressableMarket: "$3.1B",
	}
	r.Financials = common.Financials{
		BurnMultiple:    2.6,
		RuleOf40:        35,
		ValuationStatus: common.ValuationPremium,
		RunwayMonths:    14,
		LtvCacRatio:     2.8,
	}
	r.Simulations = []common.Simulation{
		{Name: "The Big Squeeze", SurvivalRate: 40, Description: "Series A market freezes", Outcome: common.OutcomePivot},
		{Name: "Talent Leak", SurvivalRate: 75, Description: "CTO departs", Outcome: common.OutcomeSurvive},
	}
	r.RiskTornado = []common.TornadoPoint{
		{Variable: "CAC", BaseRunway: 14, ImpactPositive: 2, ImpactNegative: -6, Label: "Paid channels saturate"},
		{Variable: "Churn", BaseRunway: 14, ImpactPositive: 3, ImpactNegative: -3},
	}
	r.TruthSeekerQuestions = []string{"Who churned last quarter and why?", "What breaks at 10x volume?"}
	r.ConfidenceIntervals = common.ConfidenceIntervals{FounderResilience: 72.5, TechMoatDurability: 40, ExitProbability: 18.25}

	return &Report{
		Result: r,
		Logs: []common.LogEvent{
			{ID: "1", Agent: common.AgentAlpha, Action: "Initiating scrape", Timestamp: "10:00:00", Status: common.StatusPending},
			{ID: "2", Agent: common.AgentAlpha, Action: "Extraction complete", Timestamp: "10:00:01", Status: common.StatusComplete},
		},
		Model:       "gemini-3-flash-preview",
		GeneratedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

func TestTerminalFormat(t *testing.T) {
	out, err := NewTerminal(false, false).Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	ordered := []string{
		"Nexus-9 Due Diligence Report",
		"Agent Terminal",
		"Initiating scrape",
		"Investment Thesis",
		"Bear Case",
		"Founder Metrics",
		"Market Topology",
		"Financial Health",
		"Black Swan Simulations",
		"Risk Tornado",
		"Truth-Seeker Questions",
		"exit probability 18.2%",
		"Model: gemini-3-flash-preview",
	}
	last := -1
	for _, want := range ordered {
		pos := strings.Index(output, want)
		if pos < 0 {
			t.Errorf("output missing %q", want)
			continue
		}
		if pos < last {
			t.Errorf("%q appears out of order", want)
		}
		last = pos
	}

	if !strings.Contains(output, "1. Who churned last quarter and why?") {
		t.Error("truth-seeker questions should be numbered")
	}
	if !strings.Contains(output, "Salesforce internal AI team") {
		t.Error("ghost competitors should be listed")
	}
}

func TestTerminalFormatPending(t *testing.T) {
	report := &Report{Result: common.PlaceholderResult()}
	out, err := NewTerminal(false, false).Format(report)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	output := string(out)
	if !strings.Contains(output, common.PendingText) {
		t.Error("pending result should say so")
	}
	if strings.Contains(output, "Founder Metrics") || strings.Contains(output, "Agent Terminal") {
		t.Error("panels and empty feed should be hidden while pending")
	}

	if _, err := NewTerminal(false, false).Format(&Report{}); err != nil {
		t.Errorf("nil result should render as pending: %v", err)
	}
}

func TestTornadoBars(t *testing.T) {
	if got := leftBar(-6, 6); got != strings.Repeat("█", tornadoWidth) {
		t.Errorf("full left bar expected, got %q", got)
	}
	if got := rightBar(3, 6); got != strings.Repeat("█", 5)+strings.Repeat(" ", 5) {
		t.Errorf("half right bar expected, got %q", got)
	}
	if got := leftBar(0, 0); got != strings.Repeat(" ", tornadoWidth) {
		t.Errorf("empty bar expected for zero scale, got %q", got)
	}
}

func TestFinancialFlags(t *testing.T) {
	tests := []struct {
		burn, rule       float64
		burnBad, ruleBad bool
	}{
		{burn: 1.2, rule: 55, burnBad: false, ruleBad: false},
		{burn: 2.0, rule: 40, burnBad: false, ruleBad: false},
		{burn: 2.01, rule: 39.9, burnBad: true, ruleBad: true},
	}

	for _, tt := range tests {
		if got := BurnMultipleFlagged(tt.burn); got != tt.burnBad {
			t.Errorf("BurnMultipleFlagged(%v) = %v, want %v", tt.burn, got, tt.burnBad)
		}
		if got := RuleOf40Flagged(tt.rule); got != tt.ruleBad {
			t.Errorf("RuleOf40Flagged(%v) = %v, want %v", tt.rule, got, tt.ruleBad)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := NewJSON().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded struct {
		Pending bool                  `json:"pending"`
		Result  common.AnalysisResult `json:"result"`
		Logs    []common.LogEvent     `json:"logs"`
		Derived DerivedOutput         `json:"derived"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.Pending {
		t.Error("sample report should not be pending")
	}
	if decoded.Result.Financials.BurnMultiple != 2.6 {
		t.Errorf("burn multiple lost: %v", decoded.Result.Financials.BurnMultiple)
	}
	if len(decoded.Logs) != 2 {
		t.Errorf("expected 2 logs, got %d", len(decoded.Logs))
	}
	if !decoded.Derived.BurnMultipleFlagged || !decoded.Derived.RuleOf40Flagged {
		t.Errorf("expected both financial flags, got %+v", decoded.Derived)
	}
	if len(decoded.Derived.FounderRadar) != 4 || decoded.Derived.FounderRadar[1].Axis != "Tech Moat" {
		t.Errorf("unexpected radar %+v", decoded.Derived.FounderRadar)
	}
}

func TestMarkdownFormat(t *testing.T) {
	out, err := NewMarkdown().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"# Nexus-9 Due Diligence Report",
		"Generated: 2026-01-02 15:04:05",
		"## Founder Metrics",
		"| Burn Multiple | 2.6x ⚠️ |",
		"| Rule of 40 | 35% ⚠️ |",
		"| CAC | 14 | -6.0 | +2.0 | Paid channels saturate |",
		"## Agent Log",
		"Exit probability confidence: 18.2%",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	out, err := NewCSV().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	found := map[string][]string{}
	for _, r := range records[1:] {
		found[r[0]+"/"+r[1]] = r
	}

	if r := found["financials/burnMultiple"]; r == nil || r[2] != "2.6" || r[3] != "flagged" {
		t.Errorf("unexpected burn multiple row %v", r)
	}
	if r := found["simulation/Talent Leak"]; r == nil || r[3] != "Survive" {
		t.Errorf("unexpected simulation row %v", r)
	}
	if r := found["tornado/CAC"]; r == nil || r[3] != "-6.0/+2.0" {
		t.Errorf("unexpected tornado row %v", r)
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range Formats {
		if _, err := ForFormat(name, false, false); err != nil {
			t.Errorf("ForFormat(%s): %v", name, err)
		}
	}
	if _, err := ForFormat("xml", false, false); err == nil {
		t.Error("expected error for unknown format")
	}
}
