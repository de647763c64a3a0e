package analyzer

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"
)

// Benchmarks are the reference constants the model grades against
type Benchmarks struct {
	Cohort           string
	MedianValuation  string
	GoodBurnMultiple float64
	GoodRuleOf40     float64
}

// DefaultBenchmarks returns the AI seed-stage reference cohort
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{
		Cohort:           "2026 AI Seed Benchmarks",
		MedianValuation:  "$17.9M",
		GoodBurnMultiple: 1.5,
		GoodRuleOf40:     40,
	}
}

// DefaultScenarios are the stress tests every report must simulate
var DefaultScenarios = []string{"The Big Squeeze", "Talent Leak", "Commoditization"}

// DueDiligencePattern builds the fixed analyst instruction
type DueDiligencePattern struct {
	promptfmt.BasePattern
	Persona    string
	Benchmarks Benchmarks
	Scenarios  []string
}

// DueDiligence creates the default due-diligence pattern
func DueDiligence() *DueDiligencePattern {
	return &DueDiligencePattern{
		BasePattern: promptfmt.BasePattern{
			Description: "Tier-1 venture due diligence over a startup description or deck",
			Tags:        []string{"venture", "due-diligence", "structured-output"},
		},
		Persona:    "You are the Nexus-9 Intelligence Engine, a Tier-1 VC analyst tool. Analyze the provided startup description/data deeply.",
		Benchmarks: DefaultBenchmarks(),
		Scenarios:  DefaultScenarios,
	}
}

func (p *DueDiligencePattern) WithBenchmarks(b Benchmarks) *DueDiligencePattern {
	p.Benchmarks = b
	return p
}

func (p *DueDiligencePattern) WithScenarios(names ...string) *DueDiligencePattern {
	p.Scenarios = names
	return p
}

func (p *DueDiligencePattern) Build() *promptfmt.Prompt {
	quoted := make([]string, len(p.Scenarios))
	for i, s := range p.Scenarios {
		quoted[i] = "'" + s + "'"
	}

	pb := promptfmt.New().
		System("%s", p.Persona).
		User("Perform the following:\n"+
			"1. Founder Psychographics: Look for 'High Agency' and 'Zero-to-One' capability.\n"+
			"2. Market Topology: Identify 'Ghost Competitors' (internal teams at Big Tech).\n"+
			"3. Digital Twin Modeling: Estimate Burn Multiple, Rule of 40 based on typical seed stage deep tech metrics if not provided.\n"+
			"4. Run %d Monte Carlo Simulations (mental model): %s.\n"+
			"5. Generate a 'Sensitivity Analysis' for the Tornado Chart (impact on runway in months).\n\n"+
			"Be harsh, realistic, and specific. No hedging.",
			len(p.Scenarios), strings.Join(quoted, ", "))

	pb.AddContext("benchmarks", p.benchmarkContext())

	return pb.Build()
}

func (p *DueDiligencePattern) benchmarkContext() string {
	b := p.Benchmarks
	return fmt.Sprintf("Use %s:\n- Median Valuation: %s\n- Good Burn Multiple: < %g\n- Good Rule of 40: > %g%%",
		b.Cohort, b.MedianValuation, b.GoodBurnMultiple, b.GoodRuleOf40)
}

// SystemInstruction flattens a built prompt into one system instruction
func SystemInstruction(prompt *promptfmt.Prompt) string {
	body := strings.TrimSpace(prompt.String())
	system := strings.TrimSpace(prompt.SystemPrompt)
	if system == "" || strings.Contains(body, system) {
		return body
	}
	return system + "\n\n" + body
}
