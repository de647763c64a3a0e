package formatter

import (
	"fmt"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/nexus/internal/common"
)

// Financial health thresholds used for flagging
const (
	BurnMultipleWarn = 2.0
	RuleOf40Target   = 40.0
)

// BurnMultipleFlagged reports a burn multiple above the warning line
func BurnMultipleFlagged(v float64) bool {
	return v > BurnMultipleWarn
}

// RuleOf40Flagged reports a rule-of-40 score under target
func RuleOf40Flagged(v float64) bool {
	return v < RuleOf40Target
}

// RadarPoint is one axis of the founder profile
type RadarPoint struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
}

// FounderRadar returns the four founder axes on a 0-100 scale
func FounderRadar(r *common.AnalysisResult) []RadarPoint {
	m := r.FounderMetrics
	return []RadarPoint{
		{Axis: "Resilience", Value: m.ResilienceScore},
		{Axis: "Tech Moat", Value: m.TechnicalMoatScore},
		{Axis: "Recruiting", Value: m.RecruitingAbility},
		{Axis: "Flexibility", Value: m.CognitiveFlexibility},
	}
}

// fraction maps a 0-100 score onto the 0-1 range confidence bars expect
func fraction(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 1
	default:
		return score / 100
	}
}

// symbol returns the termfmt emoji for key, or fallback when it has none
func symbol(key, fallback string, opts *termfmt.TerminalOptions) string {
	if s := termfmt.GetEmoji(key, opts); s != "" {
		return s
	}
	return fallback
}

// getStatusEmoji returns the marker of a feed line
func getStatusEmoji(status common.Status, opts *termfmt.TerminalOptions) string {
	switch status {
	case common.StatusComplete:
		return symbol("success", "✓", opts)
	case common.StatusError:
		return symbol("error", "✗", opts)
	default:
		return symbol("pending", "…", opts)
	}
}

// getOutcomeEmoji returns the marker of a simulation outcome
func getOutcomeEmoji(outcome common.Outcome, opts *termfmt.TerminalOptions) string {
	switch outcome {
	case common.OutcomeSurvive:
		return symbol("success", "✓", opts)
	case common.OutcomeCollapse:
		return symbol("error", "✗", opts)
	default:
		return symbol("warning", "!", opts)
	}
}

// formatScore renders a 0-100 score
func formatScore(v float64) string {
	return fmt.Sprintf("%.0f/100", v)
}

// formatSigned renders a months delta with its sign
func formatSigned(v float64) string {
	return fmt.Sprintf("%+.1f", v)
}
