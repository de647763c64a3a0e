package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/nexus/internal/common"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	result := report.Result
	if result == nil {
		result = common.PlaceholderResult()
	}

	output := &JSONOutput{
		GeneratedAt: report.GeneratedAt,
		Model:       report.Model,
		Pending:     result.IsPending(),
		Result:      result,
		Logs:        report.Logs,
		Derived:     createDerived(result),
	}
	if output.Logs == nil {
		output.Logs = []common.LogEvent{}
	}

	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput wraps the result with its feed and derived views
type JSONOutput struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Model       string                 `json:"model,omitempty"`
	Pending     bool                   `json:"pending"`
	Result      *common.AnalysisResult `json:"result"`
	Logs        []common.LogEvent      `json:"logs"`
	Derived     *DerivedOutput         `json:"derived"`
}

// DerivedOutput holds values computed from the result for display
type DerivedOutput struct {
	FounderRadar        []RadarPoint `json:"founder_radar"`
	BurnMultipleFlagged bool         `json:"burn_multiple_flagged"`
	RuleOf40Flagged     bool         `json:"rule_of_40_flagged"`
}

func createDerived(result *common.AnalysisResult) *DerivedOutput {
	return &DerivedOutput{
		FounderRadar:        FounderRadar(result),
		BurnMultipleFlagged: BurnMultipleFlagged(result.Financials.BurnMultiple),
		RuleOf40Flagged:     RuleOf40Flagged(result.Financials.RuleOf40),
	}
}
