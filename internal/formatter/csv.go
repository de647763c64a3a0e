package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// csvFormatter flattens the result into section,metric,value rows
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write([]string{"Section", "Metric", "Value", "Detail"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	result := report.Result
	if result.IsPending() {
		writer.Flush()
		return b.Bytes(), writer.Error()
	}

	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	fin := result.Financials
	ci := result.ConfidenceIntervals

	records := [][]string{
		{"founder", "resilienceScore", num(result.FounderMetrics.ResilienceScore), ""},
		{"founder", "technicalMoatScore", num(result.FounderMetrics.TechnicalMoatScore), ""},
		{"founder", "recruitingAbility", num(result.FounderMetrics.RecruitingAbility), ""},
		{"founder", "cognitiveFlexibility", num(result.FounderMetrics.CognitiveFlexibility), ""},
		{"market", "categoryMaturity", string(result.MarketTopology.CategoryMaturity), ""},
		{"market", "totalAddressableMarket", result.MarketTopology.TotalAddressableMarket, ""},
		{"market", "regulatoryCliff", escapeCSVString(result.MarketTopology.RegulatoryCliff), ""},
		{"financials", "burnMultiple", num(fin.BurnMultiple), flagDetail(BurnMultipleFlagged(fin.BurnMultiple))},
		{"financials", "ruleOf40", num(fin.RuleOf40), flagDetail(RuleOf40Flagged(fin.RuleOf40))},
		{"financials", "valuationStatus", string(fin.ValuationStatus), ""},
		{"financials", "runwayMonths", num(fin.RunwayMonths), ""},
		{"financials", "ltvCacRatio", num(fin.LtvCacRatio), ""},
	}
	for _, sim := range result.Simulations {
		records = append(records, []string{"simulation", sim.Name, num(sim.SurvivalRate), string(sim.Outcome)})
	}
	for _, p := range result.RiskTornado {
		records = append(records, []string{
			"tornado", p.Variable, num(p.BaseRunway),
			fmt.Sprintf("%s/%s", formatSigned(p.ImpactNegative), formatSigned(p.ImpactPositive)),
		})
	}
	records = append(records,
		[]string{"confidence", "founderResilience", num(ci.FounderResilience), ""},
		[]string{"confidence", "techMoatDurability", num(ci.TechMoatDurability), ""},
		[]string{"confidence", "exitProbability", num(ci.ExitProbability), ""},
	)

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

func flagDetail(flagged bool) string {
	if flagged {
		return "flagged"
	}
	return ""
}

// escapeCSVString flattens newlines and truncates long text
func escapeCSVString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	if len(s) > 100 {
		s = s[:97] + "..."
	}

	return s
}
