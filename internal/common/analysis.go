package common

import "strconv"

// PendingText is the narrative placeholder shown before any analysis completes
const PendingText = "Pending Analysis..."

// AnalysisResult is the structured due-diligence report returned by the model
type AnalysisResult struct {
	FounderMetrics       FounderMetrics      `json:"founderMetrics"`
	MarketTopology       MarketTopology      `json:"marketTopology"`
	Financials           Financials          `json:"financials"`
	Simulations          []Simulation        `json:"simulations"`
	RiskTornado          []TornadoPoint      `json:"riskTornado"`
	TruthSeekerQuestions []string            `json:"truthSeekerQuestions"`
	ConfidenceIntervals  ConfidenceIntervals `json:"confidenceIntervals"`
	InvestmentThesis     string              `json:"investmentThesis"`
	BearCase             string              `json:"bearCase"`
}

// FounderMetrics scores the founding team on a 0-100 scale
type FounderMetrics struct {
	ResilienceScore      float64  `json:"resilienceScore"`
	TechnicalMoatScore   float64  `json:"technicalMoatScore"`
	RecruitingAbility    float64  `json:"recruitingAbility"`
	CognitiveFlexibility float64  `json:"cognitiveFlexibility"`
	HighAgencySignal     []string `json:"highAgencySignal"`
}

// MarketTopology describes the competitive landscape
type MarketTopology struct {
	GhostCompetitors       []string         `json:"ghostCompetitors"`
	CategoryMaturity       CategoryMaturity `json:"categoryMaturity"`
	RegulatoryCliff        string           `json:"regulatoryCliff"`
	TotalAddressableMarket string           `json:"totalAddressableMarket"`
}

// Financials holds the digital twin's unit economics
type Financials struct {
	BurnMultiple    float64         `json:"burnMultiple"`
	RuleOf40        float64         `json:"ruleOf40"`
	ValuationStatus ValuationStatus `json:"valuationStatus"`
	RunwayMonths    float64         `json:"runwayMonths"`
	LtvCacRatio     float64         `json:"ltvCacRatio"`
}

// Simulation is one stress-test scenario
type Simulation struct {
	Name         string  `json:"name"`
	SurvivalRate float64 `json:"survivalRate"`
	Description  string  `json:"description"`
	Outcome      Outcome `json:"outcome"`
}

// TornadoPoint is one bar of the runway sensitivity chart.
// ImpactPositive is >= 0 and ImpactNegative <= 0 by convention.
type TornadoPoint struct {
	Variable       string  `json:"variable"`
	BaseRunway     float64 `json:"baseRunway"`
	ImpactPositive float64 `json:"impactPositive"`
	ImpactNegative float64 `json:"impactNegative"`
	Label          string  `json:"label"`
}

// ConfidenceIntervals holds the model's confidence in its own calls
type ConfidenceIntervals struct {
	FounderResilience  float64 `json:"founderResilience"`
	TechMoatDurability float64 `json:"techMoatDurability"`
	ExitProbability    float64 `json:"exitProbability"`
}

// PlaceholderResult returns the all-zero result shown before the first run
func PlaceholderResult() *AnalysisResult {
	return &AnalysisResult{
		FounderMetrics: FounderMetrics{
			HighAgencySignal: []string{},
		},
		MarketTopology: MarketTopology{
			GhostCompetitors:       []string{},
			CategoryMaturity:       MaturityBlueOcean,
			RegulatoryCliff:        "Unknown",
			TotalAddressableMarket: "Unknown",
		},
		Financials: Financials{
			ValuationStatus: ValuationPar,
		},
		Simulations:          []Simulation{},
		RiskTornado:          []TornadoPoint{},
		TruthSeekerQuestions: []string{},
		InvestmentThesis:     PendingText,
		BearCase:             PendingText,
	}
}

// IsPending reports whether the result is still the placeholder
func (r *AnalysisResult) IsPending() bool {
	return r == nil || r.InvestmentThesis == PendingText
}

// Clone returns a deep copy so readers never share slices with the owner
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	c := *r
	c.FounderMetrics.HighAgencySignal = cloneStrings(r.FounderMetrics.HighAgencySignal)
	c.MarketTopology.GhostCompetitors = cloneStrings(r.MarketTopology.GhostCompetitors)
	c.TruthSeekerQuestions = cloneStrings(r.TruthSeekerQuestions)
	if r.Simulations != nil {
		c.Simulations = append([]Simulation{}, r.Simulations...)
	}
	if r.RiskTornado != nil {
		c.RiskTornado = append([]TornadoPoint{}, r.RiskTornado...)
	}
	return &c
}

// Scores returns pointers to every field expected in [0,100], keyed by JSON path
func (r *AnalysisResult) Scores() map[string]*float64 {
	scores := map[string]*float64{
		"founderMetrics.resilienceScore":         &r.FounderMetrics.ResilienceScore,
		"founderMetrics.technicalMoatScore":      &r.FounderMetrics.TechnicalMoatScore,
		"founderMetrics.recruitingAbility":       &r.FounderMetrics.RecruitingAbility,
		"founderMetrics.cognitiveFlexibility":    &r.FounderMetrics.CognitiveFlexibility,
		"confidenceIntervals.founderResilience":  &r.ConfidenceIntervals.FounderResilience,
		"confidenceIntervals.techMoatDurability": &r.ConfidenceIntervals.TechMoatDurability,
		"confidenceIntervals.exitProbability":    &r.ConfidenceIntervals.ExitProbability,
	}
	for i := range r.Simulations {
		scores["simulations."+strconv.Itoa(i)+".survivalRate"] = &r.Simulations[i].SurvivalRate
	}
	return scores
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
