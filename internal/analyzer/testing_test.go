package analyzer

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/common"
)

// fakeProvider records requests and answers with a canned reply
type fakeProvider struct {
	mu        sync.Mutex
	configErr error
	reply     string
	err       error
	requests  []*ai.GenerateRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, req *ai.GenerateRequest) (*ai.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ai.GenerateResponse{Content: f.reply, Model: "fake-model", Usage: &ai.TokenUsage{TotalTokens: 10}}, nil
}

func (f *fakeProvider) ValidateConfig() error { return f.configErr }
func (f *fakeProvider) Close() error          { return nil }

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func sampleResult() *common.AnalysisResult {
	return &common.AnalysisResult{
		FounderMetrics: common.FounderMetrics{
			ResilienceScore:      82,
			TechnicalMoatScore:   64,
			RecruitingAbility:    71,
			CognitiveFlexibility: 90,
			HighAgencySignal:     []string{"Shipped v1 solo in 6 weeks"},
		},
		MarketTopology: common.MarketTopology{
			GhostCompetitors:       []string{"Google DeepMind internal tooling"},
			CategoryMaturity:       common.MaturityRedOcean,
			RegulatoryCliff:        "EU AI Act high-risk classification",
			TotalAddressableMarket: "$4.2B",
		},
		Financials: common.Financials{
			BurnMultiple:    2.4,
			RuleOf40:        31,
			ValuationStatus: common.ValuationPremium,
			RunwayMonths:    14,
			LtvCacRatio:     2.1,
		},
		Simulations: []common.Simulation{
			{Name: "The Big Squeeze", SurvivalRate: 35, Description: "Series A market freezes", Outcome: common.OutcomePivot},
			{Name: "Talent Leak", SurvivalRate: 55, Description: "CTO poached", Outcome: common.OutcomeSurvive},
			{Name: "Commoditization", SurvivalRate: 20, Description: "Frontier model ships the feature", Outcome: common.OutcomeCollapse},
		},
		RiskTornado: []common.TornadoPoint{
			{Variable: "Burn Rate", BaseRunway: 14, ImpactPositive: 4, ImpactNegative: -6, Label: "±20% burn"},
		},
		TruthSeekerQuestions: []string{"What happens when OpenAI ships this?"},
		ConfidenceIntervals: common.ConfidenceIntervals{
			FounderResilience:  75,
			TechMoatDurability: 40,
			ExitProbability:    12.5,
		},
		InvestmentThesis: "Strong founder, crowded market.",
		BearCase:         "Feature, not a company.",
	}
}

func sampleJSON() string {
	data, _ := json.Marshal(sampleResult())
	return string(data)
}

// mutateJSON decodes the sample reply, applies fn and re-encodes it
func mutateJSON(fn func(doc map[string]any)) string {
	var doc map[string]any
	_ = json.Unmarshal([]byte(sampleJSON()), &doc)
	fn(doc)
	data, _ := json.Marshal(doc)
	return string(data)
}
