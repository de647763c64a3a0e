package common

import "encoding/json"

// Schema documents use the JSON Schema vocabulary so the same document can be
// handed to the model as a response constraint and used to validate replies.

func object(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func str() map[string]any { return map[string]any{"type": "string"} }

func num(description string) map[string]any {
	s := map[string]any{"type": "number"}
	if description != "" {
		s["description"] = description
	}
	return s
}

func enum(values ...string) map[string]any {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]any{"type": "string", "enum": vs}
}

const score = "0-100"

// ResultSchema returns the JSON Schema of AnalysisResult.
// Each call returns a fresh document that callers may modify.
func ResultSchema() map[string]any {
	return object(map[string]any{
		"founderMetrics": object(map[string]any{
			"resilienceScore":      num(score),
			"technicalMoatScore":   num(score),
			"recruitingAbility":    num(score),
			"cognitiveFlexibility": num(score),
			"highAgencySignal":     arrayOf(str()),
		}, "resilienceScore", "technicalMoatScore", "recruitingAbility", "cognitiveFlexibility", "highAgencySignal"),
		"marketTopology": object(map[string]any{
			"ghostCompetitors":       arrayOf(str()),
			"categoryMaturity":       enum(string(MaturityBlueOcean), string(MaturityRedOcean), string(MaturityMarketExpansion)),
			"regulatoryCliff":        str(),
			"totalAddressableMarket": str(),
		}, "ghostCompetitors", "categoryMaturity", "regulatoryCliff", "totalAddressableMarket"),
		"financials": object(map[string]any{
			"burnMultiple":    num(""),
			"ruleOf40":        num(""),
			"valuationStatus": enum(string(ValuationPremium), string(ValuationPar), string(ValuationDiscount)),
			"runwayMonths":    num(""),
			"ltvCacRatio":     num(""),
		}, "burnMultiple", "ruleOf40", "valuationStatus", "runwayMonths", "ltvCacRatio"),
		"simulations": arrayOf(object(map[string]any{
			"name":         str(),
			"survivalRate": num(score),
			"description":  str(),
			"outcome":      enum(string(OutcomeSurvive), string(OutcomeCollapse), string(OutcomePivot)),
		}, "name", "survivalRate", "description", "outcome")),
		"riskTornado": arrayOf(object(map[string]any{
			"variable":       str(),
			"baseRunway":     num("Base runway in months"),
			"impactPositive": num("Months gained, positive"),
			"impactNegative": num("Months lost, negative"),
			"label":          str(),
		}, "variable", "baseRunway", "impactPositive", "impactNegative", "label")),
		"truthSeekerQuestions": arrayOf(str()),
		"confidenceIntervals": object(map[string]any{
			"founderResilience":  num(score),
			"techMoatDurability": num(score),
			"exitProbability":    num(score),
		}, "founderResilience", "techMoatDurability", "exitProbability"),
		"investmentThesis": str(),
		"bearCase":         str(),
	}, "founderMetrics", "marketTopology", "financials", "simulations", "riskTornado",
		"truthSeekerQuestions", "confidenceIntervals", "investmentThesis", "bearCase")
}

// ResultSchemaJSON returns ResultSchema encoded as JSON
func ResultSchemaJSON() ([]byte, error) {
	return json.Marshal(ResultSchema())
}
