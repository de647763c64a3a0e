package common

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPlaceholderResult(t *testing.T) {
	r := PlaceholderResult()
	if !r.IsPending() {
		t.Fatal("placeholder should be pending")
	}
	if r.MarketTopology.CategoryMaturity != MaturityBlueOcean {
		t.Errorf("expected Blue Ocean, got %s", r.MarketTopology.CategoryMaturity)
	}
	if r.Financials.ValuationStatus != ValuationPar {
		t.Errorf("expected Par, got %s", r.Financials.ValuationStatus)
	}
	if r.BearCase != PendingText {
		t.Errorf("unexpected bear case %q", r.BearCase)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["simulations"] == nil {
		t.Error("empty slices should encode as [] not null")
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := PlaceholderResult()
	r.InvestmentThesis = "Buy"
	r.TruthSeekerQuestions = []string{"why now?"}
	r.Simulations = []Simulation{{Name: "The Big Squeeze", SurvivalRate: 40}}

	c := r.Clone()
	c.TruthSeekerQuestions[0] = "changed"
	c.Simulations[0].SurvivalRate = 99

	if r.TruthSeekerQuestions[0] != "why now?" {
		t.Error("clone shares question slice")
	}
	if r.Simulations[0].SurvivalRate != 40 {
		t.Error("clone shares simulation slice")
	}
	if c.IsPending() {
		t.Error("clone of a real result should not be pending")
	}
}

func TestScoresCoversSimulations(t *testing.T) {
	r := PlaceholderResult()
	r.Simulations = []Simulation{{}, {}}
	scores := r.Scores()
	if len(scores) != 9 {
		t.Fatalf("expected 9 score fields, got %d", len(scores))
	}
	*scores["simulations.1.survivalRate"] = 12
	if r.Simulations[1].SurvivalRate != 12 {
		t.Error("score pointer does not address the result")
	}
}

func TestHasInput(t *testing.T) {
	tests := []struct {
		name string
		req  AnalysisRequest
		want bool
	}{
		{"empty", AnalysisRequest{}, false},
		{"whitespace", AnalysisRequest{Text: "  \n\t"}, false},
		{"text", AnalysisRequest{Text: "a seed-stage fintech"}, true},
		{"empty file", AnalysisRequest{File: &FileInput{MIMEType: "application/pdf"}}, false},
		{"file", AnalysisRequest{File: &FileInput{MIMEType: "application/pdf", Data: "JVBERi0="}}, true},
		{"data URI header only", AnalysisRequest{File: &FileInput{MIMEType: "text/plain", Data: "data:text/plain;base64,"}}, false},
		{"data URI with payload", AnalysisRequest{File: &FileInput{MIMEType: "text/plain", Data: "data:text/plain;base64,aGk="}}, true},
		{"whitespace payload", AnalysisRequest{File: &FileInput{MIMEType: "text/plain", Data: " \n "}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.HasInput(); got != tt.want {
				t.Errorf("HasInput() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAcceptedMediaType(t *testing.T) {
	tests := map[string]bool{
		"application/pdf":           true,
		"image/png":                 true,
		"IMAGE/JPEG":                true,
		"text/plain; charset=utf-8": true,
		"text/markdown":             true,
		"application/zip":           false,
		"application/octet-stream":  false,
		"":                          false,
	}
	for mt, want := range tests {
		if got := AcceptedMediaType(mt); got != want {
			t.Errorf("AcceptedMediaType(%q) = %v, want %v", mt, got, want)
		}
	}
}

func TestEnumsValid(t *testing.T) {
	if !MaturityMarketExpansion.Valid() || CategoryMaturity("Purple Ocean").Valid() {
		t.Error("category maturity validation wrong")
	}
	if !ValuationDiscount.Valid() || ValuationStatus("Bargain").Valid() {
		t.Error("valuation status validation wrong")
	}
	if !OutcomePivot.Valid() || Outcome("Exit").Valid() {
		t.Error("outcome validation wrong")
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "09:05:07" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}

func TestResultSchemaRequiresEveryField(t *testing.T) {
	schema := ResultSchema()
	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("required has type %T", schema["required"])
	}
	data, _ := json.Marshal(PlaceholderResult())
	var fields map[string]any
	_ = json.Unmarshal(data, &fields)
	if len(required) != len(fields) {
		t.Errorf("schema requires %d fields, result has %d", len(required), len(fields))
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			t.Errorf("schema requires unknown field %q", name)
		}
	}
	if _, err := ResultSchemaJSON(); err != nil {
		t.Fatalf("ResultSchemaJSON: %v", err)
	}
}
