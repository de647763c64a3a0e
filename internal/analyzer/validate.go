package analyzer

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yildizm/nexus/internal/common"
)

const resultSchemaURL = "nexus://analysis-result.schema.json"

var schemaPrinter = message.NewPrinter(language.English)

// Validator checks decoded replies against the AnalysisResult schema
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the AnalysisResult schema
func NewValidator() (*Validator, error) {
	raw, err := common.ResultSchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode result schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse result schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resultSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add result schema: %w", err)
	}
	sch, err := compiler.Compile(resultSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile result schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate returns one "location: problem" line per violation
func (v *Validator) Validate(instance any) []string {
	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var out []string
	collectViolations(ve, &out)
	sort.Strings(out)
	return out
}

func collectViolations(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}

// ClampScores forces every 0-100 field into range and returns the paths it changed
func ClampScores(r *common.AnalysisResult) []string {
	var clamped []string
	for path, p := range r.Scores() {
		v := *p
		switch {
		case math.IsNaN(v):
			*p = 0
		case v < 0:
			*p = 0
		case v > 100:
			*p = 100
		default:
			continue
		}
		clamped = append(clamped, path)
	}
	sort.Strings(clamped)
	return clamped
}

// normalizeSlices replaces missing sequences with empty ones
func normalizeSlices(r *common.AnalysisResult) {
	if r.FounderMetrics.HighAgencySignal == nil {
		r.FounderMetrics.HighAgencySignal = []string{}
	}
	if r.MarketTopology.GhostCompetitors == nil {
		r.MarketTopology.GhostCompetitors = []string{}
	}
	if r.Simulations == nil {
		r.Simulations = []common.Simulation{}
	}
	if r.RiskTornado == nil {
		r.RiskTornado = []common.TornadoPoint{}
	}
	if r.TruthSeekerQuestions == nil {
		r.TruthSeekerQuestions = []string{}
	}
}
