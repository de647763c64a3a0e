package gemini

import (
	"sort"

	"google.golang.org/genai"
)

// toSchema converts a JSON Schema document into the Gemini schema subset.
// Keywords Gemini does not understand are dropped.
func toSchema(doc map[string]any) *genai.Schema {
	if doc == nil {
		return nil
	}

	s := &genai.Schema{}

	switch doc["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "string":
		s.Type = genai.TypeString
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	}

	if d, ok := doc["description"].(string); ok {
		s.Description = d
	}

	if props, ok := doc["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				s.Properties[name] = toSchema(sub)
			}
		}
	}

	s.Required = stringList(doc["required"])
	if len(s.Properties) > 0 {
		s.PropertyOrdering = propertyOrder(s.Required, s.Properties)
	}

	if items, ok := doc["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}

	s.Enum = stringList(doc["enum"])

	if v, ok := number(doc["minimum"]); ok {
		s.Minimum = &v
	}
	if v, ok := number(doc["maximum"]); ok {
		s.Maximum = &v
	}

	return s
}

// propertyOrder lists required properties first, in declared order, then the rest sorted
func propertyOrder(required []string, props map[string]*genai.Schema) []string {
	seen := make(map[string]bool, len(props))
	order := make([]string, 0, len(props))
	for _, name := range required {
		if _, ok := props[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range props {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
