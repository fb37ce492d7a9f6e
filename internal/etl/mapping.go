// Package etl extracts employee records from PAR Brink, transforms field
// names through a declarative JMESPath mapping, and optionally loads the
// result into UKG Ready.
package etl

import (
	"fmt"
	"strconv"
	"strings"

	jmes "github.com/jmespath/go-jmespath"
)

// FieldMapping binds one target field to a JMESPath expression evaluated
// against the source record, with an optional named transform.
type FieldMapping struct {
	Target    string `json:"target"`
	Path      string `json:"path"`
	Transform string `json:"transform,omitempty"`
	Required  bool   `json:"required,omitempty"`
}

// DefaultEmployeeMappings is the PAR Brink employee → UKG Ready personnel
// field map used when a request supplies none.
var DefaultEmployeeMappings = []FieldMapping{
	{Target: "employee_id", Path: "payrollId || id", Required: true},
	{Target: "first_name", Path: "firstName", Required: true},
	{Target: "last_name", Path: "lastName", Required: true},
	{Target: "display_name", Path: "displayName"},
	{Target: "primary_email", Path: "email", Transform: "lower"},
	{Target: "phone_number", Path: "phone", Transform: "digits"},
	{Target: "status", Path: "isActive", Transform: "active_status"},
}

// Transform applies the mappings to one source record. Missing required
// fields fail the record.
func Transform(source map[string]any, mappings []FieldMapping) (map[string]any, error) {
	out := map[string]any{}
	for _, m := range mappings {
		val, err := jmes.Search(m.Path, source)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", m.Target, err)
		}
		if m.Transform != "" {
			val = applyTransform(m.Transform, val)
		}
		if val == nil || val == "" {
			if m.Required {
				return nil, fmt.Errorf("field %s: required value missing", m.Target)
			}
			continue
		}
		out[m.Target] = val
	}
	return out, nil
}

func applyTransform(name string, v any) any {
	switch name {
	case "lower":
		if s, ok := v.(string); ok {
			return strings.ToLower(s)
		}
		return v
	case "upper":
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
		return v
	case "trim":
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return v
	case "digits":
		if s, ok := v.(string); ok {
			var b strings.Builder
			for _, r := range s {
				if r >= '0' && r <= '9' {
					b.WriteRune(r)
				}
			}
			return b.String()
		}
		return v
	case "active_status":
		if b, ok := v.(bool); ok {
			if b {
				return "ACTIVE"
			}
			return "TERMINATED"
		}
		return v
	case "to_string":
		if v == nil {
			return nil
		}
		return fmt.Sprintf("%v", v)
	case "to_number":
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
			return nil
		}
		return v
	default:
		return v
	}
}
