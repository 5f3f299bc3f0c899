// Package validate checks extracted payloads against their declared schema
// and produces typed values. It is the single choke point between
// model-derived data and persisted state: nothing may branch on a raw payload
// that has not passed through here.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/smartkas-app/kasai/internal/schema"
)

// SchemaViolation reports a payload that does not conform to its schema,
// naming the offending field.
type SchemaViolation struct {
	Field  string
	Reason string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation: field %q %s", e.Field, e.Reason)
}

func violation(field, reason string) error {
	return &SchemaViolation{Field: field, Reason: reason}
}

// apply validates a raw payload against a registry schema and returns the
// coerced tree: map[string]any for object roots, []map[string]any for array
// roots.
func apply(s schema.Schema, payload json.RawMessage) (any, error) {
	if s.Items != nil {
		var items []any
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, violation("(root)", "must be an array")
		}
		if len(items) == 0 && !s.AllowEmpty {
			return nil, violation("(root)", "must not be empty")
		}
		return coerceElements(s.Items, items, "")
	}

	var node map[string]any
	if err := json.Unmarshal(payload, &node); err != nil {
		return nil, violation("(root)", "must be an object")
	}
	return coerceObject(s.Fields, node, "")
}

func coerceObject(fields []schema.Field, node map[string]any, prefix string) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		v, present := node[f.Name]
		if !present || v == nil || v == "" {
			if f.Required {
				return nil, violation(path, "is required")
			}
			if f.Kind == schema.KindString && f.Default != "" {
				out[f.Name] = f.Default
			}
			continue
		}

		cv, err := coerceValue(f, v, path)
		if err != nil {
			return nil, err
		}
		out[f.Name] = cv
	}
	return out, nil
}

func coerceValue(f schema.Field, v any, path string) (any, error) {
	switch f.Kind {
	case schema.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, violation(path, "must be a string")
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return nil, violation(path, fmt.Sprintf("must be one of %v", f.Enum))
		}
		return s, nil

	case schema.KindNumber:
		n, ok := toFloat(v)
		if !ok {
			return nil, violation(path, "must be a number")
		}
		if err := checkBounds(f, n, path); err != nil {
			return nil, err
		}
		return n, nil

	case schema.KindInteger:
		n, ok := toFloat(v)
		if !ok || n != float64(int(n)) {
			return nil, violation(path, "must be an integer")
		}
		if err := checkBounds(f, n, path); err != nil {
			return nil, err
		}
		return int(n), nil

	case schema.KindArray:
		items, ok := v.([]any)
		if !ok {
			return nil, violation(path, "must be an array")
		}
		if len(items) == 0 && !f.AllowEmpty {
			return nil, violation(path, "must not be empty")
		}
		if f.Elem == nil {
			return coerceStrings(items, path)
		}
		return coerceElements(f.Elem, items, path)
	}
	return nil, violation(path, "has unknown kind")
}

func coerceElements(elem []schema.Field, items []any, path string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		ipath := fmt.Sprintf("%s[%d]", path, i)
		if path == "" {
			ipath = fmt.Sprintf("[%d]", i)
		}
		node, ok := item.(map[string]any)
		if !ok {
			return nil, violation(ipath, "must be an object")
		}
		cv, err := coerceObject(elem, node, ipath)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, nil
}

func coerceStrings(items []any, path string) ([]string, error) {
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, violation(fmt.Sprintf("%s[%d]", path, i), "must be a string")
		}
		out = append(out, s)
	}
	return out, nil
}

// toFloat accepts JSON numbers and numeric-looking strings. Model output is
// loosely typed; "18000" and 18000 mean the same amount. ParseFloat also
// accepts "NaN" and "Inf", which are never valid amounts, so non-finite
// values are rejected here before any bound check sees them.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, isFinite(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil && isFinite(f)
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func checkBounds(f schema.Field, n float64, path string) error {
	if f.Positive && n <= 0 {
		return violation(path, "must be positive")
	}
	if f.NonZero && n == 0 {
		return violation(path, "must not be zero")
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getFloat(m map[string]any, key string) float64 {
	f, _ := m[key].(float64)
	return f
}

func getInt(m map[string]any, key string) int {
	i, _ := m[key].(int)
	return i
}

func getStrings(m map[string]any, key string) []string {
	s, _ := m[key].([]string)
	return s
}
