package engine

import (
	"strings"

	"gorm.io/datatypes"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

// Rule is one per-field transformation, applied to the source value before
// it lands under the target field name.
type Rule struct {
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// Transform maps one record into the target shape. Only target fields whose
// source field is present in rec appear in the result; everything else is
// omitted. Total and deterministic: unknown rule kinds pass the value
// through unchanged rather than failing the record.
func Transform(rec connector.Record, fields map[string]string, rules map[string]Rule) connector.Record {
	out := make(connector.Record, len(fields))
	for src, dst := range fields {
		v, ok := rec[src]
		if !ok {
			continue
		}
		if rule, ok := rules[src]; ok {
			v = applyRule(rule, v)
		}
		out[dst] = v
	}
	return out
}

func applyRule(r Rule, v any) any {
	switch r.Kind {
	case "", "identity":
		return v
	case "constant":
		return r.Value
	case "lowercase":
		if s, ok := v.(string); ok {
			return strings.ToLower(s)
		}
		return v
	case "uppercase":
		if s, ok := v.(string); ok {
			return strings.ToUpper(s)
		}
		return v
	default:
		// Unrecognized kinds never abort a run.
		return v
	}
}

// ParseRules reads the stored transformation rules, keyed by source field.
// Malformed entries are dropped.
func ParseRules(raw datatypes.JSONMap) map[string]Rule {
	if len(raw) == 0 {
		return nil
	}
	rules := make(map[string]Rule, len(raw))
	for field, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		kind, ok := entry["kind"].(string)
		if !ok {
			continue
		}
		rules[field] = Rule{Kind: kind, Value: entry["value"]}
	}
	return rules
}
