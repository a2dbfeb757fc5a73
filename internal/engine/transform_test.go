package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

func TestTransformMapsOnlyPresentFields(t *testing.T) {
	rec := connector.Record{
		"title":  "Widget",
		"vendor": "Acme",
		"extra":  "ignored",
	}
	fields := map[string]string{
		"title":  "product_name",
		"vendor": "supplier",
		"status": "state", // absent from rec
	}

	out := Transform(rec, fields, nil)
	require.Equal(t, connector.Record{
		"product_name": "Widget",
		"supplier":     "Acme",
	}, out)
}

func TestTransformIsDeterministic(t *testing.T) {
	rec := connector.Record{"a": 1, "b": "x"}
	fields := map[string]string{"a": "x", "b": "y"}
	first := Transform(rec, fields, nil)
	second := Transform(rec, fields, nil)
	require.Equal(t, first, second)
}

func TestTransformEmptyMapping(t *testing.T) {
	out := Transform(connector.Record{"a": 1}, nil, nil)
	require.Empty(t, out)
}

func TestTransformRules(t *testing.T) {
	rec := connector.Record{
		"status": "Active",
		"name":   "widget",
		"source": "anything",
	}
	fields := map[string]string{
		"status": "state",
		"name":   "title",
		"source": "origin",
	}
	rules := map[string]Rule{
		"status": {Kind: "lowercase"},
		"name":   {Kind: "uppercase"},
		"source": {Kind: "constant", Value: "shopify"},
	}

	out := Transform(rec, fields, rules)
	require.Equal(t, "active", out["state"])
	require.Equal(t, "WIDGET", out["title"])
	require.Equal(t, "shopify", out["origin"])
}

func TestTransformUnknownRuleKindPassesThrough(t *testing.T) {
	rec := connector.Record{"price": 9.99}
	fields := map[string]string{"price": "amount"}
	rules := map[string]Rule{"price": {Kind: "currency-convert"}}

	out := Transform(rec, fields, rules)
	require.Equal(t, 9.99, out["amount"])
}

func TestTransformRuleOnNonString(t *testing.T) {
	rec := connector.Record{"qty": 3}
	fields := map[string]string{"qty": "quantity"}
	rules := map[string]Rule{"qty": {Kind: "lowercase"}}

	out := Transform(rec, fields, rules)
	require.Equal(t, 3, out["quantity"])
}

func TestParseRules(t *testing.T) {
	raw := datatypes.JSONMap{
		"status": map[string]any{"kind": "lowercase"},
		"source": map[string]any{"kind": "constant", "value": "shopify"},
		"bogus":  "not a rule",
		"nokind": map[string]any{"value": 1},
	}

	rules := ParseRules(raw)
	require.Len(t, rules, 2)
	require.Equal(t, Rule{Kind: "lowercase"}, rules["status"])
	require.Equal(t, Rule{Kind: "constant", Value: "shopify"}, rules["source"])

	require.Nil(t, ParseRules(nil))
}
