package platform

import (
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

// Resource registries. The resource lists and field-type maps feed the
// connection-setup discovery endpoints; only the resources present in the
// bindings' fetch tables take part in sync runs.

var shopifyResources = []string{
	"products",
	"variants",
	"orders",
	"customers",
	"collections",
	"inventory_items",
	"inventory_levels",
	"locations",
	"fulfillments",
	"transactions",
}

var wooResources = []string{
	"products",
	"product_variations",
	"orders",
	"customers",
	"coupons",
	"categories",
	"tags",
	"shipping_methods",
	"payment_gateways",
	"tax_rates",
}

var shopifyFields = map[string]map[string]string{
	"products": {
		"id":           "integer",
		"title":        "string",
		"body_html":    "text",
		"vendor":       "string",
		"product_type": "string",
		"created_at":   "datetime",
		"updated_at":   "datetime",
		"published_at": "datetime",
		"status":       "string",
		"tags":         "string",
		"variants":     "array",
		"images":       "array",
		"options":      "array",
	},
	"orders": {
		"id":                 "integer",
		"email":              "string",
		"created_at":         "datetime",
		"updated_at":         "datetime",
		"number":             "integer",
		"note":               "text",
		"total_price":        "decimal",
		"subtotal_price":     "decimal",
		"total_tax":          "decimal",
		"currency":           "string",
		"financial_status":   "string",
		"fulfillment_status": "string",
		"line_items":         "array",
		"customer":           "object",
		"shipping_address":   "object",
		"billing_address":    "object",
	},
	"customers": {
		"id":           "integer",
		"email":        "string",
		"first_name":   "string",
		"last_name":    "string",
		"phone":        "string",
		"created_at":   "datetime",
		"updated_at":   "datetime",
		"state":        "string",
		"total_spent":  "decimal",
		"orders_count": "integer",
		"tags":         "string",
		"addresses":    "array",
	},
	"variants": {
		"id":                   "integer",
		"product_id":           "integer",
		"title":                "string",
		"price":                "decimal",
		"sku":                  "string",
		"barcode":              "string",
		"weight":               "decimal",
		"weight_unit":          "string",
		"inventory_quantity":   "integer",
		"inventory_management": "string",
		"option1":              "string",
		"option2":              "string",
		"option3":              "string",
	},
}

var wooFields = map[string]map[string]string{
	"products": {
		"id":                "integer",
		"name":              "string",
		"slug":              "string",
		"type":              "string",
		"status":            "string",
		"description":       "text",
		"short_description": "text",
		"sku":               "string",
		"price":             "decimal",
		"regular_price":     "decimal",
		"sale_price":        "decimal",
		"date_created":      "datetime",
		"date_modified":     "datetime",
		"stock_status":      "string",
		"stock_quantity":    "integer",
		"manage_stock":      "boolean",
		"categories":        "array",
		"images":            "array",
		"attributes":        "array",
		"variations":        "array",
	},
	"orders": {
		"id":                   "integer",
		"number":               "string",
		"status":               "string",
		"currency":             "string",
		"date_created":         "datetime",
		"date_modified":        "datetime",
		"total":                "decimal",
		"subtotal":             "decimal",
		"total_tax":            "decimal",
		"customer_id":          "integer",
		"billing":              "object",
		"shipping":             "object",
		"payment_method":       "string",
		"payment_method_title": "string",
		"line_items":           "array",
		"shipping_lines":       "array",
		"customer_note":        "text",
	},
	"customers": {
		"id":                 "integer",
		"email":              "string",
		"first_name":         "string",
		"last_name":          "string",
		"username":           "string",
		"date_created":       "datetime",
		"date_modified":      "datetime",
		"billing":            "object",
		"shipping":           "object",
		"is_paying_customer": "boolean",
	},
}

// Resources returns the resource names a platform exposes.
func Resources(pt models.PlatformType) ([]string, error) {
	switch pt {
	case models.Shopify:
		return shopifyResources, nil
	case models.WooCommerce:
		return wooResources, nil
	default:
		return nil, &connector.UnsupportedPlatformError{Platform: string(pt)}
	}
}

// ResourceFields returns the field-type map for one resource, empty when the
// registry has no entry for it.
func ResourceFields(pt models.PlatformType, resource string) (map[string]string, error) {
	switch pt {
	case models.Shopify:
		return shopifyFields[resource], nil
	case models.WooCommerce:
		return wooFields[resource], nil
	default:
		return nil, &connector.UnsupportedPlatformError{Platform: string(pt)}
	}
}
