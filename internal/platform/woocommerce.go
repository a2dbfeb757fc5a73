package platform

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

const wooPageSize = 100

// Resources the WooCommerce binding can actually fetch from or create on.
var wooSyncable = map[string]bool{
	"products":  true,
	"orders":    true,
	"customers": true,
}

// WooCommerce talks to the WooCommerce REST API (wc/v3) with basic auth.
type WooCommerce struct {
	baseURL string
	httpc   *http.Client
	header  http.Header
}

func NewWooCommerce(shopURL, consumerKey, consumerSecret string) *WooCommerce {
	base := strings.TrimSuffix(shopURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	h := http.Header{}
	creds := base64.StdEncoding.EncodeToString([]byte(consumerKey + ":" + consumerSecret))
	h.Set("Authorization", "Basic "+creds)
	return &WooCommerce{
		baseURL: base + "/wp-json/wc/v3",
		httpc:   newHTTPClient(),
		header:  h,
	}
}

func (w *WooCommerce) TestConnection(ctx context.Context) error {
	// Single probe, never retried.
	if err := doJSON(ctx, w.httpc, http.MethodGet, w.baseURL+"/system_status", w.header, nil, &struct{}{}); err != nil {
		return &connector.ConnectionError{Side: "platform", Err: err}
	}
	return nil
}

// Fetch pages through the resource with the page parameter until a short
// page, or until limit records when limit > 0.
func (w *WooCommerce) Fetch(ctx context.Context, resource string, _ []string, limit int) ([]connector.Record, error) {
	if !wooSyncable[resource] {
		return nil, &connector.UnsupportedResourceError{Platform: "woocommerce", Resource: resource}
	}

	var all []connector.Record
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", fmt.Sprint(wooPageSize))
		q.Set("page", fmt.Sprint(page))

		var records []connector.Record
		reqURL := fmt.Sprintf("%s/%s?%s", w.baseURL, resource, q.Encode())
		err := connector.Backoff(ctx, retryBase, func() error {
			records = nil
			return doJSON(ctx, w.httpc, http.MethodGet, reqURL, w.header, nil, &records)
		}, connector.RetryableHTTP)
		if err != nil {
			return nil, err
		}

		all = append(all, records...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if len(records) < wooPageSize {
			return all, nil
		}
	}
}

func (w *WooCommerce) Write(ctx context.Context, resource string, rec connector.Record) error {
	if !wooSyncable[resource] {
		return &connector.UnsupportedResourceError{Platform: "woocommerce", Resource: resource}
	}
	reqURL := fmt.Sprintf("%s/%s", w.baseURL, resource)
	err := connector.Backoff(ctx, retryBase, func() error {
		return doJSON(ctx, w.httpc, http.MethodPost, reqURL, w.header, rec, nil)
	}, connector.RetryableHTTP)
	if err != nil {
		return &connector.WriteError{Collection: resource, Err: err}
	}
	return nil
}

func (w *WooCommerce) Close() error {
	w.httpc.CloseIdleConnections()
	return nil
}
