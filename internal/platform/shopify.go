package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

const (
	shopifyAPIVersion = "2024-01"
	shopifyPageSize   = 250
)

type shopifyResource struct {
	path     string // list/create endpoint, e.g. "products.json"
	envelope string // response envelope key, e.g. "products"
	singular string // create payload key, e.g. "product"
	params   url.Values
}

// Resources the Shopify binding can actually fetch from or create on.
var shopifySyncable = map[string]shopifyResource{
	"products":  {path: "products.json", envelope: "products", singular: "product"},
	"orders":    {path: "orders.json", envelope: "orders", singular: "order", params: url.Values{"status": {"any"}}},
	"customers": {path: "customers.json", envelope: "customers", singular: "customer"},
}

// Shopify talks to the Shopify Admin REST API.
type Shopify struct {
	baseURL string
	httpc   *http.Client
	header  http.Header
}

func NewShopify(shopURL, accessToken string) *Shopify {
	shop := strings.TrimPrefix(strings.TrimPrefix(shopURL, "https://"), "http://")
	shop = strings.TrimSuffix(shop, "/")
	h := http.Header{}
	h.Set("X-Shopify-Access-Token", accessToken)
	return &Shopify{
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", shop, shopifyAPIVersion),
		httpc:   newHTTPClient(),
		header:  h,
	}
}

func (s *Shopify) TestConnection(ctx context.Context) error {
	// Single probe, never retried.
	if err := doJSON(ctx, s.httpc, http.MethodGet, s.baseURL+"/shop.json", s.header, nil, &struct{}{}); err != nil {
		return &connector.ConnectionError{Side: "platform", Err: err}
	}
	return nil
}

// Fetch pages through the resource's list endpoint with since_id until a
// short page, or until limit records when limit > 0. The fields projection
// is ignored here; the platform always returns full records.
func (s *Shopify) Fetch(ctx context.Context, resource string, _ []string, limit int) ([]connector.Record, error) {
	res, ok := shopifySyncable[resource]
	if !ok {
		return nil, &connector.UnsupportedResourceError{Platform: "shopify", Resource: resource}
	}

	var all []connector.Record
	sinceID := int64(0)
	for {
		q := url.Values{}
		for k, vs := range res.params {
			q[k] = vs
		}
		q.Set("limit", fmt.Sprint(shopifyPageSize))
		if sinceID > 0 {
			q.Set("since_id", fmt.Sprint(sinceID))
		}

		var page map[string][]connector.Record
		reqURL := fmt.Sprintf("%s/%s?%s", s.baseURL, res.path, q.Encode())
		err := connector.Backoff(ctx, retryBase, func() error {
			page = nil
			return doJSON(ctx, s.httpc, http.MethodGet, reqURL, s.header, nil, &page)
		}, connector.RetryableHTTP)
		if err != nil {
			return nil, err
		}

		records := page[res.envelope]
		all = append(all, records...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if len(records) < shopifyPageSize {
			return all, nil
		}
		last, ok := recordID(records[len(records)-1])
		// Stop when the cursor cannot advance, so a server that replays the
		// same full page cannot trap the loop.
		if !ok || last <= sinceID {
			return all, nil
		}
		sinceID = last
	}
}

func (s *Shopify) Write(ctx context.Context, resource string, rec connector.Record) error {
	res, ok := shopifySyncable[resource]
	if !ok {
		return &connector.UnsupportedResourceError{Platform: "shopify", Resource: resource}
	}
	payload := map[string]connector.Record{res.singular: rec}
	reqURL := fmt.Sprintf("%s/%s", s.baseURL, res.path)
	err := connector.Backoff(ctx, retryBase, func() error {
		return doJSON(ctx, s.httpc, http.MethodPost, reqURL, s.header, payload, nil)
	}, connector.RetryableHTTP)
	if err != nil {
		return &connector.WriteError{Collection: resource, Err: err}
	}
	return nil
}

func (s *Shopify) Close() error {
	s.httpc.CloseIdleConnections()
	return nil
}

func recordID(rec connector.Record) (int64, bool) {
	switch v := rec["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
