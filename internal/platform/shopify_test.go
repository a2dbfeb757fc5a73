package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

func testShopify(srv *httptest.Server) *Shopify {
	s := NewShopify("test-shop.myshopify.com", "tok")
	s.baseURL = srv.URL
	s.httpc = srv.Client()
	return s
}

func TestShopifyFetchPagesUntilShortPage(t *testing.T) {
	var sinceIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products.json", r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("X-Shopify-Access-Token"))
		sinceIDs = append(sinceIDs, r.URL.Query().Get("since_id"))

		var products []map[string]any
		if r.URL.Query().Get("since_id") == "" {
			// Full first page.
			for i := 1; i <= shopifyPageSize; i++ {
				products = append(products, map[string]any{"id": i, "title": fmt.Sprintf("p%d", i)})
			}
		} else {
			products = []map[string]any{{"id": shopifyPageSize + 1, "title": "last"}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products})
	}))
	defer srv.Close()

	records, err := testShopify(srv).Fetch(context.Background(), "products", nil, 0)
	require.NoError(t, err)
	require.Len(t, records, shopifyPageSize+1)
	require.Equal(t, []string{"", "250"}, sinceIDs)
	require.Equal(t, "last", records[shopifyPageSize]["title"])
}

func TestShopifyFetchStallingCursorTerminates(t *testing.T) {
	// A server that replays the same full page forever: the max id never
	// advances past the cursor, so the loop must stop instead of spinning.
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var products []map[string]any
		for i := 1; i <= shopifyPageSize; i++ {
			products = append(products, map[string]any{"id": i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products})
	}))
	defer srv.Close()

	records, err := testShopify(srv).Fetch(context.Background(), "products", nil, 0)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, records, 2*shopifyPageSize)
}

func TestShopifyFetchHonorsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var products []map[string]any
		for i := 1; i <= shopifyPageSize; i++ {
			products = append(products, map[string]any{"id": i})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products})
	}))
	defer srv.Close()

	records, err := testShopify(srv).Fetch(context.Background(), "products", nil, 10)
	require.NoError(t, err)
	require.Len(t, records, 10)
}

func TestShopifyFetchUnsupportedResource(t *testing.T) {
	s := NewShopify("test-shop.myshopify.com", "tok")
	_, err := s.Fetch(context.Background(), "inventory_levels", nil, 0)
	var uerr *connector.UnsupportedResourceError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, "inventory_levels", uerr.Resource)
}

func TestShopifyWriteWrapsInSingularEnvelope(t *testing.T) {
	var got map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/products.json", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testShopify(srv).Write(context.Background(), "products", connector.Record{"title": "Widget"})
	require.NoError(t, err)
	require.Equal(t, "Widget", got["product"]["title"])
}

func TestShopifyWriteClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unprocessable", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := testShopify(srv).Write(context.Background(), "products", connector.Record{"title": "Widget"})
	var werr *connector.WriteError
	require.ErrorAs(t, err, &werr)
	require.Equal(t, 1, calls)
}

func TestShopifyTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shop.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"shop":{"name":"test"}}`))
	}))
	defer srv.Close()

	require.NoError(t, testShopify(srv).TestConnection(context.Background()))
}

func TestShopifyTestConnectionFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testShopify(srv).TestConnection(context.Background())
	var cerr *connector.ConnectionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, 1, calls)
}
