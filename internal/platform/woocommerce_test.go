package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/database/models"
	"github.com/RoyalLifeEgy/Sql-shopify-woo-connection/internal/connector"
)

func testWoo(srv *httptest.Server) *WooCommerce {
	w := NewWooCommerce("shop.example.com", "ck", "cs")
	w.baseURL = srv.URL
	w.httpc = srv.Client()
	return w
}

func TestWooFetchPagesUntilShortPage(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "ck", user)
		require.Equal(t, "cs", pass)
		pages = append(pages, r.URL.Query().Get("page"))

		var orders []map[string]any
		if r.URL.Query().Get("page") == "1" {
			for i := 1; i <= wooPageSize; i++ {
				orders = append(orders, map[string]any{"id": i})
			}
		} else {
			orders = []map[string]any{{"id": wooPageSize + 1}}
		}
		_ = json.NewEncoder(w).Encode(orders)
	}))
	defer srv.Close()

	records, err := testWoo(srv).Fetch(context.Background(), "orders", nil, 0)
	require.NoError(t, err)
	require.Len(t, records, wooPageSize+1)
	require.Equal(t, []string{"1", "2"}, pages)
}

func TestWooFetchUnsupportedResource(t *testing.T) {
	w := NewWooCommerce("shop.example.com", "ck", "cs")
	_, err := w.Fetch(context.Background(), "tax_rates", nil, 0)
	var uerr *connector.UnsupportedResourceError
	require.ErrorAs(t, err, &uerr)
}

func TestWooWritePostsRecord(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/products", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := testWoo(srv).Write(context.Background(), "products", connector.Record{"name": "Widget"})
	require.NoError(t, err)
	require.Equal(t, "Widget", got["name"])
}

func TestResourceRegistries(t *testing.T) {
	for _, pt := range []models.PlatformType{models.Shopify, models.WooCommerce} {
		names, err := Resources(pt)
		require.NoError(t, err)
		require.Contains(t, names, "products")

		fields, err := ResourceFields(pt, "products")
		require.NoError(t, err)
		require.Equal(t, "integer", fields["id"])
	}

	_, err := Resources(models.PlatformType("magento"))
	var perr *connector.UnsupportedPlatformError
	require.ErrorAs(t, err, &perr)
}
