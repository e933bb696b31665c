package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenante/alef-gateway/internal/config"
	"github.com/valenante/alef-gateway/internal/domain"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(config.UpstreamConfig{BaseURL: srv.URL, Token: "secreto"})
	return client, srv
}

func TestListVentasRequestShape(t *testing.T) {
	var got *http.Request
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[],"totalItems":0,"totalPages":0}`))
	})
	defer srv.Close()

	filter := domain.NewVentasFilter()
	filter.Query = "cafe"
	filter.MetodoPago = "tarjeta"
	filter.Page = 3

	_, err := client.ListVentas(context.Background(), domain.Tenant{ID: "acme"}, filter)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/ventas", got.URL.Path)
	assert.Equal(t, "acme", got.Header.Get("X-Tenant-ID"))
	assert.Equal(t, "Bearer secreto", got.Header.Get("Authorization"))

	q := got.URL.Query()
	assert.Equal(t, "cafe", q.Get("q"))
	assert.Equal(t, "tarjeta", q.Get("metodoPago"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "20", q.Get("limit"))
	// "all" sentinels never reach the wire.
	assert.Empty(t, q.Get("canal"))
	assert.Empty(t, q.Get("estado"))
}

func TestListVentasShopNamespace(t *testing.T) {
	var gotPath string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"items":[],"totalItems":0,"totalPages":0}`))
	})
	defer srv.Close()

	shop := domain.Tenant{ID: "acme", BusinessType: domain.BusinessTypeShop}
	_, err := client.ListVentas(context.Background(), shop, domain.NewVentasFilter())
	require.NoError(t, err)
	assert.Equal(t, "/shop/ventas", gotPath)
}

func TestListVentasBackendError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := client.ListVentas(context.Background(), domain.Tenant{ID: "acme"}, domain.NewVentasFilter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestTenantMeFallsBackToRequestedID(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meTenant/me", r.URL.Path)
		w.Write([]byte(`{"nombre":"Acme Bar"}`))
	})
	defer srv.Close()

	tenant, err := client.TenantMe(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.ID)
	assert.Equal(t, "Acme Bar", tenant.Nombre)
}

func TestFlatVentasShopNamespace(t *testing.T) {
	var gotPath string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	shop := domain.Tenant{ID: "acme", BusinessType: domain.BusinessTypeShop}
	_, err := client.FlatVentas(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, "/shop/estadisticas/ventas", gotPath)
}
