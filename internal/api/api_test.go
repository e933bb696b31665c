package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenante/alef-gateway/internal/cache"
	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/reports"
	"github.com/valenante/alef-gateway/internal/stats"
	"github.com/valenante/alef-gateway/internal/storage"
	"github.com/valenante/alef-gateway/internal/tenant"
	"github.com/valenante/alef-gateway/internal/upstream"
)

// fakeBackend stands in for the whole upstream Alef service.
type fakeBackend struct {
	tenants map[string]domain.Tenant
}

func (f *fakeBackend) TenantMe(_ context.Context, tenantID string) (domain.Tenant, error) {
	t, ok := f.tenants[tenantID]
	if !ok {
		return domain.Tenant{}, errors.New("tenant not found")
	}
	return t, nil
}

func (f *fakeBackend) ListVentas(_ context.Context, _ domain.Tenant, _ domain.VentasFilter) (upstream.RawVentasPage, error) {
	return upstream.RawVentasPage{
		Items: []domain.RawVenta{
			{
				ID:         "v1",
				Fecha:      time.Date(2026, 8, 20, 13, 0, 0, 0, time.Local),
				MetodoPago: "tarjeta",
				Canal:      "local",
				Producto:   &domain.RawProducto{ID: "p1", Nombre: "Menú"},
				Cantidad:   1,
				Total:      decimal.NewFromInt(20),
			},
		},
		TotalItems: 1,
		TotalPages: 1,
	}, nil
}

func (f *fakeBackend) FlatVentas(_ context.Context, _ domain.Tenant) ([]domain.VentaPlana, error) {
	return []domain.VentaPlana{
		{ID: "v1", ProductoID: "p1", Fecha: time.Date(2026, 8, 20, 13, 0, 0, 0, time.Local),
			Cantidad: 1, Total: decimal.NewFromInt(20)},
	}, nil
}

// fakeArchive keeps uploaded exports in memory.
type fakeArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string][]byte)}
}

func (f *fakeArchive) Upload(_ context.Context, key, _ string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeArchive) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeArchive) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &fakeBackend{tenants: map[string]domain.Tenant{
		"acme": {ID: "acme", Nombre: "Acme", BusinessType: domain.BusinessTypeRestaurant},
	}}

	tenants := tenant.NewService(tenant.NewMemoryStore(), backend, nil)
	aggregator := stats.NewAggregator(backend, cache.NewNoopStatsCache(), stats.ErrorPolicySuppress)

	return NewRouter(Deps{
		Tenants: tenants,
		Ventas:  backend,
		Stats:   aggregator,
		Caja:    reports.NewBuilder(backend),
		Archive: newFakeArchive(),
	}, nil)
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Session-ID", "test-session")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionResolve(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/session/resolve", `{"path":"/tpv/acme/mesas"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tenantId":"acme"`)

	w = doRequest(router, http.MethodPost, "/api/v1/session/resolve", `{"path":"/login"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"public":true`)

	w = doRequest(router, http.MethodPost, "/api/v1/session/resolve", `{"path":"/dashboard"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tenantId":null`)
}

func TestVentasList(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/acme/ventas?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":1`)
	assert.Contains(t, w.Body.String(), `"metodosPago":["tarjeta"]`)
}

func TestVentasListReservedSlug(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/dashboard/ventas", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVentasListUnknownTenant(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/nadie/ventas", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestVentasExport(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/acme/ventas/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ventas_acme_")
	assert.Contains(t, w.Body.String(), "id,fecha,metodoPago")
}

func TestExportArchiveRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	// Exporting archives a copy under the tenant's prefix.
	w := doRequest(router, http.MethodGet, "/api/v1/t/acme/ventas/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()

	w = doRequest(router, http.MethodGet, "/api/v1/t/acme/exports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ventas_acme_")

	filename := "ventas_acme_" + time.Now().Format("2006-01-02") + ".csv"
	w = doRequest(router, http.MethodGet, "/api/v1/t/acme/exports/"+filename, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, exported, w.Body.String())
}

func TestDownloadExportMissing(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/acme/exports/no-such.csv", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantMe(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/acme/tenant", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nombre":"Acme"`)
}

func TestEstadisticasCategoria(t *testing.T) {
	body := `{"productos":[{"id":"p1","nombre":"Menú"}]}`
	w := doRequest(newTestRouter(t), http.MethodPost, "/api/v1/t/acme/estadisticas/categoria", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"peakHour":13`)
}

func TestCajaDiaria(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/t/acme/caja-diaria?fecha=2026-08-20", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tickets":1`)
}

func TestSuperadminWithoutRegistry(t *testing.T) {
	w := doRequest(newTestRouter(t), http.MethodGet, "/api/v1/superadmin/tenants", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogout(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/api/v1/t/acme/ventas", "").Code)

	w := doRequest(router, http.MethodDelete, "/api/v1/session", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
