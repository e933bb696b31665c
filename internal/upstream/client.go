// Package upstream is the HTTP client for the Alef backend. All business
// logic (order processing, stock, invoicing, tax compliance) lives there;
// this gateway only reads.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/valenante/alef-gateway/internal/config"
	"github.com/valenante/alef-gateway/internal/domain"
)

const tenantHeader = "X-Tenant-ID"

// RawVentasPage is one page of sales exactly as the backend returns it.
type RawVentasPage struct {
	Items      []domain.RawVenta    `json:"items"`
	TotalItems int                  `json:"totalItems"`
	TotalPages int                  `json:"totalPages"`
	Resumen    domain.ResumenVentas `json:"resumen"`
}

// Client talks to the Alef backend over JSON/HTTPS, attaching credentials
// and the tenant header on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(cfg config.UpstreamConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
	}
}

// TenantMe resolves the tenant's metadata for the current session.
func (c *Client) TenantMe(ctx context.Context, tenantID string) (domain.Tenant, error) {
	var t domain.Tenant
	if err := c.getJSON(ctx, tenantID, "/meTenant/me", nil, &t); err != nil {
		return domain.Tenant{}, err
	}
	if t.ID == "" {
		t.ID = tenantID
	}
	return t, nil
}

// ListVentas fetches one page of sales for the tenant's business type.
// Sentinel "all" filters are omitted from the query string.
func (c *Client) ListVentas(ctx context.Context, t domain.Tenant, f domain.VentasFilter) (RawVentasPage, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Desde != "" {
		q.Set("from", f.Desde)
	}
	if f.Hasta != "" {
		q.Set("to", f.Hasta)
	}
	if f.MetodoPago != "" && f.MetodoPago != domain.FilterAll {
		q.Set("metodoPago", f.MetodoPago)
	}
	if f.Canal != "" && f.Canal != domain.FilterAll {
		q.Set("canal", f.Canal)
	}
	if f.Estado != "" && f.Estado != domain.FilterAll {
		q.Set("estado", f.Estado)
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.PageSize))

	var page RawVentasPage
	if err := c.getJSON(ctx, t.ID, ventasPath(t), q, &page); err != nil {
		return RawVentasPage{}, err
	}
	return page, nil
}

// FlatVentas fetches the unpaginated flat sales list the statistics
// aggregator consumes. The backend applies no date filtering here.
func (c *Client) FlatVentas(ctx context.Context, t domain.Tenant) ([]domain.VentaPlana, error) {
	path := "/ventas"
	if t.EffectiveBusinessType() == domain.BusinessTypeShop {
		path = "/shop/estadisticas/ventas"
	}

	var ventas []domain.VentaPlana
	if err := c.getJSON(ctx, t.ID, path, nil, &ventas); err != nil {
		return nil, err
	}
	return ventas, nil
}

func ventasPath(t domain.Tenant) string {
	if t.EffectiveBusinessType() == domain.BusinessTypeShop {
		return "/shop/ventas"
	}
	return "/ventas"
}

func (c *Client) getJSON(ctx context.Context, tenantID, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if tenantID != "" {
		req.Header.Set(tenantHeader, tenantID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return nil
}
