package reports

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/upstream"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type pagedSource struct {
	mu    sync.Mutex
	pages map[int][]domain.RawVenta
	calls []domain.VentasFilter
}

func (s *pagedSource) ListVentas(_ context.Context, _ domain.Tenant, f domain.VentasFilter) (upstream.RawVentasPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, f)
	s.mu.Unlock()
	return upstream.RawVentasPage{
		Items:      s.pages[f.Page],
		TotalPages: len(s.pages),
	}, nil
}

func venta(id, metodo string, hour int, total string, anulada bool) domain.RawVenta {
	return domain.RawVenta{
		ID:         id,
		Fecha:      time.Date(2026, 8, 20, hour, 5, 0, 0, time.Local),
		MetodoPago: metodo,
		Anulada:    anulada,
		Producto:   &domain.RawProducto{ID: "p", Nombre: "Menú"},
		Cantidad:   1,
		Total:      dec(total),
	}
}

func TestBuilderDaily(t *testing.T) {
	source := &pagedSource{pages: map[int][]domain.RawVenta{
		1: {
			venta("v1", "tarjeta", 13, "20", false),
			venta("v2", "efectivo", 13, "10", false),
		},
		2: {
			venta("v3", "tarjeta", 21, "15", false),
			venta("v4", "tarjeta", 21, "99", true),
		},
	}}

	dia := time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local)
	report, err := NewBuilder(source).Daily(context.Background(), domain.Tenant{ID: "acme"}, dia)
	require.NoError(t, err)

	assert.Equal(t, "acme", report.TenantID)
	assert.Equal(t, "2026-08-20", report.Fecha)
	assert.Equal(t, 4, report.Tickets)
	assert.Equal(t, 1, report.Anuladas)
	// Voided sales never add to money totals.
	assert.True(t, report.Total.Equal(dec("45")))

	require.Len(t, report.PorMetodo, 2)
	assert.Equal(t, "tarjeta", report.PorMetodo[0].Metodo)
	assert.True(t, report.PorMetodo[0].Total.Equal(dec("35")))
	assert.Equal(t, 2, report.PorMetodo[0].Tickets)
	assert.Equal(t, "efectivo", report.PorMetodo[1].Metodo)

	require.Len(t, report.PorHora, 24)
	assert.True(t, report.PorHora[13].Ingresos.Equal(dec("30")))
	assert.True(t, report.PorHora[21].Ingresos.Equal(dec("15")))

	// Both pages were requested, scoped to the single day.
	require.Len(t, source.calls, 2)
	assert.Equal(t, "2026-08-20", source.calls[0].Desde)
	assert.Equal(t, "2026-08-20", source.calls[0].Hasta)
}

func TestBuilderDailyEmptyDay(t *testing.T) {
	source := &pagedSource{pages: map[int][]domain.RawVenta{1: {}}}

	report, err := NewBuilder(source).Daily(context.Background(), domain.Tenant{ID: "acme"}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, report.Tickets)
	assert.True(t, report.Total.IsZero())
	assert.Empty(t, report.PorMetodo)
	assert.Len(t, report.PorHora, 24)
	assert.NotEmpty(t, report.ID)
}

func TestCajaRenderers(t *testing.T) {
	source := &pagedSource{pages: map[int][]domain.RawVenta{
		1: {venta("v1", "tarjeta", 12, "20", false)},
	}}
	report, err := NewBuilder(source).Daily(context.Background(), domain.Tenant{ID: "acme"},
		time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)

	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSV(&csvBuf, report))
	assert.Contains(t, csvBuf.String(), "tarjeta,1,20.00")

	var xlsxBuf bytes.Buffer
	require.NoError(t, WriteXLSX(&xlsxBuf, report))
	assert.NotZero(t, xlsxBuf.Len())

	assert.Equal(t, "caja_acme_2026-08-20.csv", CSVFilename(report))
	assert.Equal(t, "caja_acme_2026-08-20.xlsx", XLSXFilename(report))
}
