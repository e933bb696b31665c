package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenante/alef-gateway/internal/cache"
	"github.com/valenante/alef-gateway/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(hour int) time.Time {
	return time.Date(2026, 8, 20, hour, 15, 0, 0, time.Local)
}

var productos = []domain.Producto{
	{ID: "p1", Nombre: "Café", Precio: dec("2")},
	{ID: "p2", Nombre: "Paella", Precio: dec("14")},
}

func sampleVentas() []domain.VentaPlana {
	return []domain.VentaPlana{
		{ID: "v1", ProductoID: "p1", Mesa: "3", Fecha: at(10), Cantidad: 2, Total: dec("50")},
		{ID: "v2", ProductoID: "p2", Mesa: "3", Fecha: at(14), Cantidad: 1, Total: dec("80")},
		{ID: "v3", ProductoID: "p2", Fecha: at(14), Cantidad: 1, Total: dec("10")},
		// Not in the product set, must be ignored everywhere.
		{ID: "v4", ProductoID: "zz", Fecha: at(9), Cantidad: 5, Total: dec("500")},
	}
}

func TestComputePerProduct(t *testing.T) {
	snap := Compute(productos, sampleVentas(), nil)

	require.Len(t, snap.Productos, 2)
	cafe, paella := snap.Productos[0], snap.Productos[1]
	assert.Equal(t, 2, cafe.Cantidad)
	assert.True(t, cafe.Ingresos.Equal(dec("50")))
	assert.Equal(t, 2, paella.Cantidad)
	assert.True(t, paella.Ingresos.Equal(dec("90")))
	assert.Equal(t, 2, paella.NumVentas)
}

func TestComputeResumen(t *testing.T) {
	snap := Compute(productos, sampleVentas(), nil)

	assert.Equal(t, 4, snap.Resumen.Cantidad)
	assert.True(t, snap.Resumen.Ingresos.Equal(dec("140")))
	assert.True(t, snap.Resumen.PrecioMedioUnitario.Equal(dec("35")))
}

func TestComputeResumenNoSales(t *testing.T) {
	snap := Compute(productos, nil, nil)
	assert.Zero(t, snap.Resumen.Cantidad)
	assert.True(t, snap.Resumen.PrecioMedioUnitario.IsZero())
	assert.Nil(t, snap.HoraPico)
	assert.Len(t, snap.PorHora, 24)
}

func TestComputePorMesa(t *testing.T) {
	snap := Compute(productos, sampleVentas(), nil)

	require.Len(t, snap.PorMesa, 2)
	assert.Equal(t, "3", snap.PorMesa[0].Mesa)
	assert.True(t, snap.PorMesa[0].Ingresos.Equal(dec("130")))
	assert.Equal(t, 2, snap.PorMesa[0].Tickets)
	assert.Equal(t, domain.MesaSinAsignar, snap.PorMesa[1].Mesa)
	assert.True(t, snap.PorMesa[1].Ingresos.Equal(dec("10")))
}

func TestComputePeakHour(t *testing.T) {
	snap := Compute(productos, sampleVentas(), nil)

	require.Len(t, snap.PorHora, 24)
	assert.True(t, snap.PorHora[14].Ingresos.Equal(dec("90")))
	assert.True(t, snap.PorHora[10].Ingresos.Equal(dec("50")))
	require.NotNil(t, snap.HoraPico)
	assert.Equal(t, 14, *snap.HoraPico)
}

func TestComputeTopProducts(t *testing.T) {
	many := make([]domain.Producto, 0, 7)
	ventas := make([]domain.VentaPlana, 0, 7)
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		many = append(many, domain.Producto{ID: id, Nombre: id})
		ventas = append(ventas, domain.VentaPlana{
			ID: id, ProductoID: id, Fecha: at(12), Cantidad: 1,
			Total: decimal.NewFromInt(int64(i * 10)),
		})
	}

	snap := Compute(many, ventas, nil)
	require.Len(t, snap.TopProductos, 5)
	assert.Equal(t, "g", snap.TopProductos[0].Producto.ID)
	for i := 1; i < len(snap.TopProductos); i++ {
		assert.False(t, snap.TopProductos[i].Ingresos.GreaterThan(snap.TopProductos[i-1].Ingresos))
	}
}

func TestComputeDayFilter(t *testing.T) {
	otherDay := time.Date(2026, 8, 21, 12, 0, 0, 0, time.Local)
	ventas := append(sampleVentas(), domain.VentaPlana{
		ID: "v5", ProductoID: "p1", Fecha: otherDay, Cantidad: 9, Total: dec("900"),
	})

	dia := time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local)
	snap := Compute(productos, ventas, &dia)
	assert.True(t, snap.Resumen.Ingresos.Equal(dec("140")))
}

func TestComputeIdempotent(t *testing.T) {
	dia := time.Date(2026, 8, 20, 0, 0, 0, 0, time.Local)
	a := Compute(productos, sampleVentas(), &dia)
	b := Compute(productos, sampleVentas(), &dia)

	assert.Equal(t, a.Resumen, b.Resumen)
	assert.Equal(t, a.PorHora, b.PorHora)
	assert.Equal(t, a.TopProductos, b.TopProductos)
	assert.Equal(t, a.PorMesa, b.PorMesa)
}

type fakeFlatSource struct {
	ventas []domain.VentaPlana
	err    error
}

func (f *fakeFlatSource) FlatVentas(context.Context, domain.Tenant) ([]domain.VentaPlana, error) {
	return f.ventas, f.err
}

func TestAggregatorSuppressPolicy(t *testing.T) {
	source := &fakeFlatSource{err: errors.New("backend down")}
	agg := NewAggregator(source, cache.NewNoopStatsCache(), ErrorPolicySuppress)

	snap, err := agg.Categoria(context.Background(), domain.Tenant{ID: "acme"}, productos, nil)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Zero(t, snap.Resumen.Cantidad)
	assert.Len(t, snap.PorHora, 24)
	assert.Len(t, snap.Productos, 2)
}

func TestAggregatorPropagatePolicy(t *testing.T) {
	source := &fakeFlatSource{err: errors.New("backend down")}
	agg := NewAggregator(source, cache.NewNoopStatsCache(), ErrorPolicyPropagate)

	_, err := agg.Categoria(context.Background(), domain.Tenant{ID: "acme"}, productos, nil)
	assert.Error(t, err)
}

func TestAggregatorHappyPath(t *testing.T) {
	source := &fakeFlatSource{ventas: sampleVentas()}
	agg := NewAggregator(source, cache.NewNoopStatsCache(), ErrorPolicySuppress)

	snap, err := agg.Categoria(context.Background(), domain.Tenant{ID: "acme"}, productos, nil)
	require.NoError(t, err)
	assert.True(t, snap.Resumen.Ingresos.Equal(dec("140")))
}
