package domain

import "github.com/shopspring/decimal"

// ProductoStats annotates a catalog product with its totals for the
// selected period.
type ProductoStats struct {
	Producto  Producto        `json:"producto"`
	Cantidad  int             `json:"cantidadTotal"`
	Ingresos  decimal.Decimal `json:"ingresosTotales"`
	NumVentas int             `json:"numVentas"`
}

// ResumenCategoria is the aggregate over every product in the snapshot.
type ResumenCategoria struct {
	Cantidad            int             `json:"cantidadTotal"`
	Ingresos            decimal.Decimal `json:"ingresosTotales"`
	PrecioMedioUnitario decimal.Decimal `json:"precioMedioUnitario"`
}

// MesaStats aggregates sales per table. Sales without a table land in the
// MesaSinAsignar bucket.
type MesaStats struct {
	Mesa     string          `json:"mesa"`
	Cantidad int             `json:"cantidadTotal"`
	Ingresos decimal.Decimal `json:"ingresosTotales"`
	Tickets  int             `json:"ticketCount"`
}

// MesaSinAsignar is the per-table bucket for sales with no table number.
const MesaSinAsignar = "Sin mesa"

// HoraStats is one slot of the fixed 24-entry per-hour breakdown.
type HoraStats struct {
	Hora     int             `json:"hora"`
	Cantidad int             `json:"cantidadTotal"`
	Ingresos decimal.Decimal `json:"totalIngresos"`
}

// CategoriaSnapshot is everything the category statistics view needs,
// recomputed in full from its inputs on every request.
type CategoriaSnapshot struct {
	Productos    []ProductoStats  `json:"productsWithStats"`
	Resumen      ResumenCategoria `json:"categorySummary"`
	PorMesa      []MesaStats      `json:"statsByTable"`
	PorHora      []HoraStats      `json:"statsByHour"`
	HoraPico     *int             `json:"peakHour"`
	TopProductos []ProductoStats  `json:"topProducts"`
}
