package domain

import "github.com/shopspring/decimal"

// FilterAll is the sentinel meaning "do not filter on this dimension".
const FilterAll = "all"

// DefaultPageSize bounds a sales page when the caller does not choose one.
const DefaultPageSize = 20

// VentasFilter is the current sales-list filter state. Dates travel as
// ISO calendar days (YYYY-MM-DD); empty means unbounded.
type VentasFilter struct {
	Query      string `json:"q,omitempty"`
	Desde      string `json:"from,omitempty"`
	Hasta      string `json:"to,omitempty"`
	MetodoPago string `json:"metodoPago,omitempty"`
	Canal      string `json:"canal,omitempty"`
	Estado     string `json:"estado,omitempty"`
	Page       int    `json:"page"`
	PageSize   int    `json:"limit"`
}

// NewVentasFilter returns the neutral filter: everything, first page.
func NewVentasFilter() VentasFilter {
	return VentasFilter{
		MetodoPago: FilterAll,
		Canal:      FilterAll,
		Estado:     FilterAll,
		Page:       1,
		PageSize:   DefaultPageSize,
	}
}

// ResumenVentas carries the backend-computed aggregate for the whole
// filtered result set, not just the loaded page.
type ResumenVentas struct {
	TotalImporte decimal.Decimal `json:"totalImporte"`
	TotalTickets int             `json:"totalTickets"`
}

// VentasPage is one page of normalized sales plus its result-set metadata.
type VentasPage struct {
	Items      []Venta       `json:"items"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
	Resumen    ResumenVentas `json:"resumen"`
}
