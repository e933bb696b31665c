package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoVenta is the lifecycle state of a normalized sale.
type EstadoVenta string

const (
	EstadoEmitida EstadoVenta = "emitida"
	EstadoAnulada EstadoVenta = "anulada"
)

// PlaceholderValue is shown for missing payment method / channel fields.
const PlaceholderValue = "—"

// RawLineaVenta is one product line of a shop-style sale as the upstream
// backend serializes it.
type RawLineaVenta struct {
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precioUnitario"`
	Total          decimal.Decimal `json:"total"`
}

// RawProducto is the single product of a legacy restaurant-style sale.
type RawProducto struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// RawVenta covers both upstream sale shapes. Shop sales carry Lines;
// legacy restaurant sales carry Producto/Cantidad instead.
type RawVenta struct {
	ID         string          `json:"id"`
	Fecha      time.Time       `json:"fecha"`
	MetodoPago string          `json:"metodoPago"`
	Canal      string          `json:"canal"`
	Anulada    bool            `json:"anulada"`
	Total      decimal.Decimal `json:"total"`
	Lines      []RawLineaVenta `json:"lines,omitempty"`
	Producto   *RawProducto    `json:"producto,omitempty"`
	Cantidad   int             `json:"cantidad,omitempty"`
	Mesa       string          `json:"mesa,omitempty"`
}

// Venta is the canonical sale record every view works with, produced by
// NormalizeVenta from either raw shape.
type Venta struct {
	ID          string          `json:"id"`
	Fecha       time.Time       `json:"fecha"`
	MetodoPago  string          `json:"metodoPago"`
	Canal       string          `json:"canal"`
	Estado      EstadoVenta     `json:"estado"`
	LineasCount int             `json:"lineasCount"`
	ItemsCount  int             `json:"itemsCount"`
	Total       decimal.Decimal `json:"total"`
	Resumen     string          `json:"resumen"`
}

// VentaPlana is the flat per-product sale record consumed by the
// statistics aggregator.
type VentaPlana struct {
	ID         string          `json:"id"`
	ProductoID string          `json:"productoId"`
	Nombre     string          `json:"nombre"`
	Mesa       string          `json:"mesa"`
	Fecha      time.Time       `json:"fecha"`
	Cantidad   int             `json:"cantidad"`
	Total      decimal.Decimal `json:"total"`
}

// Producto is the catalog entry the statistics endpoints annotate.
type Producto struct {
	ID     string          `json:"id"`
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
}
