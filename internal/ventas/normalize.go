// Package ventas owns the sales-query side of the gateway: the page
// engine, the record normalizer and the CSV export.
package ventas

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/valenante/alef-gateway/internal/domain"
)

const resumenMaxItems = 3

// NormalizeVenta maps either raw backend sale shape onto the canonical
// record. It is pure and total: malformed input yields zeroed numeric
// fields, never an error.
func NormalizeVenta(raw domain.RawVenta) domain.Venta {
	v := domain.Venta{
		ID:         raw.ID,
		Fecha:      raw.Fecha,
		MetodoPago: orPlaceholder(raw.MetodoPago),
		Canal:      orPlaceholder(raw.Canal),
		Estado:     domain.EstadoEmitida,
	}
	if raw.Anulada {
		v.Estado = domain.EstadoAnulada
	}

	if len(raw.Lines) > 0 {
		v.LineasCount = len(raw.Lines)
		v.Total = lineTotal(raw)
		v.ItemsCount = itemCount(raw.Lines)
		v.Resumen = lineResumen(raw.Lines)
		return v
	}

	// Legacy restaurant shape: one product, one quantity per record.
	v.Total = clampMoney(raw.Total)
	if raw.Cantidad > 0 {
		v.ItemsCount = raw.Cantidad
	}
	if raw.Producto != nil {
		v.LineasCount = 1
		v.Resumen = raw.Producto.Nombre
	}
	return v
}

// NormalizeAll maps a raw page into canonical records, always returning a
// non-nil slice.
func NormalizeAll(raws []domain.RawVenta) []domain.Venta {
	out := make([]domain.Venta, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeVenta(raw))
	}
	return out
}

// lineTotal trusts a backend-provided positive total; otherwise it sums
// per-line subtotals, falling back to precio × cantidad per line.
func lineTotal(raw domain.RawVenta) decimal.Decimal {
	if raw.Total.IsPositive() {
		return raw.Total
	}
	sum := decimal.Zero
	for _, line := range raw.Lines {
		if line.Total.IsPositive() {
			sum = sum.Add(line.Total)
			continue
		}
		if line.Cantidad > 0 {
			sum = sum.Add(line.PrecioUnitario.Mul(decimal.NewFromInt(int64(line.Cantidad))))
		}
	}
	return clampMoney(sum)
}

func itemCount(lines []domain.RawLineaVenta) int {
	count := 0
	for _, line := range lines {
		if line.Cantidad > 0 {
			count += line.Cantidad
		}
	}
	return count
}

func lineResumen(lines []domain.RawLineaVenta) string {
	names := make([]string, 0, resumenMaxItems)
	for _, line := range lines {
		if line.Nombre == "" {
			continue
		}
		names = append(names, line.Nombre)
		if len(names) == resumenMaxItems {
			break
		}
	}
	return strings.Join(names, " · ")
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return domain.PlaceholderValue
	}
	return value
}

func clampMoney(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
