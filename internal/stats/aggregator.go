// Package stats derives category statistics from the tenant's flat sales
// list, entirely in memory.
package stats

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/valenante/alef-gateway/internal/cache"
	"github.com/valenante/alef-gateway/internal/domain"
)

// ErrorPolicy decides what a failed sales fetch does to the caller.
type ErrorPolicy int

const (
	// ErrorPolicySuppress keeps stats best-effort: a failed fetch logs a
	// warning and yields zeroed statistics instead of an error.
	ErrorPolicySuppress ErrorPolicy = iota
	// ErrorPolicyPropagate fails the request instead. Used by the CLI.
	ErrorPolicyPropagate
)

// FlatSource produces the unpaginated flat sales list for a tenant.
type FlatSource interface {
	FlatVentas(ctx context.Context, t domain.Tenant) ([]domain.VentaPlana, error)
}

// Aggregator computes the category snapshot: per-product, per-table and
// per-hour totals plus peak hour and top products.
type Aggregator struct {
	source FlatSource
	cache  cache.StatsCache
	policy ErrorPolicy
}

func NewAggregator(source FlatSource, statsCache cache.StatsCache, policy ErrorPolicy) *Aggregator {
	if statsCache == nil {
		statsCache = cache.NewNoopStatsCache()
	}
	return &Aggregator{source: source, cache: statsCache, policy: policy}
}

// Categoria fetches the tenant's flat sales once and derives every view.
// When dia is non-nil, only sales on that calendar day count; the match
// is done in the process-local timezone, same as the admin UI always did.
func (a *Aggregator) Categoria(ctx context.Context, t domain.Tenant, productos []domain.Producto, dia *time.Time) (*domain.CategoriaSnapshot, error) {
	day := ""
	if dia != nil {
		day = dia.Format("2006-01-02")
	}
	ids := productIDs(productos)

	if snap, ok, err := a.cache.Get(ctx, t.ID, ids, day); err == nil && ok {
		return snap, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("stats: cache get failed")
	}

	ventas, err := a.source.FlatVentas(ctx, t)
	if err != nil {
		if a.policy == ErrorPolicyPropagate {
			return nil, err
		}
		log.Warn().Err(err).Str("tenant", t.ID).Msg("stats: sales fetch failed, serving empty stats")
		ventas = nil
	}

	snap := Compute(productos, ventas, dia)

	if err := a.cache.Set(ctx, t.ID, ids, day, snap); err != nil {
		log.Warn().Err(err).Msg("stats: cache set failed")
	}
	return snap, nil
}

// Compute is the pure aggregation over already-fetched sales. Calling it
// twice with the same inputs yields identical snapshots.
func Compute(productos []domain.Producto, ventas []domain.VentaPlana, dia *time.Time) *domain.CategoriaSnapshot {
	relevant := filterVentas(productos, ventas, dia)

	porProducto := make(map[string][]domain.VentaPlana, len(productos))
	for _, v := range relevant {
		porProducto[v.ProductoID] = append(porProducto[v.ProductoID], v)
	}

	snap := &domain.CategoriaSnapshot{
		Productos:    make([]domain.ProductoStats, 0, len(productos)),
		PorHora:      emptyHours(),
		PorMesa:      []domain.MesaStats{},
		TopProductos: []domain.ProductoStats{},
	}

	totalCantidad := 0
	totalIngresos := decimal.Zero
	for _, p := range productos {
		ps := domain.ProductoStats{Producto: p, Ingresos: decimal.Zero}
		for _, v := range porProducto[p.ID] {
			ps.Cantidad += v.Cantidad
			ps.Ingresos = ps.Ingresos.Add(v.Total)
			ps.NumVentas++
		}
		totalCantidad += ps.Cantidad
		totalIngresos = totalIngresos.Add(ps.Ingresos)
		snap.Productos = append(snap.Productos, ps)
	}

	snap.Resumen = domain.ResumenCategoria{
		Cantidad:            totalCantidad,
		Ingresos:            totalIngresos,
		PrecioMedioUnitario: decimal.Zero,
	}
	if totalCantidad > 0 {
		snap.Resumen.PrecioMedioUnitario = totalIngresos.Div(decimal.NewFromInt(int64(totalCantidad)))
	}

	snap.PorMesa = mesaStats(relevant)
	snap.PorHora, snap.HoraPico = horaStats(relevant)
	snap.TopProductos = topProductos(snap.Productos, 5)
	return snap
}

func filterVentas(productos []domain.Producto, ventas []domain.VentaPlana, dia *time.Time) []domain.VentaPlana {
	ids := make(map[string]struct{}, len(productos))
	for _, p := range productos {
		ids[p.ID] = struct{}{}
	}

	out := make([]domain.VentaPlana, 0, len(ventas))
	for _, v := range ventas {
		if _, ok := ids[v.ProductoID]; !ok {
			continue
		}
		if dia != nil && !sameLocalDay(v.Fecha, *dia) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func mesaStats(ventas []domain.VentaPlana) []domain.MesaStats {
	porMesa := make(map[string]*domain.MesaStats)
	for _, v := range ventas {
		mesa := v.Mesa
		if mesa == "" {
			mesa = domain.MesaSinAsignar
		}
		entry, ok := porMesa[mesa]
		if !ok {
			entry = &domain.MesaStats{Mesa: mesa, Ingresos: decimal.Zero}
			porMesa[mesa] = entry
		}
		entry.Cantidad += v.Cantidad
		entry.Ingresos = entry.Ingresos.Add(v.Total)
		entry.Tickets++
	}

	out := make([]domain.MesaStats, 0, len(porMesa))
	for _, entry := range porMesa {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Ingresos.Equal(out[j].Ingresos) {
			return out[i].Ingresos.GreaterThan(out[j].Ingresos)
		}
		return out[i].Mesa < out[j].Mesa
	})
	return out
}

func horaStats(ventas []domain.VentaPlana) ([]domain.HoraStats, *int) {
	hours := emptyHours()
	for _, v := range ventas {
		h := v.Fecha.Local().Hour()
		hours[h].Cantidad += v.Cantidad
		hours[h].Ingresos = hours[h].Ingresos.Add(v.Total)
	}

	if len(ventas) == 0 {
		return hours, nil
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if hours[h].Ingresos.GreaterThan(hours[peak].Ingresos) {
			peak = h
		}
	}
	return hours, &peak
}

func topProductos(all []domain.ProductoStats, n int) []domain.ProductoStats {
	ranked := make([]domain.ProductoStats, len(all))
	copy(ranked, all)
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Ingresos.Equal(ranked[j].Ingresos) {
			return ranked[i].Ingresos.GreaterThan(ranked[j].Ingresos)
		}
		return ranked[i].Producto.Nombre < ranked[j].Producto.Nombre
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func emptyHours() []domain.HoraStats {
	hours := make([]domain.HoraStats, 24)
	for h := range hours {
		hours[h] = domain.HoraStats{Hora: h, Ingresos: decimal.Zero}
	}
	return hours
}

func sameLocalDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	return al.Year() == bl.Year() && al.YearDay() == bl.YearDay()
}

func productIDs(productos []domain.Producto) []string {
	ids := make([]string, 0, len(productos))
	for _, p := range productos {
		ids = append(ids, p.ID)
	}
	return ids
}
