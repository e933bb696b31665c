// Package reports builds the daily cash-register (caja) report from the
// day's normalized sales.
package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/ventas"
)

const (
	reportPageSize   = 100
	maxParallelPages = 4
)

// MetodoTotal is the caja total for one payment method.
type MetodoTotal struct {
	Metodo  string          `json:"metodo"`
	Tickets int             `json:"tickets"`
	Total   decimal.Decimal `json:"total"`
}

// CajaReport summarizes one calendar day of sales for a tenant. Voided
// sales count as tickets but never add to money totals.
type CajaReport struct {
	ID        string             `json:"id"`
	TenantID  string             `json:"tenantId"`
	Fecha     string             `json:"fecha"`
	Tickets   int                `json:"tickets"`
	Anuladas  int                `json:"anuladas"`
	Total     decimal.Decimal    `json:"total"`
	PorMetodo []MetodoTotal      `json:"porMetodo"`
	PorHora   []domain.HoraStats `json:"porHora"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Builder assembles caja reports by paging through the day's sales.
type Builder struct {
	source ventas.Source
}

func NewBuilder(source ventas.Source) *Builder {
	return &Builder{source: source}
}

// Daily fetches every sale of the given calendar day and aggregates it.
// Pages beyond the first are fetched concurrently.
func (b *Builder) Daily(ctx context.Context, t domain.Tenant, dia time.Time) (*CajaReport, error) {
	day := dia.Format("2006-01-02")
	filter := domain.NewVentasFilter()
	filter.Desde = day
	filter.Hasta = day
	filter.PageSize = reportPageSize

	first, err := b.source.ListVentas(ctx, t, filter)
	if err != nil {
		return nil, fmt.Errorf("could not fetch sales for caja report: %w", err)
	}

	all := ventas.NormalizeAll(first.Items)

	if first.TotalPages > 1 {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallelPages)
		for page := 2; page <= first.TotalPages; page++ {
			f := filter
			f.Page = page
			g.Go(func() error {
				raw, err := b.source.ListVentas(gctx, t, f)
				if err != nil {
					return fmt.Errorf("could not fetch caja page %d: %w", f.Page, err)
				}
				normalized := ventas.NormalizeAll(raw.Items)
				mu.Lock()
				all = append(all, normalized...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return build(t.ID, day, all), nil
}

func build(tenantID, day string, sales []domain.Venta) *CajaReport {
	report := &CajaReport{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Fecha:     day,
		Total:     decimal.Zero,
		PorHora:   emptyHours(),
		CreatedAt: time.Now().UTC(),
	}

	porMetodo := make(map[string]*MetodoTotal)
	for _, v := range sales {
		report.Tickets++
		if v.Estado == domain.EstadoAnulada {
			report.Anuladas++
			continue
		}
		report.Total = report.Total.Add(v.Total)

		entry, ok := porMetodo[v.MetodoPago]
		if !ok {
			entry = &MetodoTotal{Metodo: v.MetodoPago, Total: decimal.Zero}
			porMetodo[v.MetodoPago] = entry
		}
		entry.Tickets++
		entry.Total = entry.Total.Add(v.Total)

		h := v.Fecha.Local().Hour()
		report.PorHora[h].Cantidad += v.ItemsCount
		report.PorHora[h].Ingresos = report.PorHora[h].Ingresos.Add(v.Total)
	}

	report.PorMetodo = make([]MetodoTotal, 0, len(porMetodo))
	for _, entry := range porMetodo {
		report.PorMetodo = append(report.PorMetodo, *entry)
	}
	sort.Slice(report.PorMetodo, func(i, j int) bool {
		if !report.PorMetodo[i].Total.Equal(report.PorMetodo[j].Total) {
			return report.PorMetodo[i].Total.GreaterThan(report.PorMetodo[j].Total)
		}
		return report.PorMetodo[i].Metodo < report.PorMetodo[j].Metodo
	})

	return report
}

func emptyHours() []domain.HoraStats {
	hours := make([]domain.HoraStats, 24)
	for h := range hours {
		hours[h] = domain.HoraStats{Hora: h, Ingresos: decimal.Zero}
	}
	return hours
}
