package ventas

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/domain"
	"github.com/valenante/alef-gateway/internal/upstream"
)

// State is the explicit lifecycle of the query engine. The page-reset
// rule is a named transition here rather than an emergent ordering
// side effect.
type State string

const (
	// StateIdle: no tenant, nothing to query.
	StateIdle State = "idle"
	// StateFiltering: filters changed, page reset pending a Refresh.
	StateFiltering State = "filtering"
	// StateFetching: a request is in flight.
	StateFetching State = "fetching"
	// StateReady: a page is loaded.
	StateReady State = "ready"
	// StateError: the last fetch failed; data was cleared.
	StateError State = "error"
)

// ErrCargaVentas is the generic user-facing sales fetch failure message.
const ErrCargaVentas = "no se pudieron cargar las ventas"

// Source produces one raw page of sales for a tenant and filter set.
type Source interface {
	ListVentas(ctx context.Context, t domain.Tenant, f domain.VentasFilter) (upstream.RawVentasPage, error)
}

// Snapshot is a consistent copy of the engine's observable state.
type Snapshot struct {
	State      State
	Filter     domain.VentasFilter
	Items      []domain.Venta
	TotalItems int
	TotalPages int
	Resumen    domain.ResumenVentas
	Err        string
}

// Engine owns pagination and filtering for the sales list of one tenant
// session. Filter setters never fetch; Refresh does, and a response is
// only applied if no newer request superseded it.
type Engine struct {
	source Source

	mu         sync.Mutex
	state      State
	tenant     *domain.Tenant
	filter     domain.VentasFilter
	items      []domain.Venta
	totalItems int
	totalPages int
	resumen    domain.ResumenVentas
	errMsg     string
	generation uint64
}

func NewEngine(source Source) *Engine {
	return &Engine{
		source: source,
		state:  StateIdle,
		filter: domain.NewVentasFilter(),
	}
}

// SetTenant switches the engine to a tenant. A nil tenant clears every
// bit of sales state synchronously and no fetch is attempted until a new
// one is set. A tenant change resets the page to 1.
func (e *Engine) SetTenant(t *domain.Tenant) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t == nil {
		e.tenant = nil
		e.clearDataLocked()
		e.state = StateIdle
		return
	}
	if e.tenant != nil && e.tenant.ID == t.ID {
		e.tenant = t
		return
	}
	e.tenant = t
	e.clearDataLocked()
	e.filter.Page = 1
	e.state = StateFiltering
}

// SetQuery through SetPageSize are pure state setters. Any change while
// page > 1 resets the page first, so no fetch ever goes out with a page
// index the new result set may not have.
func (e *Engine) SetQuery(q string) { e.setFilter(func(f *domain.VentasFilter) { f.Query = q }) }

func (e *Engine) SetDesde(d string) { e.setFilter(func(f *domain.VentasFilter) { f.Desde = d }) }

func (e *Engine) SetHasta(h string) { e.setFilter(func(f *domain.VentasFilter) { f.Hasta = h }) }

func (e *Engine) SetMetodoPago(m string) {
	e.setFilter(func(f *domain.VentasFilter) { f.MetodoPago = m })
}

func (e *Engine) SetCanal(c string) { e.setFilter(func(f *domain.VentasFilter) { f.Canal = c }) }

func (e *Engine) SetEstado(s string) { e.setFilter(func(f *domain.VentasFilter) { f.Estado = s }) }

func (e *Engine) SetPageSize(size int) {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	e.setFilter(func(f *domain.VentasFilter) { f.PageSize = size })
}

// SetPage moves within the known result set, clamped to [1, totalPages].
func (e *Engine) SetPage(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tenant == nil {
		return
	}
	if page < 1 {
		page = 1
	}
	if e.totalPages > 0 && page > e.totalPages {
		page = e.totalPages
	}
	if page == e.filter.Page {
		return
	}
	e.filter.Page = page
	e.state = StateFiltering
}

func (e *Engine) setFilter(mutate func(*domain.VentasFilter)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	before := e.filter
	mutate(&e.filter)
	if e.filter == before {
		return
	}
	e.filter.Page = 1
	if e.tenant != nil {
		e.state = StateFiltering
	}
}

// Refresh issues the fetch for the current filter and page. Responses
// belonging to an older generation are discarded, so a slow request can
// never overwrite the result of a newer one. When the result set shrank
// below the current page, the page is clamped down and refetched once.
func (e *Engine) Refresh(ctx context.Context) Snapshot {
	for attempt := 0; attempt < 2; attempt++ {
		e.mu.Lock()
		if e.tenant == nil {
			e.mu.Unlock()
			return e.Current()
		}
		e.generation++
		gen := e.generation
		tenant := *e.tenant
		filter := e.filter
		e.state = StateFetching
		e.mu.Unlock()

		page, err := e.source.ListVentas(ctx, tenant, filter)

		e.mu.Lock()
		if gen != e.generation {
			// A newer request superseded this one.
			e.mu.Unlock()
			return e.Current()
		}
		if err != nil {
			log.Error().Err(err).Str("tenant", tenant.ID).Msg("ventas: fetch failed")
			e.clearDataLocked()
			e.errMsg = ErrCargaVentas
			e.state = StateError
			e.mu.Unlock()
			return e.Current()
		}

		e.items = NormalizeAll(page.Items)
		e.totalItems = page.TotalItems
		e.totalPages = page.TotalPages
		e.resumen = page.Resumen
		e.errMsg = ""
		e.state = StateReady

		if e.totalPages > 0 && e.filter.Page > e.totalPages {
			e.filter.Page = e.totalPages
			e.mu.Unlock()
			continue
		}
		e.mu.Unlock()
		return e.Current()
	}
	return e.Current()
}

// Current returns a consistent copy of the observable state.
func (e *Engine) Current() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]domain.Venta, len(e.items))
	copy(items, e.items)
	return Snapshot{
		State:      e.state,
		Filter:     e.filter,
		Items:      items,
		TotalItems: e.totalItems,
		TotalPages: e.totalPages,
		Resumen:    e.resumen,
		Err:        e.errMsg,
	}
}

// MetodosPagoDisponibles collects the distinct payment methods present on
// the currently loaded page. Page-scoped only: values absent from this
// page do not appear.
func (e *Engine) MetodosPagoDisponibles() []string {
	return e.distinct(func(v domain.Venta) string { return v.MetodoPago })
}

// CanalesDisponibles collects the distinct channels on the loaded page.
func (e *Engine) CanalesDisponibles() []string {
	return e.distinct(func(v domain.Venta) string { return v.Canal })
}

func (e *Engine) distinct(field func(domain.Venta) string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]struct{})
	for _, v := range e.items {
		value := strings.ToLower(strings.TrimSpace(field(v)))
		if value == "" || value == domain.PlaceholderValue {
			continue
		}
		seen[value] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for value := range seen {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) clearDataLocked() {
	e.items = nil
	e.totalItems = 0
	e.totalPages = 0
	e.resumen = domain.ResumenVentas{}
	e.errMsg = ""
}
