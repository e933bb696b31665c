package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/valenante/alef-gateway/internal/domain"
)

// MetadataFetcher resolves tenant metadata from the upstream backend.
type MetadataFetcher interface {
	TenantMe(ctx context.Context, tenantID string) (domain.Tenant, error)
}

// Registrar is the local tenant directory: it receives successfully
// fetched tenants and answers slug lookups without an upstream
// round-trip. Optional.
type Registrar interface {
	Upsert(ctx context.Context, t domain.Tenant) error
	FindBySlug(ctx context.Context, slug string) (domain.Tenant, error)
}

// Resolution is the outcome of resolving tenant context for one request.
type Resolution struct {
	TenantID string
	Tenant   *domain.Tenant
	Err      string
}

// Resolved reports whether a usable tenant came out of the resolution.
func (r Resolution) Resolved() bool {
	return r.TenantID != "" && r.Tenant != nil
}

const metadataTTL = 5 * time.Minute

type cachedTenant struct {
	tenant    domain.Tenant
	fetchedAt time.Time
}

// Service establishes who the current tenant is, consistently across
// requests of a session, and hands the metadata to everything downstream.
type Service struct {
	store    Store
	upstream MetadataFetcher
	registry Registrar

	mu       sync.Mutex
	metadata map[string]cachedTenant
}

func NewService(store Store, upstream MetadataFetcher, registry Registrar) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{
		store:    store,
		upstream: upstream,
		registry: registry,
		metadata: make(map[string]cachedTenant),
	}
}

// Resolve determines the active tenant for a request. An id found in the
// path always supersedes the stored one. Public routes never load tenant
// data. A failed metadata fetch clears the stored id so no stale tenant
// survives; the caller retries explicitly.
func (s *Service) Resolve(ctx context.Context, sessionID, pathname string) Resolution {
	if IsPublicRoute(pathname) {
		return Resolution{}
	}

	id, fromPath := ResolveFromPath(pathname)
	if !fromPath {
		stored, ok, err := s.store.Get(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Msg("tenant: session store read failed")
		}
		if !ok || stored == "" {
			return Resolution{}
		}
		id = stored
	}

	return s.activate(ctx, sessionID, id)
}

// SetTenantID is the explicit override path, used after login reveals the
// tenant on the user's profile.
func (s *Service) SetTenantID(ctx context.Context, sessionID, tenantID string) Resolution {
	if tenantID == "" {
		return Resolution{}
	}
	return s.activate(ctx, sessionID, tenantID)
}

// Clear purges the session's tenant id and cached metadata. Called on
// logout and on unrecoverable tenant-load errors.
func (s *Service) Clear(ctx context.Context, sessionID string) {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("tenant: session store clear failed")
	}
}

func (s *Service) activate(ctx context.Context, sessionID, tenantID string) Resolution {
	if t, ok := s.cached(tenantID); ok {
		s.persist(ctx, sessionID, tenantID)
		return Resolution{TenantID: tenantID, Tenant: &t}
	}

	// A directory hit resolves the slug locally and skips the upstream
	// fetch entirely.
	if s.registry != nil {
		t, err := s.registry.FindBySlug(ctx, tenantID)
		if err == nil {
			s.remember(t)
			s.persist(ctx, sessionID, t.ID)
			return Resolution{TenantID: t.ID, Tenant: &t}
		}
		log.Debug().Err(err).Str("slug", tenantID).Msg("tenant: directory miss")
	}

	t, err := s.upstream.TenantMe(ctx, tenantID)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenantID).Msg("tenant: metadata fetch failed")
		// Never leave a stale id pointing at an unreachable tenant.
		s.Clear(ctx, sessionID)
		s.forget(tenantID)
		return Resolution{TenantID: tenantID, Err: "no se pudo cargar el negocio"}
	}

	s.remember(t)
	s.persist(ctx, sessionID, tenantID)

	if s.registry != nil {
		if err := s.registry.Upsert(ctx, t); err != nil {
			log.Warn().Err(err).Str("tenant", t.ID).Msg("tenant: registry sync failed")
		}
	}

	return Resolution{TenantID: tenantID, Tenant: &t}
}

func (s *Service) persist(ctx context.Context, sessionID, tenantID string) {
	if err := s.store.Set(ctx, sessionID, tenantID); err != nil {
		log.Warn().Err(err).Msg("tenant: session store write failed")
	}
}

func (s *Service) cached(tenantID string) (domain.Tenant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.metadata[tenantID]
	if !ok || time.Since(entry.fetchedAt) > metadataTTL {
		return domain.Tenant{}, false
	}
	return entry.tenant, true
}

func (s *Service) remember(t domain.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[t.ID] = cachedTenant{tenant: t, fetchedAt: time.Now()}
}

func (s *Service) forget(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metadata, tenantID)
}
