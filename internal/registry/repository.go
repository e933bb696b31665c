package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/valenante/alef-gateway/internal/domain"
)

// ErrNotFound is returned when a tenant is absent from the directory.
var ErrNotFound = errors.New("tenant not found in registry")

const schema = `
CREATE TABLE IF NOT EXISTS tenants (
    id            TEXT PRIMARY KEY,
    slug          TEXT NOT NULL UNIQUE,
    nombre        TEXT NOT NULL DEFAULT '',
    business_type TEXT NOT NULL DEFAULT 'restaurant',
    logo_color    TEXT NOT NULL DEFAULT '',
    synced_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Repository persists tenant directory rows.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("could not ensure tenants table: %w", err)
	}
	return &Repository{db: db}, nil
}

// Upsert inserts or refreshes a tenant row after a successful upstream
// metadata fetch.
func (r *Repository) Upsert(ctx context.Context, t domain.Tenant) error {
	slug := t.Slug
	if slug == "" {
		slug = t.ID
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tenants (id, slug, nombre, business_type, logo_color, synced_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				slug = EXCLUDED.slug,
				nombre = EXCLUDED.nombre,
				business_type = EXCLUDED.business_type,
				logo_color = EXCLUDED.logo_color,
				synced_at = EXCLUDED.synced_at`,
			t.ID, slug, t.Nombre, string(t.EffectiveBusinessType()), t.LogoColor, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("could not upsert tenant %s: %w", t.ID, err)
		}
		return nil
	})
}

// FindBySlug resolves a path slug to its tenant without going upstream.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.GetContext(ctx, &t, `
		SELECT id, slug, nombre, business_type, logo_color, synced_at
		FROM tenants WHERE slug = $1 OR id = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tenant{}, ErrNotFound
	}
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("could not look up tenant by slug: %w", err)
	}
	return t, nil
}

// List returns the directory ordered by name, for the superadmin view.
func (r *Repository) List(ctx context.Context) ([]domain.Tenant, error) {
	tenants := []domain.Tenant{}
	err := r.db.SelectContext(ctx, &tenants, `
		SELECT id, slug, nombre, business_type, logo_color, synced_at
		FROM tenants ORDER BY nombre, id`)
	if err != nil {
		return nil, fmt.Errorf("could not list tenants: %w", err)
	}
	return tenants, nil
}
