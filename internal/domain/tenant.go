package domain

import "time"

// BusinessType decides which upstream namespace serves a tenant's sales.
type BusinessType string

const (
	BusinessTypeRestaurant BusinessType = "restaurant"
	BusinessTypeShop       BusinessType = "shop"
)

// IsValid reports whether the value is one of the known business types.
func (b BusinessType) IsValid() bool {
	return b == BusinessTypeRestaurant || b == BusinessTypeShop
}

// Tenant represents one restaurant/shop account on the platform.
type Tenant struct {
	ID           string       `json:"id" db:"id"`
	Slug         string       `json:"slug" db:"slug"`
	Nombre       string       `json:"nombre" db:"nombre"`
	BusinessType BusinessType `json:"businessType" db:"business_type"`
	LogoColor    string       `json:"logoColor,omitempty" db:"logo_color"`
	SyncedAt     time.Time    `json:"syncedAt,omitempty" db:"synced_at"`
}

// EffectiveBusinessType falls back to restaurant when the upstream
// metadata omits or mangles the field.
func (t Tenant) EffectiveBusinessType() BusinessType {
	if t.BusinessType.IsValid() {
		return t.BusinessType
	}
	return BusinessTypeRestaurant
}
