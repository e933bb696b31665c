package cache

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valenante/alef-gateway/internal/domain"
)

func TestStatsKeyOrderInsensitive(t *testing.T) {
	a := statsKey("acme", []string{"p1", "p2"}, "2026-08-20")
	b := statsKey("acme", []string{"p2", "p1"}, "2026-08-20")
	assert.Equal(t, a, b)

	otherDay := statsKey("acme", []string{"p1", "p2"}, "2026-08-21")
	assert.NotEqual(t, a, otherDay)
}

func TestStatsKeyMatchesInvalidationPrefix(t *testing.T) {
	// InvalidateTenant scans this exact prefix; every key for the tenant
	// must live under it and keys for other tenants must not.
	prefix := fmt.Sprintf("%s:%s:", statsKeyPrefix, "acme")

	assert.True(t, strings.HasPrefix(statsKey("acme", []string{"p1"}, ""), prefix))
	assert.True(t, strings.HasPrefix(statsKey("acme", []string{"p1", "p2"}, "2026-08-20"), prefix))
	assert.False(t, strings.HasPrefix(statsKey("otro", []string{"p1"}, ""), prefix))
}

func TestNoopStatsCache(t *testing.T) {
	c := NewNoopStatsCache()
	ctx := context.Background()

	snap, ok, err := c.Get(ctx, "acme", []string{"p1"}, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, snap)

	require.NoError(t, c.Set(ctx, "acme", []string{"p1"}, "", &domain.CategoriaSnapshot{}))
	require.NoError(t, c.InvalidateTenant(ctx, "acme"))
}
