package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/valenante/alef-gateway/internal/domain"
)

const (
	statsKeyPrefix     = "stats:categoria"
	statsScanBatchSize = 100
)

// StatsCache stores computed category snapshots for a short TTL so hot
// dashboards do not refetch the whole flat sales list on every render.
type StatsCache interface {
	Get(ctx context.Context, tenantID string, productIDs []string, day string) (*domain.CategoriaSnapshot, bool, error)
	Set(ctx context.Context, tenantID string, productIDs []string, day string, snap *domain.CategoriaSnapshot) error
	InvalidateTenant(ctx context.Context, tenantID string) error
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) StatsCache {
	if client == nil {
		return &noopStatsCache{}
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisStatsCache{client: client, ttl: ttl}
}

func NewNoopStatsCache() StatsCache {
	return &noopStatsCache{}
}

func (c *redisStatsCache) Get(ctx context.Context, tenantID string, productIDs []string, day string) (*domain.CategoriaSnapshot, bool, error) {
	payload, err := c.client.Get(ctx, statsKey(tenantID, productIDs, day)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var snap domain.CategoriaSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false, fmt.Errorf("decode stats snapshot cache: %w", err)
	}
	return &snap, true, nil
}

func (c *redisStatsCache) Set(ctx context.Context, tenantID string, productIDs []string, day string, snap *domain.CategoriaSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode stats snapshot cache: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(tenantID, productIDs, day), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisStatsCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	prefix := fmt.Sprintf("%s:%s:", statsKeyPrefix, tenantID)
	return DeleteKeysWithPrefix(ctx, c.client, prefix, statsScanBatchSize)
}

func statsKey(tenantID string, productIDs []string, day string) string {
	ids := make([]string, len(productIDs))
	copy(ids, productIDs)
	sort.Strings(ids)
	h := sha1.Sum([]byte(strings.Join(ids, ",") + "|" + day))
	return fmt.Sprintf("%s:%s:%s", statsKeyPrefix, tenantID, hex.EncodeToString(h[:]))
}

type noopStatsCache struct{}

func (noopStatsCache) Get(context.Context, string, []string, string) (*domain.CategoriaSnapshot, bool, error) {
	return nil, false, nil
}

func (noopStatsCache) Set(context.Context, string, []string, string, *domain.CategoriaSnapshot) error {
	return nil
}

func (noopStatsCache) InvalidateTenant(context.Context, string) error {
	return nil
}
