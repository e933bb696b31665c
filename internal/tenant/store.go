package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "tenant:session"

// Store persists the resolved tenant id for the lifetime of a client
// session. It is the only durable state this service owns.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, bool, error)
	Set(ctx context.Context, sessionID, tenantID string) error
	Clear(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a session store over an existing redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, sessionID, tenantID string) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), tenantID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", sessionKeyPrefix, sessionID)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

// NewMemoryStore is the fallback session store for single-instance runs
// and tests.
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[sessionID]
	return id, ok, nil
}

func (s *memoryStore) Set(_ context.Context, sessionID, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = tenantID
	return nil
}

func (s *memoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
