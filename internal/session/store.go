package session

import (
	"context"
	"sync"
	"time"

	"github.com/voycebutler18/spilkz-sub001/internal/cache"
)

// RedisSeedStore persists seeds in Redis with a session-scoped TTL
type RedisSeedStore struct {
	redis *cache.RedisClient
}

var _ SeedStore = (*RedisSeedStore)(nil)

// NewRedisSeedStore creates a seed store over the shared Redis client
func NewRedisSeedStore(redis *cache.RedisClient) *RedisSeedStore {
	return &RedisSeedStore{redis: redis}
}

func (s *RedisSeedStore) Get(ctx context.Context, key string) (uint32, bool, error) {
	val, err := s.redis.Get(ctx, key)
	if err != nil {
		if cache.IsNil(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	seed, err := ParseSeed(val)
	if err != nil {
		// Corrupt entry; treat as absent so a fresh seed replaces it.
		return 0, false, nil
	}
	return seed, true, nil
}

func (s *RedisSeedStore) PutIfAbsent(ctx context.Context, key string, seed uint32, ttl time.Duration) (uint32, error) {
	written, err := s.redis.SetNX(ctx, key, FormatSeed(seed), ttl)
	if err != nil {
		return 0, err
	}
	if written {
		return seed, nil
	}
	// Lost the race; the stored value is canonical.
	val, err := s.redis.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return ParseSeed(val)
}

func (s *RedisSeedStore) Delete(ctx context.Context, key string) error {
	return s.redis.Del(ctx, key)
}

// MemorySeedStore is an in-process store for tests and single-node
// development runs
type MemorySeedStore struct {
	mu    sync.Mutex
	seeds map[string]uint32
}

var _ SeedStore = (*MemorySeedStore)(nil)

// NewMemorySeedStore creates an empty in-memory seed store
func NewMemorySeedStore() *MemorySeedStore {
	return &MemorySeedStore{seeds: make(map[string]uint32)}
}

func (s *MemorySeedStore) Get(ctx context.Context, key string) (uint32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seed, ok := s.seeds[key]
	return seed, ok, nil
}

func (s *MemorySeedStore) PutIfAbsent(ctx context.Context, key string, seed uint32, ttl time.Duration) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.seeds[key]; ok {
		return existing, nil
	}
	s.seeds[key] = seed
	return seed, nil
}

func (s *MemorySeedStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seeds, key)
	return nil
}
