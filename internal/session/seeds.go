// Package session owns the per-viewer shuffle seeds. A seed is minted once
// per (session, feed kind), survives soft navigation, and is discarded only
// when the client signals a genuine hard reload.
package session

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"github.com/voycebutler18/spilkz-sub001/internal/metrics"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long an idle session keeps its seeds around
const DefaultTTL = 12 * time.Hour

// SeedStore persists seeds keyed by session and feed kind
type SeedStore interface {
	// Get returns the stored seed and whether it exists.
	Get(ctx context.Context, key string) (uint32, bool, error)

	// PutIfAbsent stores seed unless the key already holds one, and
	// returns the canonical value either way. Two racing first loads of
	// the same session must agree on one seed.
	PutIfAbsent(ctx context.Context, key string, seed uint32, ttl time.Duration) (uint32, error)

	Delete(ctx context.Context, key string) error
}

// Provider mints and persists session seeds
type Provider struct {
	store SeedStore
	ttl   time.Duration
}

// NewProvider creates a seed provider over the given store
func NewProvider(store SeedStore) *Provider {
	return &Provider{store: store, ttl: DefaultTTL}
}

// seedKey builds the storage key, e.g. "sess-abc:home_seed"
func seedKey(sessionID, kind string) string {
	return fmt.Sprintf("%s:%s_seed", sessionID, kind)
}

// Seed returns the session's seed for a feed kind, minting one on first use.
// Repeat calls within the session return the identical value, so scroll
// order never re-shuffles on soft navigation.
func (p *Provider) Seed(ctx context.Context, sessionID, kind string) (uint32, error) {
	key := seedKey(sessionID, kind)

	seed, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to read session seed: %w", err)
	}
	if ok {
		return seed, nil
	}

	minted := newSeed()
	canonical, err := p.store.PutIfAbsent(ctx, key, minted, p.ttl)
	if err != nil {
		return 0, fmt.Errorf("failed to persist session seed: %w", err)
	}

	metrics.Get().SeedMintsTotal.WithLabelValues(kind).Inc()
	logger.Log.Debug("Minted session seed",
		zap.String("kind", kind),
		zap.Uint32("seed", canonical))
	return canonical, nil
}

// Reset discards the stored seed for a feed kind. Called when the client
// reports a hard reload; the next Seed call mints a fresh value.
func (p *Provider) Reset(ctx context.Context, sessionID, kind string) error {
	return p.store.Delete(ctx, seedKey(sessionID, kind))
}

// newSeed draws 32 bits from the crypto source, falling back to the clock
// when the platform source is unavailable
func newSeed() uint32 {
	var buf [4]byte
	if _, err := crand.Read(buf[:]); err == nil {
		return binary.LittleEndian.Uint32(buf[:])
	}
	return uint32(time.Now().UnixNano())
}

// ParseSeed decodes a stored decimal seed string
func ParseSeed(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// FormatSeed encodes a seed for storage
func FormatSeed(seed uint32) string {
	return strconv.FormatUint(uint64(seed), 10)
}
