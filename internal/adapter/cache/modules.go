// Package cache provides a Redis read-through cache in front of the
// module registry. The catalog changes rarely and is fetched on every
// console page load, so both the definitions list and the per-tenant
// entitlement list are cached with a short TTL. Toggles invalidate the
// tenant's entry before delegating so the next read sees fresh state.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/domain"
)

const (
	definitionsKey  = "modules:definitions"
	usageKey        = "modules:usage"
	tenantKeyPrefix = "modules:tenant:"

	definitionsTTL = 5 * time.Minute
	tenantTTL      = 30 * time.Second
)

// RedisClient is the subset of redis.Client the cache relies on.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// ModuleRegistry caches registry reads in Redis. Cache failures are
// logged and treated as misses; the registry stays the source of truth.
type ModuleRegistry struct {
	next  domain.ModuleRegistry
	redis RedisClient
}

var _ domain.ModuleRegistry = (*ModuleRegistry)(nil)

// NewModuleRegistry wraps next with a Redis-backed cache at addr.
func NewModuleRegistry(next domain.ModuleRegistry, addr string) *ModuleRegistry {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
	return &ModuleRegistry{next: next, redis: rdb}
}

// NewModuleRegistryWithClient wraps next using an existing client.
func NewModuleRegistryWithClient(next domain.ModuleRegistry, rdb RedisClient) *ModuleRegistry {
	return &ModuleRegistry{next: next, redis: rdb}
}

func (m *ModuleRegistry) Definitions(ctx context.Context, sess domain.Session) ([]domain.ModuleDefinition, error) {
	var defs []domain.ModuleDefinition
	if m.lookup(ctx, definitionsKey, &defs) {
		return defs, nil
	}
	defs, err := m.next.Definitions(ctx, sess)
	if err != nil {
		return nil, err
	}
	m.store(ctx, definitionsKey, defs, definitionsTTL)
	return defs, nil
}

func (m *ModuleRegistry) TenantModules(ctx context.Context, sess domain.Session, tenantID string) ([]domain.Entitlement, error) {
	key := tenantKeyPrefix + tenantID
	var ents []domain.Entitlement
	if m.lookup(ctx, key, &ents) {
		return ents, nil
	}
	ents, err := m.next.TenantModules(ctx, sess, tenantID)
	if err != nil {
		return nil, err
	}
	m.store(ctx, key, ents, tenantTTL)
	return ents, nil
}

func (m *ModuleRegistry) Usage(ctx context.Context, sess domain.Session) ([]domain.ModuleUsage, error) {
	var usage []domain.ModuleUsage
	if m.lookup(ctx, usageKey, &usage) {
		return usage, nil
	}
	usage, err := m.next.Usage(ctx, sess)
	if err != nil {
		return nil, err
	}
	m.store(ctx, usageKey, usage, tenantTTL)
	return usage, nil
}

// Toggle invalidates the tenant's cached entitlements before delegating
// so a toggle followed by a read never serves the stale list.
func (m *ModuleRegistry) Toggle(ctx context.Context, sess domain.Session, tenantID, code string, enabled bool) (domain.Entitlement, error) {
	if err := m.redis.Del(ctx, tenantKeyPrefix+tenantID).Err(); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID).Msg("invalidating entitlement cache")
	}
	return m.next.Toggle(ctx, sess, tenantID, code, enabled)
}

// Close releases the Redis connection.
func (m *ModuleRegistry) Close() error {
	return m.redis.Close()
}

func (m *ModuleRegistry) lookup(ctx context.Context, key string, out any) bool {
	cached, err := m.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("reading cache")
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("decoding cache entry")
		return false
	}
	return true
}

func (m *ModuleRegistry) store(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("encoding cache entry")
		return
	}
	if err := m.redis.SetEx(ctx, key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("writing cache")
	}
}
