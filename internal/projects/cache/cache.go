package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/siteloft/front-door-backend/internal/projects/domain"
)

const (
	subdomainKeyPrefix = "fd:project:sub:"  // fd:project:sub:{subdomain}
	hostnameKeyPrefix  = "fd:project:host:" // fd:project:host:{hostname}
	projectTTL         = 5 * time.Minute
)

// Store is the slice of the repository the cache sits in front of.
type Store interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Project, error)
	GetByCustomHostname(ctx context.Context, hostname string) (*domain.Project, error)
}

// Lookup is a read-through cache over project routing-key lookups. Every
// dispatched request resolves a tenant key, so the hot path goes through
// redis first and only falls back to postgres on a miss. Cache failures
// degrade to direct store reads.
type Lookup struct {
	store  Store
	client *redis.Client
}

// NewLookup wraps store with a redis cache. A nil client disables caching
// and every call goes straight to the store.
func NewLookup(store Store, client *redis.Client) *Lookup {
	return &Lookup{store: store, client: client}
}

func (l *Lookup) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Project, error) {
	return l.lookup(ctx, subdomainKeyPrefix+subdomain, func() (*domain.Project, error) {
		return l.store.GetBySubdomain(ctx, subdomain)
	})
}

func (l *Lookup) GetByCustomHostname(ctx context.Context, hostname string) (*domain.Project, error) {
	return l.lookup(ctx, hostnameKeyPrefix+hostname, func() (*domain.Project, error) {
		return l.store.GetByCustomHostname(ctx, hostname)
	})
}

func (l *Lookup) lookup(ctx context.Context, key string, fetch func() (*domain.Project, error)) (*domain.Project, error) {
	if l.client != nil {
		data, err := l.client.Get(ctx, key).Result()
		if err == nil {
			var p domain.Project
			if err := json.Unmarshal([]byte(data), &p); err == nil {
				return &p, nil
			}
			// Corrupt entry, drop it and fall through to the store.
			l.client.Del(ctx, key)
		} else if err != redis.Nil {
			log.Printf("[cache] redis get failed, falling back to store: %v", err)
		}
	}

	p, err := fetch()
	if err != nil {
		return nil, err
	}

	if l.client != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := l.client.Set(ctx, key, data, projectTTL).Err(); err != nil {
				log.Printf("[cache] redis set failed: %v", err)
			}
		}
	}
	return p, nil
}

// Invalidate drops the cached entries for one project's routing keys.
func (l *Lookup) Invalidate(ctx context.Context, p *domain.Project) {
	if l.client == nil || p == nil {
		return
	}
	keys := []string{subdomainKeyPrefix + p.Subdomain}
	if p.CustomHostname != nil {
		keys = append(keys, hostnameKeyPrefix+*p.CustomHostname)
	}
	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[cache] invalidate failed: %v", err)
	}
}

// Flush drops every cached project entry. Used by the full reset.
func (l *Lookup) Flush(ctx context.Context) {
	if l.client == nil {
		return
	}
	for _, pattern := range []string{subdomainKeyPrefix + "*", hostnameKeyPrefix + "*"} {
		iter := l.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			l.client.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			log.Printf("[cache] flush scan failed: %v", err)
		}
	}
}
