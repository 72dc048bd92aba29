package ratelimit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/RodrigoFalk/LinkPulse/internal/pkg/cache"
)

// Webhook ingestion limit: 30 requests per source IP per 60s window.
const (
	Window = 60 * time.Second
	Limit  = 30
)

const keyPrefix = "ratelimit:webhook:"

var ctx = context.Background()

// localWindow is the fallback counter used when Redis is unreachable. Keyed
// by IP, entries reset lazily when their window has passed; the map is
// cleared wholesale once per window so memory stays bounded under
// address-varying abuse.
type localWindow struct {
	mu      sync.Mutex
	counts  map[string]*entry
	sweepAt time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

var fallback = &localWindow{counts: make(map[string]*entry)}

// Allow reports whether a request from the given source IP is inside the
// sliding window limit. Counters live in Redis with a TTL, so the limit
// holds across horizontally scaled instances and memory is bounded
// regardless of how many distinct IPs show up.
func Allow(ip string) bool {
	if ip == "" {
		return true
	}

	key := keyPrefix + ip
	rdb := cache.GetClient()

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("rate limiter: redis unavailable, using local window: %v", err)
		return fallback.allow(ip)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, Window).Err(); err != nil {
			log.Printf("rate limiter: failed to set window TTL for %s: %v", key, err)
		}
	}
	return count <= Limit
}

func (l *localWindow) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.After(l.sweepAt) {
		l.counts = make(map[string]*entry)
		l.sweepAt = now.Add(Window)
	}

	e, ok := l.counts[ip]
	if !ok || now.After(e.resetAt) {
		l.counts[ip] = &entry{count: 1, resetAt: now.Add(Window)}
		return true
	}
	e.count++
	return e.count <= Limit
}

// Reset clears the counter for one IP. Test helper.
func Reset(ip string) {
	_ = cache.Delete(fmt.Sprintf("%s%s", keyPrefix, ip))

	fallback.mu.Lock()
	delete(fallback.counts, ip)
	fallback.mu.Unlock()
}
