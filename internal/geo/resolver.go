package geo

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Resolver resolves IPs to locations with a hard timeout and an in-memory TTL
// cache. Resolve never returns an error: failures degrade to the unknown
// result so a slow or down provider costs confidence, not login latency.
type Resolver struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL time.Duration
	maxSize  int
}

type cacheEntry struct {
	loc     *Location
	expires time.Time
}

// NewResolver creates a Resolver. cacheSize bounds the number of cached IPs;
// the cache is dropped wholesale when full rather than evicted per-entry.
func NewResolver(provider Provider, timeout, cacheTTL time.Duration, cacheSize int, logger *slog.Logger) *Resolver {
	if cacheSize <= 0 {
		cacheSize = 10000
	}
	return &Resolver{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		cache:    make(map[string]cacheEntry),
		cacheTTL: cacheTTL,
		maxSize:  cacheSize,
	}
}

// Resolve maps an IP to a location. Private and loopback ranges resolve to the
// fixed local marker with confidence 1.0; unresolvable or timed-out lookups
// return the low-confidence unknown result.
func (r *Resolver) Resolve(ctx context.Context, ip string) *Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Unknown()
	}

	if isPrivate(parsed) {
		return Local()
	}

	if loc := r.cached(ip); loc != nil {
		return loc
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	loc, err := r.provider.Lookup(lookupCtx, ip)
	if err != nil {
		r.logger.Warn("geolocation lookup degraded to unknown",
			slog.String("ip", ip),
			slog.Any("error", err),
		)
		return Unknown()
	}

	r.store(ip, loc)
	return loc
}

func isPrivate(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

func (r *Resolver) cached(ip string) *Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[ip]
	if !ok || time.Now().After(entry.expires) {
		return nil
	}
	return entry.loc
}

func (r *Resolver) store(ip string, loc *Location) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.cache) >= r.maxSize {
		r.cache = make(map[string]cacheEntry)
	}
	r.cache[ip] = cacheEntry{loc: loc, expires: time.Now().Add(r.cacheTTL)}
}
