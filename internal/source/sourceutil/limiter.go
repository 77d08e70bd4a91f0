package sourceutil

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum delay between consecutive requests to the
// same hostname. Scraped third-party sites require this pacing; it is a hard
// politeness constraint, not a throughput tunable.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
}

// NewHostLimiter spaces requests at least minDelay apart per host.
func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Every(minDelay),
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, 1)
	hl.m[host] = lim
	return lim
}

// WaitURL blocks until the host named in raw may be contacted again.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}
