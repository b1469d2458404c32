package httpapi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultIdleTTL is how long a client's bucket survives without traffic
// before it becomes eligible for eviction.
const defaultIdleTTL = 3 * time.Minute

// defaultSweepThreshold caps the client map; reaching it triggers an idle
// sweep before a new bucket is added.
const defaultSweepThreshold = 10_000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter applies a per-principal token bucket. Unauthenticated
// requests are keyed by remote address. Idle buckets are evicted so the
// map stays bounded under churning anonymous traffic.
type rateLimiter struct {
	mu             sync.Mutex
	clients        map[string]*clientLimiter
	rate           rate.Limit
	burst          int
	idleTTL        time.Duration
	sweepThreshold int
}

func newRateLimiter(requestsPerSecond, burst int) *rateLimiter {
	return &rateLimiter{
		clients:        make(map[string]*clientLimiter),
		rate:           rate.Limit(requestsPerSecond),
		burst:          burst,
		idleTTL:        defaultIdleTTL,
		sweepThreshold: defaultSweepThreshold,
	}
}

func (rl *rateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= rl.sweepThreshold {
			rl.sweepLocked(now)
		}
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter
}

// sweepLocked drops buckets idle for longer than the TTL. Callers hold mu.
func (rl *rateLimiter) sweepLocked(now time.Time) {
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

func (rl *rateLimiter) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := CallerFromContext(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !rl.limiterFor(key).Allow() {
			writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
