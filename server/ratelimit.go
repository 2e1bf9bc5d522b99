package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a client's limiter is kept after its last request.
const idleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter rate limits requests per client IP.
type ClientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// NewClientLimiter allows each client perSecond requests with the given burst.
func NewClientLimiter(perSecond float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients: map[string]*limiterEntry{},
		rate:    rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleTTL {
		for k, e := range l.clients {
			if now.Sub(e.lastSeen) > idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.clients[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Middleware answers 429 once a client exceeds its budget.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			http.Error(w, "Too many attempts, please try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
