// Package ratelimit throttles requests per client with token buckets.
package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"tracker/internal/cache"
)

// Limiter keeps one token bucket per client key. Idle clients fall out of
// the underlying LRU after IdleTTL.
type Limiter struct {
	clients           *cache.LRUCache[*rate.Limiter]
	requestsPerMinute int
	rejected          prometheus.Counter
}

type Config struct {
	RequestsPerMinute int
	MaxClients        int
	IdleTTL           time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
	}
}

// NewLimiter builds a limiter. A nil registerer skips metric registration.
func NewLimiter(config Config, reg prometheus.Registerer) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}

	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_rate_limit_rejections_total",
		Help: "Requests rejected by the per-client rate limiter.",
	})
	if reg != nil {
		reg.MustRegister(rejected)
	}

	return &Limiter{
		clients:           cache.NewLRUCache[*rate.Limiter](config.MaxClients, config.IdleTTL),
		requestsPerMinute: config.RequestsPerMinute,
		rejected:          rejected,
	}
}

// Cache exposes the client table so a cache.Manager can sweep it.
func (rl *Limiter) Cache() cache.Cleaner {
	return rl.clients
}

// Allow reports whether the client may make another request now.
func (rl *Limiter) Allow(clientKey string) bool {
	l := rl.clients.GetOrCreate(clientKey, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.requestsPerMinute)), rl.requestsPerMinute)
	})
	if l.Allow() {
		return true
	}
	rl.rejected.Inc()
	return false
}

func (rl *Limiter) ActiveClients() int {
	return rl.clients.Size()
}

// Middleware rejects over-limit requests with 429. onLimit, when set, writes
// the response instead.
func (rl *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(rl.requestsPerMinute)).Seconds()) + 1)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(extractKey(r)) {
				w.Header().Set("Retry-After", retryAfter)
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
