package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"libracatalog/pkg/logger"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestID returns the id chi's RequestID middleware assigned to r.
func RequestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// AccessLog logs one line per request and puts a request scoped logger in the
// request context.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logger.WithFields(r.Context(), zap.String("request.id", RequestID(r)))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info(ctx, "access",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client address.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*clientLimiter
	rate        rate.Limit
	burst       int
	idle        time.Duration
	lastCleanup time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*clientLimiter),
		rate:        rate.Limit(rps),
		burst:       burst,
		idle:        5 * time.Minute,
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > rl.idle {
		for k, l := range rl.limiters {
			if now.Sub(l.lastSeen) > rl.idle {
				delete(rl.limiters, k)
			}
		}
		rl.lastCleanup = now
	}

	l, ok := rl.limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastSeen = now
	return l.limiter
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiterFor(clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			Error(w, r, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
