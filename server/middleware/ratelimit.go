package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/errors"
	"github.com/teilomillet/chatintel/server/metrics"
	"golang.org/x/time/rate"
)

const (
	visitorTTL = 3 * time.Minute
	pruneEvery = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	retryAfter int
	metrics    *metrics.Metrics

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing cfg.RequestsPerMinute per client
// with bursts of cfg.Burst. m may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, m *metrics.Metrics) *RateLimiter {
	perSecond := float64(cfg.RequestsPerMinute) / 60
	return &RateLimiter{
		limit:      rate.Limit(perSecond),
		burst:      cfg.Burst,
		retryAfter: int(math.Ceil(1 / perSecond)),
		metrics:    m,
		visitors:   make(map[string]*visitor),
		now:        time.Now,
	}
}

// Handler rejects requests over the limit with 429 and a Retry-After header.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.get(ip).Allow() {
			if l.metrics != nil {
				l.metrics.RateLimitHits.Inc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter))
			errors.WriteError(w, errors.NewRateLimitError(GetRequestID(r.Context()), l.retryAfter))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > pruneEvery {
		for key, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, key)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
