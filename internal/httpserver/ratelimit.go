package httpserver

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/calorie-diary/internal/config"
	"golang.org/x/time/rate"
)

// idleClientTTL is how long a client's bucket is kept after its last request.
const idleClientTTL = 10 * time.Minute

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// clientLimiters hands out one token bucket per client key.
type clientLimiters struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newClientLimiters(limit rate.Limit, burst int) *clientLimiters {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiters{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > idleClientTTL {
		for k, v := range c.visitors {
			if now.Sub(v.seen) > idleClientTTL {
				delete(c.visitors, k)
			}
		}
		c.lastSweep = now
	}

	v, ok := c.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.visitors[key] = v
	}
	v.seen = now
	return v.limiter.AllowN(now, 1)
}

// retryAfter is the number of whole seconds until one token is back.
func (c *clientLimiters) retryAfter() string {
	if c.limit <= 0 {
		return "1"
	}
	secs := int(math.Ceil(1 / float64(c.limit)))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// RateLimitMiddleware enforces per-IP token buckets. Model and barcode calls
// draw from a separate bucket at half the rate because each of them costs an
// outbound request. If RateLimitRPS <= 0, the middleware is a no-op pass-through.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	if cfg.RateLimitRPS <= 0 {
		return next // disabled
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = cfg.RateLimitRPS
	}

	general := newClientLimiters(rate.Limit(cfg.RateLimitRPS), burst)
	costly := newClientLimiters(rate.Limit(cfg.RateLimitRPS)/2, burst/2)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		buckets := general
		if isCostlyPath(r.URL.Path) {
			buckets = costly
		}

		if !buckets.allow(clientIP(r)) {
			w.Header().Set("Retry-After", buckets.retryAfter())
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isCostlyPath(path string) bool {
	return strings.HasPrefix(path, "/v1/agent/") ||
		path == "/api/agent" ||
		strings.HasPrefix(path, "/v1/lookup/")
}

// clientIP prefers the first X-Forwarded-For hop for proxied setups.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
