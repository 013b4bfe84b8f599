package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cobranza/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────
// Fixed window per caller. Authenticated requests are keyed by trabajador so a
// crew sharing one NAT does not starve each other; anonymous ones by IP.

type ventana struct {
	count     int
	windowEnd time.Time
}

type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*ventana
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: time.Now, entries: make(map[string]*ventana)}
}

// permitir records one hit for key and reports whether it is within the
// limit, plus the end of the current window.
func (rl *RateLimiter) permitir(key string) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.entries[key]
	if !ok || now.After(v.windowEnd) {
		v = &ventana{windowEnd: now.Add(rl.window)}
		rl.entries[key] = v
	}
	v.count++
	return v.count <= rl.limit, v.windowEnd
}

// Middleware must run after JWTAuth to key by trabajador.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if actor := Actor(c); actor != uuid.Nil {
			key = "actor:" + actor.String()
		}
		ok, fin := rl.permitir(key)
		if !ok {
			segundos := int(fin.Sub(rl.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(segundos))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// purgar drops expired windows and returns how many were removed.
func (rl *RateLimiter) purgar() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	n := 0
	for k, v := range rl.entries {
		if now.After(v.windowEnd) {
			delete(rl.entries, k)
			n++
		}
	}
	return n
}

// StartPurge removes expired entries every interval until ctx is done.
func (rl *RateLimiter) StartPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := rl.purgar(); n > 0 {
					log.Debug().Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}
