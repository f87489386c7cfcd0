package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bakery-be/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Login and session functions (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	ServiceAuthHeader = "X-Service-Auth"
	visitorTTL        = 3 * time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	internalKey string
	strict      map[string]bool

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewLimiter builds a per-caller limiter. Functions named in strictFns get
// the strict tier; callers presenting internalKey get the internal tier.
func NewLimiter(internalKey string, strictFns ...string) *Limiter {
	l := &Limiter{
		internalKey: internalKey,
		strict:      map[string]bool{},
		visitors:    map[string]*visitor{},
	}
	for _, fn := range strictFns {
		l.strict[fn] = true
	}
	return l
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (l *Limiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		l.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup drops idle visitors every minute until ctx is done.
func (l *Limiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict(time.Now())
		}
	}
}

func (l *Limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *Limiter) Build() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Determine Rate Tier
		limit, burst, tier := l.resolveRateTier(c)

		// 2. Determine Identity Key
		var identity string
		if openID, ok := utils.GetUserIDFromContext(c.Request.Context()); ok {
			identity = "user:" + openID
		} else if deviceID := c.GetHeader("X-Device-ID"); deviceID != "" {
			identity = "device:" + deviceID
		} else {
			identity = "ip:" + c.ClientIP()
		}

		// 3. Separate quotas per tier for the same caller
		limiter := l.getVisitor(identity+":"+tier, limit, burst)
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}

		c.Next()
	}
}

// resolveRateTier determines which rate limit policy applies to the request.
func (l *Limiter) resolveRateTier(c *gin.Context) (rate.Limit, int, string) {
	if l.internalKey != "" && c.GetHeader(ServiceAuthHeader) == l.internalKey {
		return limitInternal, burstInternal, "internal"
	}
	if l.strict[c.Param("name")] {
		return limitStrict, burstStrict, "strict"
	}
	return limitGeneral, burstGeneral, "general"
}
