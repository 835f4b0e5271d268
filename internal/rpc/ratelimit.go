package rpc

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"

	svcErr "github.com/oggyb/spotme/internal/errors"
	"github.com/oggyb/spotme/internal/session"
)

// RateLimiter keeps one token bucket per user, or per peer address for
// unauthenticated calls.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	limiters map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		limiters: make(map[string]*visitor),
	}
}

// Allow reports whether key may make another call now.
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}

	now := time.Now()
	r.mu.Lock()
	v, ok := r.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = v
	}
	v.lastSeen = now
	if len(r.limiters) > 1024 {
		r.sweep(now)
	}
	r.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

func (r *RateLimiter) sweep(now time.Time) {
	for k, v := range r.limiters {
		if now.Sub(v.lastSeen) > r.idle {
			delete(r.limiters, k)
		}
	}
}

func (r *RateLimiter) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !r.Allow(callerKey(ctx)) {
			return nil, svcErr.Map(svcErr.ErrRateLimited)
		}
		return handler(ctx, req)
	}
}

func callerKey(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok {
		if id := s.Store.Identity(); id != nil {
			return "user:" + id.UserID
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "addr:" + p.Addr.String()
	}
	return "anonymous"
}
