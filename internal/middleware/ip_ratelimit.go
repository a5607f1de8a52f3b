package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/httputil"
)

type limitChecker interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Time)
}

// IPRateLimitMiddleware bounds requests per client address. Mount it after
// chi's RealIP so RemoteAddr is the caller, not the proxy.
type IPRateLimitMiddleware struct {
	limiter limitChecker
	limit   int
	window  time.Duration
	prefix  string
}

func NewIPRateLimitMiddleware(limiter limitChecker, limit int, window time.Duration, prefix string) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ip:%s:%s", m.prefix, r.RemoteAddr)
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)
		if !allowed {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"scope": m.prefix},
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(time.Until(resetAt).Seconds())+1))
			httputil.WriteError(w, apperrors.RateLimitExceeded())
			return
		}
		next.ServeHTTP(w, r)
	})
}
