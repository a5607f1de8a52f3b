package middleware

import (
	"net/http"
)

// APIHeadersMiddleware marks operator responses as uncacheable JSON that must not be
// framed or sniffed.
type APIHeadersMiddleware struct {
	isProduction bool
}

func NewAPIHeadersMiddleware(isProduction bool) *APIHeadersMiddleware {
	return &APIHeadersMiddleware{isProduction: isProduction}
}

func (m *APIHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if m.isProduction {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
