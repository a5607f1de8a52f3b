package middleware

import (
	"net/http"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/httputil"
)

const AdminSecretHeader = "X-Admin-Secret"

type secretAuthenticator interface {
	Authenticate(secret string) bool
}

// AdminSecretMiddleware guards operator endpoints with the shared admin secret.
type AdminSecretMiddleware struct {
	auth secretAuthenticator
}

func NewAdminSecretMiddleware(auth secretAuthenticator) *AdminSecretMiddleware {
	return &AdminSecretMiddleware{auth: auth}
}

func (m *AdminSecretMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := r.Header.Get(AdminSecretHeader)
		if secret == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Missing admin secret"))
			return
		}
		if !m.auth.Authenticate(secret) {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventAuthFailure,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			httputil.WriteError(w, apperrors.Unauthorized("Invalid admin secret"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
