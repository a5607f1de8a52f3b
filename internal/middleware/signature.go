package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/audit"
	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/httputil"
	"github.com/farmgate/whatsapp-engine/internal/service"
	"github.com/farmgate/whatsapp-engine/internal/util"
)

const (
	SignatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// WhatsAppSignatureMiddleware checks the provider's HMAC-SHA256 signature of
// the raw body against the app secret.
type WhatsAppSignatureMiddleware struct {
	secret string
}

func NewWhatsAppSignatureMiddleware(appSecret string) *WhatsAppSignatureMiddleware {
	return &WhatsAppSignatureMiddleware{secret: appSecret}
}

// Sign returns the header value the provider would send for body.
func Sign(appSecret string, body []byte) string {
	return signaturePrefix + util.HmacSHA256(appSecret, string(body))
}

func (m *WhatsAppSignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("webhook signature verification bypassed: WHATSAPP_APP_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("signature middleware: failed to read body")
			httputil.WriteError(w, apperrors.ValidationError("failed to read request body"))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		header := r.Header.Get(SignatureHeader)
		if !strings.HasPrefix(header, signaturePrefix) ||
			!util.ConstantTimeEqual(Sign(m.secret, body), header) {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventSignatureFailure,
				Details: map[string]interface{}{"present": header != ""},
			})
			service.CountWebhook(service.ResultSignatureRejected)
			httputil.WriteError(w, apperrors.SignatureMismatch())
			return
		}

		next.ServeHTTP(w, r)
	})
}
