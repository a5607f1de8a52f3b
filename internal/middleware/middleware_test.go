package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmgate/whatsapp-engine/internal/util"
)

func okHandler(t *testing.T, wantBody string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantBody != "" {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, wantBody, string(body))
		}
		w.WriteHeader(http.StatusOK)
	})
}

func forbidden(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	code, _ := resp["code"].(string)
	return code
}

func TestWhatsAppSignatureMiddleware(t *testing.T) {
	secret := "app-secret"
	body := `{"object":"whatsapp_business_account"}`

	t.Run("passes through when secret is empty", func(t *testing.T) {
		h := NewWhatsAppSignatureMiddleware("").Handler(okHandler(t, ""))
		req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("accepts valid signature and keeps body readable", func(t *testing.T) {
		h := NewWhatsAppSignatureMiddleware(secret).Handler(okHandler(t, body))
		req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
		req.Header.Set(SignatureHeader, "sha256="+util.HmacSHA256(secret, body))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"missing prefix", util.HmacSHA256(secret, body)},
		{"wrong secret", Sign("other-secret", []byte(body))},
		{"tampered digest", "sha256=deadbeef"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			h := NewWhatsAppSignatureMiddleware(secret).Handler(forbidden(t))
			req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set(SignatureHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "SIGNATURE_MISMATCH", errorCode(t, rec))
		})
	}
}

type secretSet map[string]bool

func (s secretSet) Authenticate(secret string) bool { return s[secret] }

func TestAdminSecretMiddleware(t *testing.T) {
	mw := NewAdminSecretMiddleware(secretSet{"s3cret": true})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong secret", "guess", http.StatusUnauthorized},
		{"valid secret", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/queue/stats", nil)
			if tt.header != "" {
				req.Header.Set(AdminSecretHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Handler(okHandler(t, "")).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestBodyLimitMiddleware(t *testing.T) {
	t.Run("rejects declared oversize body", func(t *testing.T) {
		h := NewBodyLimitMiddleware(8).Handler(forbidden(t))
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("0123456789"))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("allows body within limit", func(t *testing.T) {
		h := NewBodyLimitMiddleware(0).Handler(okHandler(t, "small"))
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("small"))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

type countingLimiter struct {
	hits map[string]int
}

func (c *countingLimiter) CheckLimit(_ context.Context, key string, limit int, window time.Duration) (bool, time.Time) {
	c.hits[key]++
	return c.hits[key] <= limit, time.Now().Add(window)
}

func TestIPRateLimitMiddleware(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}}
	h := NewIPRateLimitMiddleware(limiter, 2, time.Minute, "admin").Handler(okHandler(t, ""))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/admin/queue/stats", nil)
		req.RemoteAddr = "10.0.0.1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	assert.Equal(t, 3, limiter.hits["ip:admin:10.0.0.1"])
}

func TestAPIHeadersMiddleware(t *testing.T) {
	h := NewAPIHeadersMiddleware(true).Handler(okHandler(t, ""))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/queue/stats", nil))

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}
