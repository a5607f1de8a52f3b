package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLog(t *testing.T) {
	buf := captureLog(t)
	before := testutil.ToFloat64(eventsCounter.WithLabelValues(string(EventAccountLock)))

	Log(context.Background(), Event{
		Type:    EventAccountLock,
		UserID:  "u1",
		Phone:   "***0001",
		Details: map[string]interface{}{"reason": "idle", "attempts": 3},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "security", entry["audit"])
	assert.Equal(t, "account_lock", entry["event_type"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "***0001", entry["phone"])
	assert.Equal(t, "idle", entry["reason"])
	assert.Equal(t, float64(3), entry["attempts"])
	assert.NotContains(t, entry, "ip")

	assert.Equal(t, before+1, testutil.ToFloat64(eventsCounter.WithLabelValues(string(EventAccountLock))))
}

func TestLogFromRequest(t *testing.T) {
	buf := captureLog(t)
	req := httptest.NewRequest("POST", "/webhooks/whatsapp", nil)
	req.RemoteAddr = "203.0.113.9"
	req.Header.Set("User-Agent", "facebookexternalua")
	req.Header.Set("X-Forwarded-For", "10.0.0.1")

	LogFromRequest(req, Event{Type: EventSignatureFailure})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "203.0.113.9", entry["ip"])
	assert.Equal(t, "facebookexternalua", entry["user_agent"])
}
