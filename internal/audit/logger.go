package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventAuthFailure      EventType = "auth_failure"
	EventRateLimitExceed  EventType = "rate_limit_exceeded"
	EventSignatureFailure EventType = "signature_failure"
	EventTokenRotated     EventType = "token_rotated"
	EventAccountLock      EventType = "account_lock"
	EventAccountUnlock    EventType = "account_unlock"
	EventPairing          EventType = "pairing"
	EventPairingMismatch  EventType = "pairing_mismatch"
	EventOTPSent          EventType = "otp_sent"
	EventOTPExhausted     EventType = "otp_exhausted"
	EventSignup           EventType = "signup"
	EventLogin            EventType = "login"
	EventLogout           EventType = "logout"
	EventOptOut           EventType = "opt_out"
	EventDeadLetter       EventType = "dead_letter"
)

var eventsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wa",
	Name:      "audit_events_total",
	Help:      "Security audit events by type.",
}, []string{"type"})

// Event is one audit record. Phone must already be masked.
type Event struct {
	Type      EventType
	UserID    string
	Phone     string
	IP        string
	UserAgent string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	eventsCounter.WithLabelValues(string(event.Type)).Inc()

	fields := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now())

	for key, value := range map[string]string{
		"user_id":    event.UserID,
		"phone":      event.Phone,
		"ip":         event.IP,
		"user_agent": event.UserAgent,
	} {
		if value != "" {
			fields = fields.Str(key, value)
		}
	}
	logger := fields.Logger()

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

// LogFromRequest records the caller's address as seen after the RealIP
// middleware has rewritten RemoteAddr.
func LogFromRequest(r *http.Request, event Event) {
	event.IP = r.RemoteAddr
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}
