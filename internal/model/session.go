package model

import "time"

const (
	LocaleEnglish = "en"
	LocaleSpanish = "es"
)

// SessionUser is the platform identity bound to a phone number.
type SessionUser struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	OrganizationID string      `json:"organizationId,omitempty"`
	AccountType    AccountType `json:"accountType"`
	Name           string      `json:"name"`
}

// Session is the per-phone conversational state. It is persisted as JSON by
// the durable store, so Data values come back as JSON-decoded types.
type Session struct {
	Flow      Flow           `json:"flow"`
	Data      map[string]any `json:"data"`
	User      *SessionUser   `json:"user,omitempty"`
	Locale    string         `json:"locale"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func NewSession(now time.Time) Session {
	return Session{
		Flow:      FlowMenu,
		Data:      map[string]any{},
		Locale:    LocaleEnglish,
		UpdatedAt: now,
	}
}
