package model

import (
	"time"
)

// Contact is a WhatsApp number that has written to the business.
type Contact struct {
	Phone         string     `db:"phone" json:"phone"`
	ProfileName   *string    `db:"profile_name" json:"profileName,omitempty"`
	UserID        *string    `db:"user_id" json:"userId,omitempty"`
	Locale        string     `db:"locale" json:"locale"`
	OptedOut      bool       `db:"opted_out" json:"optedOut"`
	FirstSeenAt   time.Time  `db:"first_seen_at" json:"firstSeenAt"`
	LastInboundAt *time.Time `db:"last_inbound_at" json:"lastInboundAt,omitempty"`
}

type UpsertContactParams struct {
	Phone       string
	ProfileName *string
	InboundAt   time.Time
}
