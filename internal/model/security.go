package model

import "time"

// SecurityState holds lock and pairing state for a platform user.
type SecurityState struct {
	UserID             string      `db:"user_id" json:"userId"`
	Locked             bool        `db:"locked" json:"locked"`
	LockReason         *LockReason `db:"lock_reason" json:"lockReason,omitempty"`
	LockedAt           *time.Time  `db:"locked_at" json:"lockedAt,omitempty"`
	LastActivityAt     *time.Time  `db:"last_activity_at" json:"lastActivityAt,omitempty"`
	PairingFingerprint *string     `db:"pairing_fingerprint" json:"-"`
	PairedAt           *time.Time  `db:"paired_at" json:"pairedAt,omitempty"`
}
