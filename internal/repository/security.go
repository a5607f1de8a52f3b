package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmgate/whatsapp-engine/internal/model"
)

type SecurityRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.SecurityState, error)
	Lock(ctx context.Context, userID string, reason model.LockReason) error
	Unlock(ctx context.Context, userID string) error
	SetPairing(ctx context.Context, userID string, fingerprint string) error
	TouchActivity(ctx context.Context, userID string, at time.Time) error
}

type securityRepo struct {
	db *sqlx.DB
}

func NewSecurityRepository(db *sqlx.DB) SecurityRepository {
	return &securityRepo{db: db}
}

func (r *securityRepo) FindByUserID(ctx context.Context, userID string) (*model.SecurityState, error) {
	var s model.SecurityState
	err := r.db.GetContext(ctx, &s, `
		SELECT * FROM whatsapp_security WHERE user_id = $1
	`, userID)
	return HandleNotFound(&s, err)
}

func (r *securityRepo) Lock(ctx context.Context, userID string, reason model.LockReason) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whatsapp_security (user_id, locked, lock_reason, locked_at)
		VALUES ($1, TRUE, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			locked = TRUE,
			lock_reason = EXCLUDED.lock_reason,
			locked_at = EXCLUDED.locked_at
	`, userID, reason)
	return err
}

func (r *securityRepo) Unlock(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE whatsapp_security SET
			locked = FALSE,
			lock_reason = NULL,
			locked_at = NULL,
			last_activity_at = NOW()
		WHERE user_id = $1
	`, userID)
	return err
}

func (r *securityRepo) SetPairing(ctx context.Context, userID string, fingerprint string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whatsapp_security (user_id, pairing_fingerprint, paired_at, last_activity_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			pairing_fingerprint = EXCLUDED.pairing_fingerprint,
			paired_at = EXCLUDED.paired_at,
			last_activity_at = EXCLUDED.last_activity_at
	`, userID, fingerprint)
	return err
}

func (r *securityRepo) TouchActivity(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO whatsapp_security (user_id, last_activity_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_activity_at = EXCLUDED.last_activity_at
	`, userID, at)
	return err
}
