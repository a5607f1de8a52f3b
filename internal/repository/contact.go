package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/farmgate/whatsapp-engine/internal/model"
)

type ContactRepository interface {
	FindByPhone(ctx context.Context, phone string) (*model.Contact, error)
	Upsert(ctx context.Context, params model.UpsertContactParams) (*model.Contact, error)
	SetUser(ctx context.Context, phone string, userID *string) error
	SetOptedOut(ctx context.Context, phone string, optedOut bool) error
	SetLocale(ctx context.Context, phone string, locale string) error
	FindPhoneByUserID(ctx context.Context, userID string) (string, error)
}

type contactRepo struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) FindByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	var c model.Contact
	err := r.db.GetContext(ctx, &c, `
		SELECT * FROM whatsapp_contacts WHERE phone = $1
	`, phone)
	return HandleNotFound(&c, err)
}

func (r *contactRepo) Upsert(ctx context.Context, params model.UpsertContactParams) (*model.Contact, error) {
	var c model.Contact
	err := r.db.GetContext(ctx, &c, `
		INSERT INTO whatsapp_contacts (phone, profile_name, last_inbound_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE SET
			profile_name = COALESCE(EXCLUDED.profile_name, whatsapp_contacts.profile_name),
			last_inbound_at = EXCLUDED.last_inbound_at
		RETURNING *
	`, params.Phone, params.ProfileName, params.InboundAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRepo) SetUser(ctx context.Context, phone string, userID *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE whatsapp_contacts SET user_id = $2 WHERE phone = $1
	`, phone, userID)
	return err
}

func (r *contactRepo) SetOptedOut(ctx context.Context, phone string, optedOut bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE whatsapp_contacts SET opted_out = $2 WHERE phone = $1
	`, phone, optedOut)
	return err
}

func (r *contactRepo) SetLocale(ctx context.Context, phone string, locale string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE whatsapp_contacts SET locale = $2 WHERE phone = $1
	`, phone, locale)
	return err
}

func (r *contactRepo) FindPhoneByUserID(ctx context.Context, userID string) (string, error) {
	var phone string
	err := r.db.GetContext(ctx, &phone, `
		SELECT phone FROM whatsapp_contacts
		WHERE user_id = $1
		ORDER BY last_inbound_at DESC NULLS LAST
		LIMIT 1
	`, userID)
	p, err := HandleNotFound(&phone, err)
	if p == nil {
		return "", err
	}
	return *p, nil
}
