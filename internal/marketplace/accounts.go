package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/repository"
)

const accountColumns = `id, email, full_name, phone, organization_id, account_type, country, verified`

func (s *Store) FindAccountByPhone(ctx context.Context, phone string) (*model.Account, error) {
	var a model.Account
	err := s.db.GetContext(ctx, &a, `
		SELECT `+accountColumns+` FROM users WHERE phone = $1 AND deleted_at IS NULL
	`, phone)
	return repository.HandleNotFound(&a, err)
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account
	err := s.db.GetContext(ctx, &a, `
		SELECT `+accountColumns+` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`, strings.TrimSpace(email))
	return repository.HandleNotFound(&a, err)
}

// CreateAccount registers a user and a personal organization in one transaction.
func (s *Store) CreateAccount(ctx context.Context, in model.SignupInput) (*model.Account, error) {
	existing, err := s.FindAccountByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("account")
	}

	var a model.Account
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var orgID string
		if err := tx.GetContext(ctx, &orgID, `
			INSERT INTO organizations (name, country, kind)
			VALUES ($1, $2, $3)
			RETURNING id
		`, in.Name, in.Country, in.AccountType); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}

		if err := tx.GetContext(ctx, &a, `
			INSERT INTO users (email, full_name, phone, organization_id, account_type, country, verified)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			RETURNING `+accountColumns, in.Email, in.Name, in.Phone, orgID, in.AccountType, in.Country); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) MarkVerified(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, userID)
	return err
}

// LinkPhone moves phone to userID, detaching it from any other account.
func (s *Store) LinkPhone(ctx context.Context, userID, phone string) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET phone = NULL WHERE phone = $1 AND id <> $2`, phone, userID); err != nil {
			return fmt.Errorf("detach phone: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET phone = $2 WHERE id = $1`, userID, phone); err != nil {
			return fmt.Errorf("link phone: %w", err)
		}
		return nil
	})
}

func (s *Store) UnlinkPhone(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET phone = NULL WHERE id = $1`, userID)
	return err
}

func (s *Store) AttachIDDocument(ctx context.Context, userID, objectKey string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identity_documents (user_id, object_key, status)
		VALUES ($1, $2, 'pending_review')
	`, userID, objectKey)
	return err
}
