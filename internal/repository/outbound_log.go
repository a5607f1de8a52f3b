package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmgate/whatsapp-engine/internal/model"
)

type OutboundLogRepository interface {
	Create(ctx context.Context, params model.CreateOutboundLogParams) (*model.OutboundLog, error)
	FindByRecipient(ctx context.Context, recipient string, limit, offset int) ([]model.OutboundLog, error)
	CountByStatus(ctx context.Context, status model.DeliveryStatus) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type outboundLogRepo struct {
	db *sqlx.DB
}

func NewOutboundLogRepository(db *sqlx.DB) OutboundLogRepository {
	return &outboundLogRepo{db: db}
}

func (r *outboundLogRepo) Create(ctx context.Context, params model.CreateOutboundLogParams) (*model.OutboundLog, error) {
	var entry model.OutboundLog
	err := r.db.GetContext(ctx, &entry, `
		INSERT INTO whatsapp_outbound_log
			(job_id, recipient, kind, payload, status, attempts, error_message, provider_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	`, params.JobID, params.Recipient, params.Kind, params.Payload, params.Status,
		params.Attempts, params.ErrorMessage, params.ProviderID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *outboundLogRepo) FindByRecipient(ctx context.Context, recipient string, limit, offset int) ([]model.OutboundLog, error) {
	var entries []model.OutboundLog
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM whatsapp_outbound_log
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, recipient, limit, offset)
	return entries, err
}

func (r *outboundLogRepo) CountByStatus(ctx context.Context, status model.DeliveryStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM whatsapp_outbound_log WHERE status = $1
	`, status)
	return count, err
}

func (r *outboundLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM whatsapp_outbound_log WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
