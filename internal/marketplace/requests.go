package marketplace

import (
	"context"
	"fmt"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/repository"
)

const harvestColumns = `id, reference, buyer_id, crop, quantity, unit, needed_by, notes, status, created_at`

func (s *Store) CreateHarvestRequest(ctx context.Context, buyerID string, in model.HarvestInput) (*model.HarvestRequest, error) {
	var h model.HarvestRequest
	err := s.db.GetContext(ctx, &h, `
		INSERT INTO harvest_requests (reference, buyer_id, crop, quantity, unit, needed_by, notes, status)
		VALUES ('HR-' || upper(substr(md5(random()::text), 1, 6)), $1, $2, $3, $4, $5, $6, 'open')
		RETURNING `+harvestColumns,
		buyerID, in.Crop, in.Quantity, in.Unit, in.NeededBy, in.Notes)
	if err != nil {
		return nil, fmt.Errorf("create harvest request: %w", err)
	}
	return &h, nil
}

func (s *Store) ListOpenHarvestRequests(ctx context.Context, limit, offset int) ([]model.HarvestRequest, error) {
	var requests []model.HarvestRequest
	err := s.db.SelectContext(ctx, &requests, `
		SELECT `+harvestColumns+` FROM harvest_requests
		WHERE status = 'open'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return requests, err
}

// GetHarvestRequest finds a request by id or by its human reference.
func (s *Store) GetHarvestRequest(ctx context.Context, ref string) (*model.HarvestRequest, error) {
	var h model.HarvestRequest
	err := s.db.GetContext(ctx, &h, `
		SELECT `+harvestColumns+` FROM harvest_requests
		WHERE id::text = $1 OR upper(reference) = upper($1)
	`, ref)
	return repository.HandleNotFound(&h, err)
}

func (s *Store) AcknowledgeHarvestRequest(ctx context.Context, sellerID, requestID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO harvest_request_interests (request_id, seller_id)
		VALUES ($1, $2)
		ON CONFLICT (request_id, seller_id) DO NOTHING
	`, requestID, sellerID)
	return err
}

func (s *Store) CreateQuote(ctx context.Context, sellerID string, in model.QuoteInput) (*model.Quote, error) {
	req, err := s.GetHarvestRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Status != "open" {
		return nil, apperrors.NotFound("harvest request")
	}

	var q model.Quote
	err = s.db.GetContext(ctx, &q, `
		INSERT INTO quotes (request_id, seller_id, price, currency, quantity, delivery_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, request_id, seller_id, price, currency, quantity, created_at
	`, req.ID, sellerID, in.Price, in.Currency, in.Quantity, in.DeliveryDate, in.Notes)
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return &q, nil
}
