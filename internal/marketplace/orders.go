package marketplace

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/repository"
)

const orderColumns = `o.id, o.reference, o.seller_id, b.full_name AS buyer_name, p.name AS product_name,
	o.quantity, p.unit, o.total, o.currency, o.status, o.tracking, o.created_at`

const orderFrom = `
	FROM orders o
	JOIN users b ON b.id = o.buyer_id
	JOIN products p ON p.id = o.product_id`

func (s *Store) ListPendingOrders(ctx context.Context, sellerID string, limit, offset int) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+orderFrom+`
		WHERE o.seller_id = $1 AND o.status IN ('pending', 'accepted', 'shipped')
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	return orders, err
}

// GetOrder finds one of the seller's orders by id or reference.
func (s *Store) GetOrder(ctx context.Context, sellerID, ref string) (*model.Order, error) {
	var o model.Order
	err := s.db.GetContext(ctx, &o, `
		SELECT `+orderColumns+orderFrom+`
		WHERE o.seller_id = $1 AND (o.id::text = $2 OR upper(o.reference) = upper($2))
	`, sellerID, ref)
	return repository.HandleNotFound(&o, err)
}

func (s *Store) transition(ctx context.Context, sellerID, orderID string, from []model.OrderStatus, to model.OrderStatus, set string, args ...any) (*model.Order, error) {
	allowed := make([]string, 0, len(from))
	for _, st := range from {
		allowed = append(allowed, string(st))
	}

	query := `UPDATE orders SET status = $3, updated_at = NOW()` + set + `
		WHERE id = $1 AND seller_id = $2 AND status = ANY($4)`
	params := append([]any{orderID, sellerID, to, pq.Array(allowed)}, args...)

	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.New(apperrors.ErrCodeConflict, fmt.Sprintf("order cannot move to %s", to))
	}
	return s.GetOrder(ctx, sellerID, orderID)
}

func (s *Store) AcceptOrder(ctx context.Context, sellerID, orderID string, in model.OrderAcceptance) (*model.Order, error) {
	return s.transition(ctx, sellerID, orderID,
		[]model.OrderStatus{model.OrderStatusPending}, model.OrderStatusAccepted,
		`, eta = $5, shipping_method = $6`, in.ETA, in.Shipping)
}

func (s *Store) RejectOrder(ctx context.Context, sellerID, orderID, reason string) (*model.Order, error) {
	return s.transition(ctx, sellerID, orderID,
		[]model.OrderStatus{model.OrderStatusPending}, model.OrderStatusRejected,
		`, rejection_reason = $5`, reason)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, sellerID, orderID string, status model.OrderStatus, tracking *string) (*model.Order, error) {
	return s.transition(ctx, sellerID, orderID,
		[]model.OrderStatus{model.OrderStatusAccepted, model.OrderStatusShipped}, status,
		`, tracking = COALESCE($5, tracking)`, tracking)
}

func (s *Store) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := s.db.SelectContext(ctx, &txns, `
		SELECT id, reference, order_id, amount, currency, status, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return txns, err
}

func (s *Store) GetTransaction(ctx context.Context, userID, ref string) (*model.Transaction, error) {
	var t model.Transaction
	err := s.db.GetContext(ctx, &t, `
		SELECT id, reference, order_id, amount, currency, status, created_at
		FROM transactions
		WHERE user_id = $1 AND (id::text = $2 OR upper(reference) = upper($2))
	`, userID, ref)
	return repository.HandleNotFound(&t, err)
}
