package marketplace

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/farmgate/whatsapp-engine/internal/errors"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/repository"
)

const productColumns = `id, seller_id, name, category, description, price, quantity, unit, created_at`

func (s *Store) CreateProduct(ctx context.Context, sellerID string, in model.ProductInput) (*model.Product, error) {
	var p model.Product
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &p, `
			INSERT INTO products (seller_id, name, category, description, price, quantity, unit, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
			RETURNING `+productColumns,
			sellerID, in.Name, in.Category, in.Description, in.Price, in.Quantity, in.Unit); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		for i, key := range in.Photos {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_photos (product_id, object_key, position) VALUES ($1, $2, $3)
			`, p.ID, key, i); err != nil {
				return fmt.Errorf("attach photo: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListSellerProducts(ctx context.Context, sellerID string, limit, offset int) ([]model.Product, error) {
	var products []model.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+` FROM products
		WHERE seller_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	return products, err
}

func (s *Store) BrowseProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	var products []model.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+` FROM products
		WHERE status = 'active' AND quantity > 0
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return products, err
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.db.GetContext(ctx, &p, `
		SELECT `+productColumns+` FROM products WHERE id::text = $1 AND status = 'active'
	`, id)
	return repository.HandleNotFound(&p, err)
}

// SetCartItem sets the quantity of a product in the buyer's cart. Zero removes it.
func (s *Store) SetCartItem(ctx context.Context, buyerID, productID string, quantity float64) error {
	if quantity <= 0 {
		_, err := s.db.ExecContext(ctx, `
			DELETE FROM cart_items WHERE buyer_id = $1 AND product_id::text = $2
		`, buyerID, productID)
		return err
	}

	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperrors.NotFound("product")
	}
	if quantity > p.Quantity {
		return apperrors.InvalidInput("quantity", "exceeds available stock")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cart_items (buyer_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`, buyerID, p.ID, quantity)
	return err
}

func (s *Store) ListCart(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT c.product_id, p.name AS product_name, c.quantity, p.unit, p.price
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.buyer_id = $1
		ORDER BY p.name
	`, buyerID)
	return items, err
}
