// Package marketplace is the engine's view of the marketplace backend. The
// conversation only talks to it through Facade and treats every failure as a
// business error.
package marketplace

import (
	"context"
	"time"

	"github.com/farmgate/whatsapp-engine/internal/database"
	"github.com/farmgate/whatsapp-engine/internal/model"
)

type Facade interface {
	FindAccountByPhone(ctx context.Context, phone string) (*model.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	CreateAccount(ctx context.Context, in model.SignupInput) (*model.Account, error)
	MarkVerified(ctx context.Context, userID string) error
	LinkPhone(ctx context.Context, userID, phone string) error
	UnlinkPhone(ctx context.Context, userID string) error
	AttachIDDocument(ctx context.Context, userID, objectKey string) error

	CreateProduct(ctx context.Context, sellerID string, in model.ProductInput) (*model.Product, error)
	ListSellerProducts(ctx context.Context, sellerID string, limit, offset int) ([]model.Product, error)
	BrowseProducts(ctx context.Context, limit, offset int) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SetCartItem(ctx context.Context, buyerID, productID string, quantity float64) error
	ListCart(ctx context.Context, buyerID string) ([]model.CartItem, error)

	CreateHarvestRequest(ctx context.Context, buyerID string, in model.HarvestInput) (*model.HarvestRequest, error)
	ListOpenHarvestRequests(ctx context.Context, limit, offset int) ([]model.HarvestRequest, error)
	GetHarvestRequest(ctx context.Context, ref string) (*model.HarvestRequest, error)
	AcknowledgeHarvestRequest(ctx context.Context, sellerID, requestID string) error
	CreateQuote(ctx context.Context, sellerID string, in model.QuoteInput) (*model.Quote, error)

	ListPendingOrders(ctx context.Context, sellerID string, limit, offset int) ([]model.Order, error)
	GetOrder(ctx context.Context, sellerID, ref string) (*model.Order, error)
	AcceptOrder(ctx context.Context, sellerID, orderID string, in model.OrderAcceptance) (*model.Order, error)
	RejectOrder(ctx context.Context, sellerID, orderID, reason string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, sellerID, orderID string, status model.OrderStatus, tracking *string) (*model.Order, error)

	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, userID, ref string) (*model.Transaction, error)
}

// Store implements Facade directly on the marketplace Postgres schema.
type Store struct {
	db  *database.DB
	now func() time.Time
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

var _ Facade = (*Store)(nil)
