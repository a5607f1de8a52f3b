package model

import "time"

// Account is a marketplace user as seen by the conversational channel.
type Account struct {
	ID             string      `db:"id" json:"id"`
	Email          string      `db:"email" json:"email"`
	Name           string      `db:"full_name" json:"name"`
	Phone          *string     `db:"phone" json:"phone,omitempty"`
	OrganizationID *string     `db:"organization_id" json:"organizationId,omitempty"`
	AccountType    AccountType `db:"account_type" json:"accountType"`
	Country        *string     `db:"country" json:"country,omitempty"`
	Verified       bool        `db:"verified" json:"verified"`
}

func (a *Account) SessionUser() *SessionUser {
	u := &SessionUser{
		ID:          a.ID,
		Email:       a.Email,
		AccountType: a.AccountType,
		Name:        a.Name,
	}
	if a.OrganizationID != nil {
		u.OrganizationID = *a.OrganizationID
	}
	return u
}

type SignupInput struct {
	Name        string
	Email       string
	Phone       string
	Country     string
	AccountType AccountType
}

type Product struct {
	ID          string    `db:"id" json:"id"`
	SellerID    string    `db:"seller_id" json:"sellerId"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Description *string   `db:"description" json:"description,omitempty"`
	Price       float64   `db:"price" json:"price"`
	Quantity    float64   `db:"quantity" json:"quantity"`
	Unit        string    `db:"unit" json:"unit"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type ProductInput struct {
	Name        string
	Category    string
	Description *string
	Price       float64
	Quantity    float64
	Unit        string
	Photos      []string
}

type HarvestRequest struct {
	ID        string     `db:"id" json:"id"`
	Reference string     `db:"reference" json:"reference"`
	BuyerID   string     `db:"buyer_id" json:"buyerId"`
	Crop      string     `db:"crop" json:"crop"`
	Quantity  float64    `db:"quantity" json:"quantity"`
	Unit      string     `db:"unit" json:"unit"`
	NeededBy  *time.Time `db:"needed_by" json:"neededBy,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

type HarvestInput struct {
	Crop     string
	Quantity float64
	Unit     string
	NeededBy *time.Time
	Notes    *string
}

type Quote struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"requestId"`
	SellerID  string    `db:"seller_id" json:"sellerId"`
	Price     float64   `db:"price" json:"price"`
	Currency  string    `db:"currency" json:"currency"`
	Quantity  float64   `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type QuoteInput struct {
	RequestID    string
	Price        float64
	Currency     string
	Quantity     float64
	DeliveryDate *time.Time
	Notes        *string
}

type OrderAcceptance struct {
	ETA      time.Time
	Shipping *string
}

type Order struct {
	ID          string      `db:"id" json:"id"`
	Reference   string      `db:"reference" json:"reference"`
	SellerID    string      `db:"seller_id" json:"sellerId"`
	BuyerName   string      `db:"buyer_name" json:"buyerName"`
	ProductName string      `db:"product_name" json:"productName"`
	Quantity    float64     `db:"quantity" json:"quantity"`
	Unit        string      `db:"unit" json:"unit"`
	Total       float64     `db:"total" json:"total"`
	Currency    string      `db:"currency" json:"currency"`
	Status      OrderStatus `db:"status" json:"status"`
	Tracking    *string     `db:"tracking" json:"tracking,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

type Transaction struct {
	ID        string    `db:"id" json:"id"`
	Reference string    `db:"reference" json:"reference"`
	OrderID   *string   `db:"order_id" json:"orderId,omitempty"`
	Amount    float64   `db:"amount" json:"amount"`
	Currency  string    `db:"currency" json:"currency"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CartItem struct {
	ProductID   string  `db:"product_id" json:"productId"`
	ProductName string  `db:"product_name" json:"productName"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	Unit        string  `db:"unit" json:"unit"`
	Price       float64 `db:"price" json:"price"`
}
