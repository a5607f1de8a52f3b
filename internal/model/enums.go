package model

// Flow is the named step a conversation is currently in.
type Flow string

const (
	FlowMenu Flow = "menu"

	FlowSignupName    Flow = "signup_name"
	FlowSignupEmail   Flow = "signup_email"
	FlowSignupCountry Flow = "signup_country"
	FlowSignupType    Flow = "signup_type"
	FlowSignupOTP     Flow = "signup_otp"
	FlowLoginEmail    Flow = "login_email"
	FlowLoginOTP      Flow = "login_otp"
	FlowVerifyOTP     Flow = "verify_otp"
	FlowUnlockOTP     Flow = "unlock_otp"

	FlowProductName        Flow = "product_name"
	FlowProductCategory    Flow = "product_category"
	FlowProductDescription Flow = "product_description"
	FlowProductPrice       Flow = "product_price"
	FlowProductQuantity    Flow = "product_quantity"
	FlowProductUnit        Flow = "product_unit"
	FlowProductPhotos      Flow = "product_photos"

	FlowHarvestCrop     Flow = "harvest_crop"
	FlowHarvestWindow   Flow = "harvest_window"
	FlowHarvestQuantity Flow = "harvest_quantity"
	FlowHarvestUnit     Flow = "harvest_unit"
	FlowHarvestNotes    Flow = "harvest_notes"

	FlowQuotePrice    Flow = "quote_price"
	FlowQuoteCurrency Flow = "quote_currency"
	FlowQuoteQuantity Flow = "quote_quantity"
	FlowQuoteDelivery Flow = "quote_delivery"
	FlowQuoteNotes    Flow = "quote_notes"

	FlowOrderAcceptETA    Flow = "order_accept_eta"
	FlowOrderShipping     Flow = "order_shipping"
	FlowOrderRejectReason Flow = "order_reject_reason"
	FlowOrderUpdateStatus Flow = "order_update_status"
	FlowOrderTracking     Flow = "order_tracking"

	FlowTransactionLookup Flow = "transaction_lookup"
	FlowCartQuantity      Flow = "cart_quantity"
	FlowIDDocument        Flow = "id_document"
)

var knownFlows = map[Flow]bool{
	FlowMenu: true,

	FlowSignupName: true, FlowSignupEmail: true, FlowSignupCountry: true, FlowSignupType: true,
	FlowSignupOTP: true, FlowLoginEmail: true, FlowLoginOTP: true, FlowVerifyOTP: true, FlowUnlockOTP: true,

	FlowProductName: true, FlowProductCategory: true, FlowProductDescription: true, FlowProductPrice: true,
	FlowProductQuantity: true, FlowProductUnit: true, FlowProductPhotos: true,

	FlowHarvestCrop: true, FlowHarvestWindow: true, FlowHarvestQuantity: true, FlowHarvestUnit: true,
	FlowHarvestNotes: true,

	FlowQuotePrice: true, FlowQuoteCurrency: true, FlowQuoteQuantity: true, FlowQuoteDelivery: true,
	FlowQuoteNotes: true,

	FlowOrderAcceptETA: true, FlowOrderShipping: true, FlowOrderRejectReason: true,
	FlowOrderUpdateStatus: true, FlowOrderTracking: true,

	FlowTransactionLookup: true, FlowCartQuantity: true, FlowIDDocument: true,
}

func (f Flow) IsKnown() bool {
	return knownFlows[f]
}

type AccountType string

const (
	AccountTypeSeller AccountType = "seller"
	AccountTypeBuyer  AccountType = "buyer"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// SellerSettableStatuses are the statuses a seller may move an accepted order to.
var SellerSettableStatuses = []string{
	string(OrderStatusShipped),
	string(OrderStatusDelivered),
	string(OrderStatusCancelled),
}

type LockReason string

const (
	LockReasonIdle   LockReason = "idle"
	LockReasonManual LockReason = "manual"
)

type DeliveryStatus string

const (
	DeliveryStatusSent         DeliveryStatus = "sent"
	DeliveryStatusDeadLettered DeliveryStatus = "dead_lettered"
)
