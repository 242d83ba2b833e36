package domain

import "time"

// PaymentStatus boost payment lifecycle status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Boost pricing: fixed price, fixed window.
const (
	BoostPriceCents    int64  = 999
	BoostCurrency      string = "usd"
	BoostDuration             = 7 * 24 * time.Hour
)

// BoostPayment one payment attempt for boosting a listing. The
// gateway-issued checkout session id is unique and doubles as the
// idempotency key for confirmation.
type BoostPayment struct {
	ID                uint64        `gorm:"primaryKey" json:"id"`
	ListingID         uint64        `gorm:"column:listing_id;not null;index" json:"listing_id"`
	UserID            uint64        `gorm:"column:user_id;not null;index" json:"user_id"`
	CheckoutSessionID string        `gorm:"column:checkout_session_id;size:200;not null;uniqueIndex" json:"checkout_session_id"`
	Amount            int64         `gorm:"column:amount;not null" json:"amount"` // minor units
	Currency          string        `gorm:"column:currency;size:3;default:usd" json:"currency"`
	Status            PaymentStatus `gorm:"column:status;size:20;default:pending;index" json:"status"`
	CreatedAt         time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	CompletedAt       *time.Time    `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (BoostPayment) TableName() string {
	return "boost_payments"
}

// BoostCheckoutResponse returned when a checkout session is opened
type BoostCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}
