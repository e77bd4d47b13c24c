/**
 * @description
 * Payment history and payment method models. Payment history is an
 * append-only ledger owned by its subscription and removed with it.
 */
package domain

import "time"

// PaymentStatusPaid is the only status a completed payment record carries.
const PaymentStatusPaid = "paid"

// PaymentHistory represents one completed payment event for a subscription.
// Records are immutable once created.
type PaymentHistory struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	Amount         float64   `json:"amount"`
	PaymentDate    time.Time `json:"payment_date"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentMethod is a user-defined payment instrument label, e.g. a bank
// card nickname or an e-wallet name.
type PaymentMethod struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider,omitempty"`
	Type      string    `json:"type,omitempty"`
	Color     string    `json:"color,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
