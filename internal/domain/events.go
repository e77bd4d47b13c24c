/**
 * @description
 * This file defines the event payloads published to the message broker so
 * downstream consumers (e.g. a push/email worker) can react to changes
 * without polling the database.
 */
package domain

import "time"

// Exchange and routing keys for published events.
const (
	EventsExchange                = "subscription_events"
	RoutingKeyPaymentRecorded     = "subscription.payment.recorded"
	RoutingKeyNotificationCreated = "subscription.notification.created"
)

// PaymentRecordedEvent is published after a payment is recorded and the
// subscription's next billing date has advanced.
type PaymentRecordedEvent struct {
	SubscriptionID  string    `json:"subscription_id"`
	UserID          string    `json:"user_id"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	PaymentDate     time.Time `json:"payment_date"`
	NextBillingDate time.Time `json:"next_billing_date"`
}

// NotificationCreatedEvent is published when the renewal sweep creates a
// reminder notification.
type NotificationCreatedEvent struct {
	NotificationID string    `json:"notification_id"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	DaysUntil      int       `json:"days_until"`
	ScheduledFor   time.Time `json:"scheduled_for"`
}
