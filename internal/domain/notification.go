/**
 * @description
 * Notification model. Notifications are created only by the renewal sweep;
 * users mark them read or delete them from the UI.
 */
package domain

import "time"

// NotificationTypeUpcomingPayment tags due-date reminder notifications.
const NotificationTypeUpcomingPayment = "upcoming_payment"

// Notification is one reminder generated for a subscription's upcoming
// renewal. At most one exists per (subscription, type, calendar day).
type Notification struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SubscriptionID string    `json:"subscription_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"is_read"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	CreatedAt      time.Time `json:"created_at"`
}
