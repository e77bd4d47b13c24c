/**
 * @description
 * Audit log model recording subscription changes.
 */
package domain

import "time"

// Audit actions recorded against subscriptions.
const (
	AuditActionCreated     = "created"
	AuditActionUpdated     = "updated"
	AuditActionDeleted     = "deleted"
	AuditActionPaid        = "paid"
	AuditActionTransition  = "status_changed"
	AuditActionAutoExpired = "auto_expired"
)

// AuditLogEntry is one recorded change to a subscription.
type AuditLogEntry struct {
	ID             string            `json:"id"`
	SubscriptionID string            `json:"subscription_id"`
	UserID         string            `json:"user_id"`
	Action         string            `json:"action"`
	Changes        map[string]string `json:"changes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
