/**
 * @description
 * Audit log queries. Audit failures are never allowed to fail the action
 * they record, so the service layer logs and continues on insert errors.
 */
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// InsertAuditLog records one subscription change.
func (r *Repository) InsertAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error {
	changesJSON, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to encode audit changes: %w", err)
	}
	query := `
        INSERT INTO subscription_audit_log (id, subscription_id, user_id, action, changes)
        VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.Exec(ctx, query, entry.ID, entry.SubscriptionID, entry.UserID, entry.Action, changesJSON)
	return err
}

// ListAuditLog returns a user's audit entries, newest first, optionally
// filtered by subscription.
func (r *Repository) ListAuditLog(ctx context.Context, userID, subscriptionID string) ([]domain.AuditLogEntry, error) {
	query := `
        SELECT id, subscription_id, user_id, action, changes, created_at
        FROM subscription_audit_log
        WHERE user_id = $1 AND ($2 = '' OR subscription_id = $2)
        ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		var changesJSON []byte
		if err := rows.Scan(&entry.ID, &entry.SubscriptionID, &entry.UserID, &entry.Action, &changesJSON, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &entry.Changes); err != nil {
				return nil, fmt.Errorf("failed to decode audit changes: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
