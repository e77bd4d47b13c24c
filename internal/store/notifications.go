/**
 * @description
 * Notification queries. Deduplication of the renewal sweep relies on the
 * unique index over (subscription_id, type, notify_date): the insert is
 * conflict-free rather than read-then-insert, so two overlapping sweeps on
 * the same day still produce at most one row.
 */
package store

import (
	"context"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// CreateNotificationIfAbsentToday inserts a notification unless one with
// the same subscription and type was already created today. Returns false
// when the row already existed.
func (r *Repository) CreateNotificationIfAbsentToday(ctx context.Context, n *domain.Notification) (bool, error) {
	query := `
        INSERT INTO notifications (id, user_id, subscription_id, type, title, message, is_read, scheduled_for, notify_date)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, CURRENT_DATE)
        ON CONFLICT (subscription_id, type, notify_date) DO NOTHING`
	tag, err := r.db.Exec(ctx, query,
		n.ID, n.UserID, n.SubscriptionID, n.Type, n.Title, n.Message, n.ScheduledFor)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// NotificationExistsToday reports whether a notification of the given type
// was already created for the subscription today. The sweep uses it as a
// cheap pre-check; correctness comes from the insert's unique index.
func (r *Repository) NotificationExistsToday(ctx context.Context, subscriptionID, notifType string) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE subscription_id = $1 AND type = $2 AND notify_date = CURRENT_DATE
        )`
	err := r.db.QueryRow(ctx, query, subscriptionID, notifType).Scan(&exists)
	return exists, err
}

// ListNotifications returns a user's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, subscription_id, type, title, message, is_read, scheduled_for, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SubscriptionID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.ScheduledFor, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags a notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteNotification removes a notification.
func (r *Repository) DeleteNotification(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
