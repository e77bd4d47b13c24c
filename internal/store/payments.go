/**
 * @description
 * Payment queries. RecordPayment is the one multi-statement write in the
 * application: the payment history insert and the subscription advance must
 * commit together or not at all.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// RecordPaymentParams carries the subscription update half of a payment.
type RecordPaymentParams struct {
	NextBillingDate time.Time
	LastPaymentDate time.Time
	Token           time.Time
}

// RecordPayment atomically inserts a payment history row and advances its
// subscription: next_billing_date moves forward, status becomes active,
// is_trial is cleared. The subscription update is guarded by the optimistic
// token; a lost race rolls back the payment insert as well.
func (r *Repository) RecordPayment(ctx context.Context, payment *domain.PaymentHistory, params RecordPaymentParams) (*domain.PaymentHistory, *domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var created domain.PaymentHistory
	insertQuery := `
        INSERT INTO payment_history (id, subscription_id, user_id, amount, payment_date, status, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, subscription_id, user_id, amount, payment_date, status, COALESCE(notes, ''), created_at`
	err = tx.QueryRow(ctx, insertQuery,
		payment.ID, payment.SubscriptionID, payment.UserID, payment.Amount,
		payment.PaymentDate, payment.Status, payment.Notes,
	).Scan(
		&created.ID, &created.SubscriptionID, &created.UserID, &created.Amount,
		&created.PaymentDate, &created.Status, &created.Notes, &created.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	updateQuery := `
        UPDATE subscriptions
        SET next_billing_date = $1,
            last_payment_date = $2,
            status = 'active',
            is_trial = FALSE,
            updated_at = NOW()
        WHERE id = $3 AND user_id = $4 AND updated_at = $5
        RETURNING` + subscriptionColumns
	updated, err := scanSubscription(tx.QueryRow(ctx, updateQuery,
		params.NextBillingDate, params.LastPaymentDate,
		payment.SubscriptionID, payment.UserID, params.Token,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, r.classifyUpdateMiss(ctx, payment.UserID, payment.SubscriptionID)
		}
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &created, updated, nil
}

// ListPaymentHistory returns a subscription's payments, newest first.
func (r *Repository) ListPaymentHistory(ctx context.Context, userID, subscriptionID string) ([]domain.PaymentHistory, error) {
	query := `
        SELECT id, subscription_id, user_id, amount, payment_date, status, COALESCE(notes, ''), created_at
        FROM payment_history
        WHERE subscription_id = $1 AND user_id = $2
        ORDER BY payment_date DESC`
	rows, err := r.db.Query(ctx, query, subscriptionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.PaymentHistory
	for rows.Next() {
		var p domain.PaymentHistory
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.UserID, &p.Amount, &p.PaymentDate, &p.Status, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// TotalPaid sums all paid amounts for a user across subscriptions.
func (r *Repository) TotalPaid(ctx context.Context, userID string) (float64, error) {
	var total float64
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM payment_history
        WHERE user_id = $1 AND status = 'paid'`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
