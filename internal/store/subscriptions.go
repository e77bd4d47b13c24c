/**
 * @description
 * Subscription queries. Updates carry an optimistic concurrency token: the
 * updated_at value the caller last read. A mismatch on an existing row means
 * another client won the race and the caller gets ErrConcurrentUpdate
 * instead of silently overwriting next_billing_date.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

const subscriptionColumns = `
        id, user_id, name, COALESCE(description, ''), price, currency, billing_cycle,
        category, status, start_date, next_billing_date, last_payment_date,
        is_trial, trial_end_date, auto_renew, COALESCE(payment_method, ''),
        COALESCE(logo_url, ''), COALESCE(notes, ''), created_at, updated_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Name, &sub.Description, &sub.Price,
		&sub.Currency, &sub.BillingCycle, &sub.Category, &sub.Status,
		&sub.StartDate, &sub.NextBillingDate, &sub.LastPaymentDate,
		&sub.IsTrial, &sub.TrialEndDate, &sub.AutoRenew, &sub.PaymentMethod,
		&sub.LogoURL, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscription retrieves one subscription owned by the given user.
func (r *Repository) GetSubscription(ctx context.Context, userID, id string) (*domain.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE id = $1 AND user_id = $2`
	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions retrieves all of a user's subscriptions ordered by the
// next billing date, soonest first.
func (r *Repository) ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE user_id = $1
        ORDER BY next_billing_date ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// ListActiveSubscriptions fetches all subscriptions with status 'active'
// across all users. Used by the renewal sweep.
func (r *Repository) ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := `SELECT` + subscriptionColumns + `
        FROM subscriptions
        WHERE status = 'active'`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// CreateSubscription inserts a new subscription and returns the stored row.
func (r *Repository) CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	query := `
        INSERT INTO subscriptions (
            id, user_id, name, description, price, currency, billing_cycle,
            category, status, start_date, next_billing_date, is_trial,
            trial_end_date, auto_renew, payment_method, logo_url, notes
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING` + subscriptionColumns
	return scanSubscription(r.db.QueryRow(ctx, query,
		sub.ID, sub.UserID, sub.Name, sub.Description, sub.Price, sub.Currency,
		sub.BillingCycle, sub.Category, sub.Status, sub.StartDate,
		sub.NextBillingDate, sub.IsTrial, sub.TrialEndDate, sub.AutoRenew,
		sub.PaymentMethod, sub.LogoURL, sub.Notes,
	))
}

// UpdateSubscription overwrites the editable fields of a subscription,
// guarded by the optimistic token.
func (r *Repository) UpdateSubscription(ctx context.Context, sub *domain.Subscription, token time.Time) (*domain.Subscription, error) {
	query := `
        UPDATE subscriptions
        SET name = $1, description = $2, price = $3, currency = $4,
            billing_cycle = $5, category = $6, status = $7, start_date = $8,
            next_billing_date = $9, is_trial = $10, trial_end_date = $11,
            auto_renew = $12, payment_method = $13, logo_url = $14, notes = $15,
            updated_at = NOW()
        WHERE id = $16 AND user_id = $17 AND updated_at = $18
        RETURNING` + subscriptionColumns
	updated, err := scanSubscription(r.db.QueryRow(ctx, query,
		sub.Name, sub.Description, sub.Price, sub.Currency, sub.BillingCycle,
		sub.Category, sub.Status, sub.StartDate, sub.NextBillingDate,
		sub.IsTrial, sub.TrialEndDate, sub.AutoRenew, sub.PaymentMethod,
		sub.LogoURL, sub.Notes, sub.ID, sub.UserID, token,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyUpdateMiss(ctx, sub.UserID, sub.ID)
		}
		return nil, err
	}
	return updated, nil
}

// UpdateSubscriptionStatus changes only the status column, guarded by the
// optimistic token. Used for pause/resume/cancel and the expiry sweep.
func (r *Repository) UpdateSubscriptionStatus(ctx context.Context, userID, id string, status domain.Status, token time.Time) (*domain.Subscription, error) {
	query := `
        UPDATE subscriptions
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND user_id = $3 AND updated_at = $4
        RETURNING` + subscriptionColumns
	updated, err := scanSubscription(r.db.QueryRow(ctx, query, status, id, userID, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyUpdateMiss(ctx, userID, id)
		}
		return nil, err
	}
	return updated, nil
}

// classifyUpdateMiss distinguishes a vanished row from a lost race after a
// guarded update matched nothing.
func (r *Repository) classifyUpdateMiss(ctx context.Context, userID, id string) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1 AND user_id = $2)`,
		id, userID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrConcurrentUpdate
	}
	return ErrSubscriptionNotFound
}

// DeleteSubscription removes a subscription. Payment history and audit rows
// cascade via foreign keys.
func (r *Repository) DeleteSubscription(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
