/**
 * @description
 * Payment method queries.
 */
package store

import (
	"context"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// ListPaymentMethods returns a user's payment methods ordered by name.
func (r *Repository) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	query := `
        SELECT id, user_id, name, COALESCE(provider, ''), COALESCE(type, ''), COALESCE(color, ''), is_active, created_at
        FROM payment_methods
        WHERE user_id = $1
        ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Provider, &m.Type, &m.Color, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// CreatePaymentMethod inserts a new payment method and returns the stored row.
func (r *Repository) CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	var created domain.PaymentMethod
	query := `
        INSERT INTO payment_methods (id, user_id, name, provider, type, color, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, user_id, name, COALESCE(provider, ''), COALESCE(type, ''), COALESCE(color, ''), is_active, created_at`
	err := r.db.QueryRow(ctx, query,
		m.ID, m.UserID, m.Name, m.Provider, m.Type, m.Color, m.IsActive,
	).Scan(&created.ID, &created.UserID, &created.Name, &created.Provider, &created.Type, &created.Color, &created.IsActive, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePaymentMethod removes a payment method.
func (r *Repository) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}
