/**
 * @description
 * This file implements the data access layer for the subscription tracker.
 * It holds the shared repository type and the sentinel errors the service
 * layer matches on.
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrSubscriptionNotFound is returned when a subscription does not exist
	// or is not owned by the requesting user.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNotificationNotFound is returned when a notification lookup misses.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrPaymentMethodNotFound is returned when a payment method lookup misses.
	ErrPaymentMethodNotFound = errors.New("payment method not found")

	// ErrConcurrentUpdate is returned when an update loses the optimistic
	// concurrency check: the row exists but its updated_at no longer matches
	// the token the caller read.
	ErrConcurrentUpdate = errors.New("subscription updated concurrently")
)

// Repository handles database operations for the application.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}
