/**
 * @description
 * Error taxonomy shared across the application layers. The API layer maps
 * these sentinels to HTTP status codes; the scheduler uses them to decide
 * which failures abort a sweep and which are logged and skipped.
 */
package domain

import "errors"

var (
	// ErrValidation marks malformed input. Never partially applied.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing subscription, user, or resource.
	// Missing preferences are not an error; they fall back to defaults.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition marks an illegal status machine move, such as
	// resuming a cancelled subscription. The stored record is left unchanged.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict marks a lost optimistic concurrency race on update.
	ErrConflict = errors.New("subscription was modified concurrently")
)
