/**
 * @description
 * This file defines the core domain models for subscription tracking.
 * It includes the main Subscription struct that maps to the database table,
 * the billing cycle and status enums, and their boundary parsing helpers.
 */
package domain

import (
	"fmt"
	"time"
)

// BillingCycle is the recurrence unit of a subscription.
type BillingCycle string

const (
	CycleDaily   BillingCycle = "daily"
	CycleWeekly  BillingCycle = "weekly"
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// ParseBillingCycle validates a billing cycle string at the API boundary.
// Unknown values are rejected here rather than silently defaulted, so client
// bugs surface as validation errors instead of monthly charges.
func ParseBillingCycle(s string) (BillingCycle, error) {
	switch BillingCycle(s) {
	case CycleDaily, CycleWeekly, CycleMonthly, CycleYearly:
		return BillingCycle(s), nil
	}
	return "", fmt.Errorf("%w: unknown billing cycle %q", ErrValidation, s)
}

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrial     Status = "trial"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusInactive  Status = "inactive"
)

// ParseStatus validates a subscription status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusTrial, StatusPaused, StatusCancelled, StatusInactive:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// StatusAction is a lifecycle action applied to a subscription.
type StatusAction string

const (
	ActionPause  StatusAction = "pause"
	ActionResume StatusAction = "resume"
	ActionCancel StatusAction = "cancel"
)

// ParseStatusAction validates a lifecycle action string.
func ParseStatusAction(s string) (StatusAction, error) {
	switch StatusAction(s) {
	case ActionPause, ActionResume, ActionCancel:
		return StatusAction(s), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}

// Defaults applied when a subscription is created without these fields.
const (
	DefaultCurrency = "IDR"
	DefaultCategory = "lainnya"
)

// Subscription represents one recurring obligation owned by a user.
type Subscription struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Price           float64      `json:"price"`
	Currency        string       `json:"currency"`
	BillingCycle    BillingCycle `json:"billing_cycle"`
	Category        string       `json:"category"`
	Status          Status       `json:"status"`
	StartDate       time.Time    `json:"start_date"`
	NextBillingDate time.Time    `json:"next_billing_date"`
	LastPaymentDate *time.Time   `json:"last_payment_date,omitempty"`
	IsTrial         bool         `json:"is_trial"`
	TrialEndDate    *time.Time   `json:"trial_end_date,omitempty"`
	AutoRenew       bool         `json:"auto_renew"`
	PaymentMethod   string       `json:"payment_method,omitempty"`
	LogoURL         string       `json:"logo_url,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Validate checks the creation invariants for a subscription.
func (s *Subscription) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if s.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if s.NextBillingDate.Before(s.StartDate) {
		return fmt.Errorf("%w: next billing date must not precede start date", ErrValidation)
	}
	if s.IsTrial {
		if s.TrialEndDate == nil {
			return fmt.Errorf("%w: trial subscriptions require a trial end date", ErrValidation)
		}
		if s.Status != StatusTrial {
			return fmt.Errorf("%w: trial subscriptions must have status %q", ErrValidation, StatusTrial)
		}
	}
	return nil
}
