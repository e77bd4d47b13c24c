/**
 * @description
 * This file contains the core business logic for subscription management.
 * The Service layer orchestrates the repository, applies the billing engine,
 * and emits events; HTTP concerns stay in the api package.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/madaldho/sub-scribe-light/internal/billing"
	"github.com/madaldho/sub-scribe-light/internal/domain"
	"github.com/madaldho/sub-scribe-light/internal/store"
)

// Repository defines the database operations the service needs.
type Repository interface {
	GetSubscription(ctx context.Context, userID, id string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error)
	CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *domain.Subscription, token time.Time) (*domain.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, userID, id string, status domain.Status, token time.Time) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, userID, id string) error
	RecordPayment(ctx context.Context, payment *domain.PaymentHistory, params store.RecordPaymentParams) (*domain.PaymentHistory, *domain.Subscription, error)
	ListPaymentHistory(ctx context.Context, userID, subscriptionID string) ([]domain.PaymentHistory, error)
	TotalPaid(ctx context.Context, userID string) (float64, error)
	GetUserPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error)
	UpsertUserPreferences(ctx context.Context, prefs *domain.UserPreferences) (*domain.UserPreferences, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) (*domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id string) error
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	DeleteNotification(ctx context.Context, userID, id string) error
	InsertAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error
	ListAuditLog(ctx context.Context, userID, subscriptionID string) ([]domain.AuditLogEntry, error)
	ListRatesTo(ctx context.Context, to string) (map[string]float64, error)
}

// EventPublisher defines the message broker operations the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// Service provides the business logic for subscription tracking.
type Service struct {
	repo   Repository
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new subscription service. The events publisher may
// be nil when no broker is configured.
func NewService(repo Repository, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// CreateSubscriptionInput carries the fields a user supplies when adding a
// subscription. Enum fields arrive already parsed by the API boundary.
type CreateSubscriptionInput struct {
	Name            string
	Description     string
	Price           float64
	Currency        string
	BillingCycle    domain.BillingCycle
	Category        string
	StartDate       time.Time
	NextBillingDate time.Time
	IsTrial         bool
	TrialEndDate    *time.Time
	AutoRenew       bool
	PaymentMethod   string
	LogoURL         string
	Notes           string
}

// CreateSubscription validates input, applies defaults and persists a new
// subscription. Status defaults to active, or trial when the trial flag is
// set. A zero next billing date is derived from the start date and cycle.
func (s *Service) CreateSubscription(ctx context.Context, userID string, input CreateSubscriptionInput) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		Currency:        input.Currency,
		BillingCycle:    input.BillingCycle,
		Category:        input.Category,
		Status:          domain.StatusActive,
		StartDate:       input.StartDate,
		NextBillingDate: input.NextBillingDate,
		IsTrial:         input.IsTrial,
		TrialEndDate:    input.TrialEndDate,
		AutoRenew:       input.AutoRenew,
		PaymentMethod:   input.PaymentMethod,
		LogoURL:         input.LogoURL,
		Notes:           input.Notes,
	}
	if sub.Currency == "" {
		sub.Currency = domain.DefaultCurrency
	}
	if sub.Category == "" {
		sub.Category = domain.DefaultCategory
	}
	if sub.IsTrial {
		sub.Status = domain.StatusTrial
	}
	if sub.NextBillingDate.IsZero() && !sub.StartDate.IsZero() {
		sub.NextBillingDate = billing.NextBillingDate(sub.StartDate, sub.BillingCycle)
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, created, domain.AuditActionCreated, nil)
	return created, nil
}

// GetSubscription retrieves one subscription with the expiry sweep applied.
func (s *Service) GetSubscription(ctx context.Context, userID, id string) (*domain.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return s.applyExpirySweep(ctx, sub), nil
}

// ListSubscriptions retrieves all of a user's subscriptions with the expiry
// sweep applied to each.
func (s *Service) ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i] = *s.applyExpirySweep(ctx, &subs[i])
	}
	return subs, nil
}

// applyExpirySweep derives the effective status and, when an overdue
// active/trial subscription must flip to cancelled, persists the flip.
// The derived status is returned even if persisting fails; readers must
// never see a stale active status on an overdue subscription.
func (s *Service) applyExpirySweep(ctx context.Context, sub *domain.Subscription) *domain.Subscription {
	effective := billing.EffectiveStatus(sub, s.now())
	if effective == sub.Status {
		return sub
	}

	updated, err := s.repo.UpdateSubscriptionStatus(ctx, sub.UserID, sub.ID, effective, sub.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to persist expiry sweep", "subscription_id", sub.ID, "error", err)
		sub.Status = effective
		return sub
	}
	s.audit(ctx, updated, domain.AuditActionAutoExpired, map[string]string{"status": string(effective)})
	return updated
}

// UpdateSubscriptionInput carries a full replacement of the editable fields.
type UpdateSubscriptionInput struct {
	Name            string
	Description     string
	Price           float64
	Currency        string
	BillingCycle    domain.BillingCycle
	Category        string
	Status          domain.Status
	StartDate       time.Time
	NextBillingDate time.Time
	IsTrial         bool
	TrialEndDate    *time.Time
	AutoRenew       bool
	PaymentMethod   string
	LogoURL         string
	Notes           string
}

// UpdateSubscription replaces the editable fields of a subscription. This is
// the explicit-edit path, so it may set any valid status, including bringing
// a cancelled subscription back.
func (s *Service) UpdateSubscription(ctx context.Context, userID, id string, input UpdateSubscriptionInput) (*domain.Subscription, error) {
	current, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}

	sub := &domain.Subscription{
		ID:              current.ID,
		UserID:          current.UserID,
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		Currency:        input.Currency,
		BillingCycle:    input.BillingCycle,
		Category:        input.Category,
		Status:          input.Status,
		StartDate:       input.StartDate,
		NextBillingDate: input.NextBillingDate,
		IsTrial:         input.IsTrial,
		TrialEndDate:    input.TrialEndDate,
		AutoRenew:       input.AutoRenew,
		PaymentMethod:   input.PaymentMethod,
		LogoURL:         input.LogoURL,
		Notes:           input.Notes,
	}
	if sub.Currency == "" {
		sub.Currency = current.Currency
	}
	if sub.Category == "" {
		sub.Category = current.Category
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSubscription(ctx, sub, current.UpdatedAt)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.audit(ctx, updated, domain.AuditActionUpdated, nil)
	return updated, nil
}

// DeleteSubscription removes a subscription and, via cascade, its payment
// history.
func (s *Service) DeleteSubscription(ctx context.Context, userID, id string) error {
	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return translateStoreErr(err)
	}
	if err := s.repo.DeleteSubscription(ctx, userID, id); err != nil {
		return translateStoreErr(err)
	}
	s.audit(ctx, sub, domain.AuditActionDeleted, nil)
	return nil
}

// RecordPayment marks a subscription as paid. The next billing date always
// advances from the previous due date, never from today, so paying late
// does not shorten the following period. A trial converts to a paying
// subscription here and nowhere else.
func (s *Service) RecordPayment(ctx context.Context, userID, id string, amount *float64, notes string) (*domain.PaymentHistory, *domain.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, nil, translateStoreErr(err)
	}

	now := s.now()
	if status := billing.EffectiveStatus(sub, now); status == domain.StatusCancelled {
		return nil, nil, fmt.Errorf("%w: cannot record a payment on a cancelled subscription", domain.ErrInvalidTransition)
	}

	paid := sub.Price
	if amount != nil {
		if *amount < 0 {
			return nil, nil, fmt.Errorf("%w: amount must not be negative", domain.ErrValidation)
		}
		paid = *amount
	}

	payment := &domain.PaymentHistory{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		UserID:         userID,
		Amount:         paid,
		PaymentDate:    now,
		Status:         domain.PaymentStatusPaid,
		Notes:          notes,
	}
	params := store.RecordPaymentParams{
		NextBillingDate: billing.NextBillingDate(sub.NextBillingDate, sub.BillingCycle),
		LastPaymentDate: now,
		Token:           sub.UpdatedAt,
	}

	created, updated, err := s.repo.RecordPayment(ctx, payment, params)
	if err != nil {
		return nil, nil, translateStoreErr(err)
	}

	s.audit(ctx, updated, domain.AuditActionPaid, map[string]string{
		"amount":            fmt.Sprintf("%.2f", paid),
		"next_billing_date": updated.NextBillingDate.Format(time.DateOnly),
	})
	s.publish(ctx, domain.RoutingKeyPaymentRecorded, domain.PaymentRecordedEvent{
		SubscriptionID:  updated.ID,
		UserID:          userID,
		Amount:          paid,
		Currency:        updated.Currency,
		PaymentDate:     created.PaymentDate,
		NextBillingDate: updated.NextBillingDate,
	})
	return created, updated, nil
}

// Transition applies a lifecycle action (pause, resume, cancel) to a
// subscription. The expiry sweep runs first, so an overdue subscription is
// already cancelled by the time the action is checked.
func (s *Service) Transition(ctx context.Context, userID, id string, action domain.StatusAction) (*domain.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	sub = s.applyExpirySweep(ctx, sub)

	next, err := billing.Transition(sub.Status, action)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateSubscriptionStatus(ctx, userID, id, next, sub.UpdatedAt)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	s.audit(ctx, updated, domain.AuditActionTransition, map[string]string{
		"action": string(action),
		"status": string(next),
	})
	return updated, nil
}

// ListPaymentHistory returns a subscription's payment ledger.
func (s *Service) ListPaymentHistory(ctx context.Context, userID, subscriptionID string) ([]domain.PaymentHistory, error) {
	return s.repo.ListPaymentHistory(ctx, userID, subscriptionID)
}

// ListAuditLog returns a user's audit trail, optionally scoped to one
// subscription.
func (s *Service) ListAuditLog(ctx context.Context, userID, subscriptionID string) ([]domain.AuditLogEntry, error) {
	return s.repo.ListAuditLog(ctx, userID, subscriptionID)
}

// audit records a change, logging instead of failing when the insert fails.
func (s *Service) audit(ctx context.Context, sub *domain.Subscription, action string, changes map[string]string) {
	entry := &domain.AuditLogEntry{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Action:         action,
		Changes:        changes,
	}
	if err := s.repo.InsertAuditLog(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log", "subscription_id", sub.ID, "action", action, "error", err)
	}
}

// publish emits an event, logging instead of failing when the broker is
// unavailable or unconfigured.
func (s *Service) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, domain.EventsExchange, routingKey, body); err != nil {
		s.logger.Error("failed to publish event", "routing_key", routingKey, "error", err)
	}
}

func errValidationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// translateStoreErr maps store sentinels onto the domain error taxonomy.
func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrSubscriptionNotFound),
		errors.Is(err, store.ErrNotificationNotFound),
		errors.Is(err, store.ErrPaymentMethodNotFound):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, err)
	case errors.Is(err, store.ErrConcurrentUpdate):
		return fmt.Errorf("%w: %s", domain.ErrConflict, err)
	}
	return err
}
