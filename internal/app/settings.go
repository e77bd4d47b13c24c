/**
 * @description
 * Preference, payment method and notification operations. Preferences are
 * created lazily: the first read persists the defaults so later edits have
 * a row to update.
 */
package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// GetPreferences returns a user's preferences, persisting the defaults on
// first access. If persisting fails the defaults are still returned; a
// missing preference row must never block the caller.
func (s *Service) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	prefs, err := s.repo.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs.ID != "" {
		return prefs, nil
	}

	prefs.ID = uuid.NewString()
	stored, err := s.repo.UpsertUserPreferences(ctx, prefs)
	if err != nil {
		s.logger.Error("failed to create default preferences", "user_id", userID, "error", err)
		return prefs, nil
	}
	return stored, nil
}

// UpdatePreferences overwrites a user's preference row.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, prefs domain.UserPreferences) (*domain.UserPreferences, error) {
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs.ID = current.ID
	prefs.UserID = userID
	if prefs.ID == "" {
		prefs.ID = uuid.NewString()
	}
	return s.repo.UpsertUserPreferences(ctx, &prefs)
}

// ListPaymentMethods returns a user's payment methods.
func (s *Service) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, userID)
}

// CreatePaymentMethod adds a payment method for a user.
func (s *Service) CreatePaymentMethod(ctx context.Context, userID string, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if m.Name == "" {
		return nil, errValidationf("payment method name is required")
	}
	m.ID = uuid.NewString()
	m.UserID = userID
	m.IsActive = true
	return s.repo.CreatePaymentMethod(ctx, &m)
}

// DeletePaymentMethod removes a payment method.
func (s *Service) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	return translateStoreErr(s.repo.DeletePaymentMethod(ctx, userID, id))
}

// ListNotifications returns a user's notifications.
func (s *Service) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

// MarkNotificationRead flags a notification as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return translateStoreErr(s.repo.MarkNotificationRead(ctx, userID, id))
}

// DeleteNotification removes a notification.
func (s *Service) DeleteNotification(ctx context.Context, userID, id string) error {
	return translateStoreErr(s.repo.DeleteNotification(ctx, userID, id))
}
