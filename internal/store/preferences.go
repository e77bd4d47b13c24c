/**
 * @description
 * User preference queries. The notification_preferences column is jsonb;
 * it round-trips through encoding/json here.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// GetUserPreferences retrieves a user's preferences. A missing row is not
// an error: the documented defaults are returned instead.
func (r *Repository) GetUserPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	var notifJSON []byte
	query := `
        SELECT id, user_id, theme, has_completed_onboarding, notification_preferences, created_at, updated_at
        FROM user_preferences
        WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&prefs.ID, &prefs.UserID, &prefs.Theme, &prefs.HasCompletedOnboarding,
		&notifJSON, &prefs.CreatedAt, &prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := domain.DefaultPreferences(userID)
			return &defaults, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(notifJSON, &prefs.NotificationPreferences); err != nil {
		return nil, fmt.Errorf("failed to decode notification preferences: %w", err)
	}
	return &prefs, nil
}

// UpsertUserPreferences creates or updates a user's preference row.
func (r *Repository) UpsertUserPreferences(ctx context.Context, prefs *domain.UserPreferences) (*domain.UserPreferences, error) {
	notifJSON, err := json.Marshal(prefs.NotificationPreferences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification preferences: %w", err)
	}

	var stored domain.UserPreferences
	var storedNotifJSON []byte
	query := `
        INSERT INTO user_preferences (id, user_id, theme, has_completed_onboarding, notification_preferences)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE SET
            theme = EXCLUDED.theme,
            has_completed_onboarding = EXCLUDED.has_completed_onboarding,
            notification_preferences = EXCLUDED.notification_preferences,
            updated_at = NOW()
        RETURNING id, user_id, theme, has_completed_onboarding, notification_preferences, created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		prefs.ID, prefs.UserID, prefs.Theme, prefs.HasCompletedOnboarding, notifJSON,
	).Scan(
		&stored.ID, &stored.UserID, &stored.Theme, &stored.HasCompletedOnboarding,
		&storedNotifJSON, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(storedNotifJSON, &stored.NotificationPreferences); err != nil {
		return nil, fmt.Errorf("failed to decode notification preferences: %w", err)
	}
	return &stored, nil
}
