/**
 * @description
 * Per-user preference model. Preferences are created lazily on first access
 * with the defaults below, so a missing row is never an error.
 */
package domain

import "time"

// NotificationPreferences controls how and when renewal reminders fire.
type NotificationPreferences struct {
	Email      bool  `json:"email"`
	Push       bool  `json:"push"`
	DaysBefore []int `json:"days_before"`
}

// UserPreferences holds one user's settings.
type UserPreferences struct {
	ID                      string                  `json:"id"`
	UserID                  string                  `json:"user_id"`
	Theme                   string                  `json:"theme"`
	HasCompletedOnboarding  bool                    `json:"has_completed_onboarding"`
	NotificationPreferences NotificationPreferences `json:"notification_preferences"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
}

// DefaultPreferences returns the preferences used when a user has no stored
// row: light theme, onboarding pending, email reminders 7, 3 and 1 days out.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID: userID,
		Theme:  "light",
		NotificationPreferences: NotificationPreferences{
			Email:      true,
			Push:       false,
			DaysBefore: []int{7, 3, 1},
		},
	}
}
