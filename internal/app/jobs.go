/**
 * @description
 * Scheduled job implementations: the renewal reminder sweep and the
 * currency rate refresh. Jobs process items independently; one bad
 * subscription or currency pair never aborts the rest of a run.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/madaldho/sub-scribe-light/internal/billing"
	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// SchedulerRepository defines the database operations needed by the jobs.
type SchedulerRepository interface {
	ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	GetUserPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error)
	NotificationExistsToday(ctx context.Context, subscriptionID, notifType string) (bool, error)
	CreateNotificationIfAbsentToday(ctx context.Context, n *domain.Notification) (bool, error)
	UpsertCurrencyRate(ctx context.Context, from, to string, rate float64) error
}

// RatesClient defines the external exchange rate source.
type RatesClient interface {
	FetchBaseRates(ctx context.Context) (map[string]float64, error)
}

// SweepSummary reports the outcome of one renewal sweep. The JSON shape is
// a compatibility contract with existing callers of the sweep endpoint.
type SweepSummary struct {
	Success              bool `json:"success"`
	SubscriptionsChecked int  `json:"subscriptions_checked"`
	NotificationsCreated int  `json:"notifications_created"`
}

// RatesSummary reports the outcome of one currency refresh.
type RatesSummary struct {
	Success      bool      `json:"success"`
	RatesUpdated int       `json:"rates_updated"`
	LastUpdate   time.Time `json:"last_update"`
}

// rateCurrencies is the fixed set of supported currencies whose pairwise
// conversion matrix the refresh job maintains.
var rateCurrencies = []string{"IDR", "USD", "EUR", "GBP", "JPY", "AUD", "SGD", "MYR"}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo   SchedulerRepository
	rates  RatesClient
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewJobs creates a new Jobs runner. The events publisher may be nil.
func NewJobs(repo SchedulerRepository, rates RatesClient, events EventPublisher, logger *slog.Logger) *Jobs {
	return &Jobs{
		repo:   repo,
		rates:  rates,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// CheckUpcomingRenewals scans all active subscriptions and creates at most
// one due-date reminder per subscription per calendar day, honoring each
// user's configured lead times.
func (j *Jobs) CheckUpcomingRenewals(ctx context.Context) (SweepSummary, error) {
	subs, err := j.repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("failed to list active subscriptions: %w", err)
	}

	summary := SweepSummary{Success: true, SubscriptionsChecked: len(subs)}
	now := j.now()

	for _, sub := range subs {
		prefs := j.preferencesFor(ctx, sub.UserID)

		daysUntil := billing.DaysRemaining(sub.NextBillingDate, now)
		if !containsDay(prefs.NotificationPreferences.DaysBefore, daysUntil) {
			continue
		}

		exists, err := j.repo.NotificationExistsToday(ctx, sub.ID, domain.NotificationTypeUpcomingPayment)
		if err != nil {
			j.logger.Error("failed to check existing notification", "subscription_id", sub.ID, "error", err)
			// Fall through: the insert below is conflict-safe.
		}
		if exists {
			continue
		}

		notification := &domain.Notification{
			ID:             uuid.NewString(),
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			Type:           domain.NotificationTypeUpcomingPayment,
			Title:          "Pembayaran Akan Datang",
			Message: fmt.Sprintf("Langganan %q akan jatuh tempo dalam %d hari. Jumlah: %s %s",
				sub.Name, daysUntil, sub.Currency, strconv.FormatFloat(sub.Price, 'f', -1, 64)),
			ScheduledFor: sub.NextBillingDate,
		}
		created, err := j.repo.CreateNotificationIfAbsentToday(ctx, notification)
		if err != nil {
			j.logger.Error("failed to create notification", "subscription_id", sub.ID, "error", err)
			continue
		}
		if !created {
			continue
		}

		summary.NotificationsCreated++
		j.publishNotificationCreated(ctx, notification, daysUntil)
	}

	return summary, nil
}

// preferencesFor loads a user's notification preferences, substituting the
// defaults when the lookup fails so one broken user does not stall the
// sweep.
func (j *Jobs) preferencesFor(ctx context.Context, userID string) *domain.UserPreferences {
	prefs, err := j.repo.GetUserPreferences(ctx, userID)
	if err != nil {
		j.logger.Error("failed to load preferences, using defaults", "user_id", userID, "error", err)
		defaults := domain.DefaultPreferences(userID)
		return &defaults
	}
	return prefs
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func (j *Jobs) publishNotificationCreated(ctx context.Context, n *domain.Notification, daysUntil int) {
	if j.events == nil {
		return
	}
	event := domain.NotificationCreatedEvent{
		NotificationID: n.ID,
		SubscriptionID: n.SubscriptionID,
		UserID:         n.UserID,
		Type:           n.Type,
		DaysUntil:      daysUntil,
		ScheduledFor:   n.ScheduledFor,
	}
	if err := j.events.Publish(ctx, domain.EventsExchange, domain.RoutingKeyNotificationCreated, event); err != nil {
		j.logger.Error("failed to publish notification event", "notification_id", n.ID, "error", err)
	}
}

// RefreshCurrencyRates fetches the base rate table and fills the pairwise
// conversion matrix for the supported currencies. A failed fetch aborts the
// whole run; a failed pair upsert is logged and skipped.
func (j *Jobs) RefreshCurrencyRates(ctx context.Context) (RatesSummary, error) {
	base, err := j.rates.FetchBaseRates(ctx)
	if err != nil {
		return RatesSummary{}, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	summary := RatesSummary{Success: true, LastUpdate: j.now()}
	for _, to := range rateCurrencies {
		if _, ok := base[to]; !ok {
			continue
		}
		for _, from := range rateCurrencies {
			if from == to {
				continue
			}
			fromRate, ok := base[from]
			if !ok || fromRate == 0 {
				continue
			}

			rate := base[to] / fromRate
			if err := j.repo.UpsertCurrencyRate(ctx, from, to, rate); err != nil {
				j.logger.Error("failed to upsert currency rate", "from", from, "to", to, "error", err)
				continue
			}
			summary.RatesUpdated++
		}
	}

	j.logger.Info("currency rates refreshed", "rates_updated", summary.RatesUpdated)
	return summary, nil
}

// ProcessRenewalReminders is the cron entry point for the renewal sweep.
func (j *Jobs) ProcessRenewalReminders() {
	j.logger.Info("starting renewal reminder sweep")
	summary, err := j.CheckUpcomingRenewals(context.Background())
	if err != nil {
		j.logger.Error("renewal reminder sweep failed", "error", err)
		return
	}
	j.logger.Info("renewal reminder sweep finished",
		"subscriptions_checked", summary.SubscriptionsChecked,
		"notifications_created", summary.NotificationsCreated)
}

// ProcessCurrencyRates is the cron entry point for the currency refresh.
func (j *Jobs) ProcessCurrencyRates() {
	j.logger.Info("starting currency rate refresh")
	summary, err := j.RefreshCurrencyRates(context.Background())
	if err != nil {
		j.logger.Error("currency rate refresh failed", "error", err)
		return
	}
	j.logger.Info("currency rate refresh finished", "rates_updated", summary.RatesUpdated)
}
