package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/madaldho/sub-scribe-light/internal/domain"
	"github.com/madaldho/sub-scribe-light/internal/store"
)

// fakeRepo is an in-memory stand-in for the store repository, shared by the
// service and job tests. Error fields inject failures per operation.
type fakeRepo struct {
	subs          map[string]*domain.Subscription
	payments      []domain.PaymentHistory
	prefs         map[string]*domain.UserPreferences
	notifications map[string]*domain.Notification // keyed by dedup key
	methods       map[string]*domain.PaymentMethod
	audit         []domain.AuditLogEntry
	rates         map[string]float64 // keyed "FROM->TO"
	totalPaid     float64

	today time.Time // calendar day used for notification dedup

	listActiveErr      error
	prefsErrFor        map[string]error
	createNotifErrFor  map[string]error
	upsertRateErrFor   map[string]error
	recordPaymentErr   error
	updateStatusErr    error
	forceTokenMismatch bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs:              make(map[string]*domain.Subscription),
		prefs:             make(map[string]*domain.UserPreferences),
		notifications:     make(map[string]*domain.Notification),
		methods:           make(map[string]*domain.PaymentMethod),
		rates:             make(map[string]float64),
		prefsErrFor:       make(map[string]error),
		createNotifErrFor: make(map[string]error),
		upsertRateErrFor:  make(map[string]error),
		today:             time.Date(2025, time.February, 22, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) put(sub domain.Subscription) {
	copied := sub
	f.subs[sub.ID] = &copied
}

func (f *fakeRepo) GetSubscription(ctx context.Context, userID, id string) (*domain.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok || sub.UserID != userID {
		return nil, store.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeRepo) ListSubscriptions(ctx context.Context, userID string) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	for _, sub := range f.subs {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeRepo) ListActiveSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	if f.listActiveErr != nil {
		return nil, f.listActiveErr
	}
	var subs []domain.Subscription
	for _, sub := range f.subs {
		if sub.Status == domain.StatusActive {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeRepo) CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	stored := *sub
	stored.CreatedAt = f.today
	stored.UpdatedAt = f.today
	f.subs[sub.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeRepo) UpdateSubscription(ctx context.Context, sub *domain.Subscription, token time.Time) (*domain.Subscription, error) {
	stored, ok := f.subs[sub.ID]
	if !ok || stored.UserID != sub.UserID {
		return nil, store.ErrSubscriptionNotFound
	}
	if f.forceTokenMismatch || !stored.UpdatedAt.Equal(token) {
		return nil, store.ErrConcurrentUpdate
	}
	updated := *sub
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = token.Add(time.Second)
	f.subs[sub.ID] = &updated
	copied := updated
	return &copied, nil
}

func (f *fakeRepo) UpdateSubscriptionStatus(ctx context.Context, userID, id string, status domain.Status, token time.Time) (*domain.Subscription, error) {
	if f.updateStatusErr != nil {
		return nil, f.updateStatusErr
	}
	stored, ok := f.subs[id]
	if !ok || stored.UserID != userID {
		return nil, store.ErrSubscriptionNotFound
	}
	if f.forceTokenMismatch || !stored.UpdatedAt.Equal(token) {
		return nil, store.ErrConcurrentUpdate
	}
	stored.Status = status
	stored.UpdatedAt = token.Add(time.Second)
	copied := *stored
	return &copied, nil
}

func (f *fakeRepo) DeleteSubscription(ctx context.Context, userID, id string) error {
	stored, ok := f.subs[id]
	if !ok || stored.UserID != userID {
		return store.ErrSubscriptionNotFound
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeRepo) RecordPayment(ctx context.Context, payment *domain.PaymentHistory, params store.RecordPaymentParams) (*domain.PaymentHistory, *domain.Subscription, error) {
	if f.recordPaymentErr != nil {
		return nil, nil, f.recordPaymentErr
	}
	stored, ok := f.subs[payment.SubscriptionID]
	if !ok || stored.UserID != payment.UserID {
		return nil, nil, store.ErrSubscriptionNotFound
	}
	if f.forceTokenMismatch || !stored.UpdatedAt.Equal(params.Token) {
		return nil, nil, store.ErrConcurrentUpdate
	}

	created := *payment
	created.CreatedAt = f.today
	f.payments = append(f.payments, created)

	stored.NextBillingDate = params.NextBillingDate
	lastPayment := params.LastPaymentDate
	stored.LastPaymentDate = &lastPayment
	stored.Status = domain.StatusActive
	stored.IsTrial = false
	stored.UpdatedAt = params.Token.Add(time.Second)

	copied := *stored
	return &created, &copied, nil
}

func (f *fakeRepo) ListPaymentHistory(ctx context.Context, userID, subscriptionID string) ([]domain.PaymentHistory, error) {
	var payments []domain.PaymentHistory
	for _, p := range f.payments {
		if p.UserID == userID && p.SubscriptionID == subscriptionID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (f *fakeRepo) TotalPaid(ctx context.Context, userID string) (float64, error) {
	return f.totalPaid, nil
}

func (f *fakeRepo) GetUserPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	if err := f.prefsErrFor[userID]; err != nil {
		return nil, err
	}
	if prefs, ok := f.prefs[userID]; ok {
		copied := *prefs
		return &copied, nil
	}
	defaults := domain.DefaultPreferences(userID)
	return &defaults, nil
}

func (f *fakeRepo) UpsertUserPreferences(ctx context.Context, prefs *domain.UserPreferences) (*domain.UserPreferences, error) {
	copied := *prefs
	f.prefs[prefs.UserID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeRepo) notifKey(subscriptionID, notifType string) string {
	return fmt.Sprintf("%s|%s|%s", subscriptionID, notifType, f.today.Format(time.DateOnly))
}

func (f *fakeRepo) NotificationExistsToday(ctx context.Context, subscriptionID, notifType string) (bool, error) {
	_, ok := f.notifications[f.notifKey(subscriptionID, notifType)]
	return ok, nil
}

func (f *fakeRepo) CreateNotificationIfAbsentToday(ctx context.Context, n *domain.Notification) (bool, error) {
	if err := f.createNotifErrFor[n.SubscriptionID]; err != nil {
		return false, err
	}
	key := f.notifKey(n.SubscriptionID, n.Type)
	if _, ok := f.notifications[key]; ok {
		return false, nil
	}
	copied := *n
	f.notifications[key] = &copied
	return true, nil
}

func (f *fakeRepo) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	var notifications []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			notifications = append(notifications, *n)
		}
	}
	return notifications, nil
}

func (f *fakeRepo) MarkNotificationRead(ctx context.Context, userID, id string) error {
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

func (f *fakeRepo) DeleteNotification(ctx context.Context, userID, id string) error {
	for key, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			delete(f.notifications, key)
			return nil
		}
	}
	return store.ErrNotificationNotFound
}

func (f *fakeRepo) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	var methods []domain.PaymentMethod
	for _, m := range f.methods {
		if m.UserID == userID {
			methods = append(methods, *m)
		}
	}
	return methods, nil
}

func (f *fakeRepo) CreatePaymentMethod(ctx context.Context, m *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	copied := *m
	f.methods[m.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeRepo) DeletePaymentMethod(ctx context.Context, userID, id string) error {
	m, ok := f.methods[id]
	if !ok || m.UserID != userID {
		return store.ErrPaymentMethodNotFound
	}
	delete(f.methods, id)
	return nil
}

func (f *fakeRepo) InsertAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error {
	f.audit = append(f.audit, *entry)
	return nil
}

func (f *fakeRepo) ListAuditLog(ctx context.Context, userID, subscriptionID string) ([]domain.AuditLogEntry, error) {
	var entries []domain.AuditLogEntry
	for _, entry := range f.audit {
		if entry.UserID == userID && (subscriptionID == "" || entry.SubscriptionID == subscriptionID) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (f *fakeRepo) UpsertCurrencyRate(ctx context.Context, from, to string, rate float64) error {
	key := from + "->" + to
	if err := f.upsertRateErrFor[key]; err != nil {
		return err
	}
	f.rates[key] = rate
	return nil
}

func (f *fakeRepo) ListRatesTo(ctx context.Context, to string) (map[string]float64, error) {
	rates := make(map[string]float64)
	for key, rate := range f.rates {
		from, target, ok := strings.Cut(key, "->")
		if ok && target == to {
			rates[from] = rate
		}
	}
	return rates, nil
}

// ratesClientStub returns a fixed base rate table or an error.
type ratesClientStub struct {
	rates map[string]float64
	err   error
}

func (s *ratesClientStub) FetchBaseRates(ctx context.Context) (map[string]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

// publisherStub records published events.
type publisherStub struct {
	published []string
	err       error
}

func (p *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, routingKey)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *fakeRepo, now time.Time) *Service {
	svc := NewService(repo, nil, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func newTestJobs(repo *fakeRepo, rates RatesClient, now time.Time) *Jobs {
	jobs := NewJobs(repo, rates, nil, testLogger())
	jobs.now = func() time.Time { return now }
	return jobs
}
