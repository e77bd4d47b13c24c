package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

func TestGetPreferencesLazilyPersistsDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, date(2025, time.February, 20))

	prefs, err := svc.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPreferences returned error: %v", err)
	}

	if !prefs.NotificationPreferences.Email {
		t.Error("expected default email notifications on")
	}
	if prefs.NotificationPreferences.Push {
		t.Error("expected default push notifications off")
	}
	if got, want := prefs.NotificationPreferences.DaysBefore, []int{7, 3, 1}; len(got) != len(want) {
		t.Errorf("expected default lead times %v, got %v", want, got)
	}
	if _, ok := repo.prefs["user-1"]; !ok {
		t.Error("expected first read to persist the default row")
	}
}

func TestUpdatePreferencesKeepsIdentity(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, date(2025, time.February, 20))

	first, err := svc.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPreferences returned error: %v", err)
	}

	edited := *first
	edited.NotificationPreferences.DaysBefore = []int{14, 7}
	updated, err := svc.UpdatePreferences(context.Background(), "user-1", edited)
	if err != nil {
		t.Fatalf("UpdatePreferences returned error: %v", err)
	}

	if updated.ID != first.ID {
		t.Errorf("expected the preference row id to survive the update, got %q vs %q", updated.ID, first.ID)
	}
	if len(updated.NotificationPreferences.DaysBefore) != 2 {
		t.Errorf("expected edited lead times, got %v", updated.NotificationPreferences.DaysBefore)
	}
}

func TestCreatePaymentMethodRequiresName(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, date(2025, time.February, 20))

	_, err := svc.CreatePaymentMethod(context.Background(), "user-1", domain.PaymentMethod{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	created, err := svc.CreatePaymentMethod(context.Background(), "user-1", domain.PaymentMethod{Name: "BCA Virtual Account"})
	if err != nil {
		t.Fatalf("CreatePaymentMethod returned error: %v", err)
	}
	if created.ID == "" || !created.IsActive {
		t.Errorf("expected an active payment method with an id, got %+v", created)
	}
}

func TestDeleteNotificationNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, date(2025, time.February, 20))

	err := svc.DeleteNotification(context.Background(), "user-1", "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestSpendSummary(t *testing.T) {
	repo := newFakeRepo()
	repo.totalPaid = 500000
	seedSubscription(repo, func(sub *domain.Subscription) {
		sub.ID = "sub-idr"
		sub.Price = 100000
		sub.Category = "hiburan"
		sub.NextBillingDate = date(2025, time.March, 1)
	})
	seedSubscription(repo, func(sub *domain.Subscription) {
		sub.ID = "sub-usd"
		sub.Price = 10
		sub.Currency = "USD"
		sub.Category = "produktivitas"
		sub.NextBillingDate = date(2025, time.March, 1)
	})
	seedSubscription(repo, func(sub *domain.Subscription) {
		sub.ID = "sub-yearly"
		sub.Price = 1200000
		sub.BillingCycle = domain.CycleYearly
		sub.Category = "hiburan"
		sub.NextBillingDate = date(2025, time.June, 1)
	})
	repo.rates["USD->IDR"] = 16000
	svc := newTestService(repo, date(2025, time.February, 20))

	summary, err := svc.SpendSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SpendSummary returned error: %v", err)
	}

	if summary.TotalSpent != 500000 {
		t.Errorf("expected total spent 500000, got %v", summary.TotalSpent)
	}
	// Monthly total covers active monthly subscriptions only, with the USD
	// price converted through the stored rate.
	if want := 100000.0 + 10*16000; summary.MonthlyTotal != want {
		t.Errorf("expected monthly total %v, got %v", want, summary.MonthlyTotal)
	}
	if summary.YearlyProjection != summary.MonthlyTotal*12 {
		t.Errorf("expected yearly projection %v, got %v", summary.MonthlyTotal*12, summary.YearlyProjection)
	}
	if want := 100000.0 + 1200000; summary.ByCategory["hiburan"] != want {
		t.Errorf("expected hiburan category total %v, got %v", want, summary.ByCategory["hiburan"])
	}
}

func TestSpendSummaryFallbackRates(t *testing.T) {
	repo := newFakeRepo()
	seedSubscription(repo, func(sub *domain.Subscription) {
		sub.Price = 10
		sub.Currency = "USD"
		sub.NextBillingDate = date(2025, time.March, 1)
	})
	svc := newTestService(repo, date(2025, time.February, 20))

	summary, err := svc.SpendSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("SpendSummary returned error: %v", err)
	}
	if want := 10 * 15800.0; summary.MonthlyTotal != want {
		t.Errorf("expected fallback-converted monthly total %v, got %v", want, summary.MonthlyTotal)
	}
}
