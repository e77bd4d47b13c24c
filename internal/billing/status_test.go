package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		current domain.Status
		action  domain.StatusAction
		want    domain.Status
		wantErr bool
	}{
		{"pause active", domain.StatusActive, domain.ActionPause, domain.StatusPaused, false},
		{"pause trial", domain.StatusTrial, domain.ActionPause, domain.StatusPaused, false},
		{"resume paused", domain.StatusPaused, domain.ActionResume, domain.StatusActive, false},
		{"cancel active", domain.StatusActive, domain.ActionCancel, domain.StatusCancelled, false},
		{"cancel trial", domain.StatusTrial, domain.ActionCancel, domain.StatusCancelled, false},
		{"cancel paused", domain.StatusPaused, domain.ActionCancel, domain.StatusCancelled, false},
		{"resume cancelled rejected", domain.StatusCancelled, domain.ActionResume, domain.StatusCancelled, true},
		{"pause cancelled rejected", domain.StatusCancelled, domain.ActionPause, domain.StatusCancelled, true},
		{"cancel cancelled rejected", domain.StatusCancelled, domain.ActionCancel, domain.StatusCancelled, true},
		{"resume active rejected", domain.StatusActive, domain.ActionResume, domain.StatusActive, true},
		{"pause inactive rejected", domain.StatusInactive, domain.ActionPause, domain.StatusInactive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.action)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if got != tt.current {
					t.Fatalf("rejected transition must not change status: got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestEffectiveStatusExpiresOverdue(t *testing.T) {
	now := date(2025, time.March, 10)
	yesterday := date(2025, time.March, 9)
	tomorrow := date(2025, time.March, 11)

	tests := []struct {
		name string
		sub  domain.Subscription
		want domain.Status
	}{
		{"active overdue becomes cancelled", domain.Subscription{Status: domain.StatusActive, NextBillingDate: yesterday}, domain.StatusCancelled},
		{"trial overdue becomes cancelled", domain.Subscription{Status: domain.StatusTrial, NextBillingDate: yesterday}, domain.StatusCancelled},
		{"active due today stays active", domain.Subscription{Status: domain.StatusActive, NextBillingDate: now}, domain.StatusActive},
		{"active due tomorrow stays active", domain.Subscription{Status: domain.StatusActive, NextBillingDate: tomorrow}, domain.StatusActive},
		{"paused overdue stays paused", domain.Subscription{Status: domain.StatusPaused, NextBillingDate: yesterday}, domain.StatusPaused},
		{"cancelled stays cancelled", domain.Subscription{Status: domain.StatusCancelled, NextBillingDate: yesterday}, domain.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveStatus(&tt.sub, now); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
