/**
 * @description
 * Subscription status machine and the lazy expiry rule. Every reader is
 * expected to derive the display status through EffectiveStatus before
 * trusting the stored value.
 */
package billing

import (
	"fmt"
	"time"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// Transition applies a lifecycle action to a status and returns the new
// status. Moves outside the table below fail with ErrInvalidTransition and
// callers must leave the stored record unchanged.
//
//	active/trial        + pause  -> paused
//	paused              + resume -> active
//	active/trial/paused + cancel -> cancelled
//
// Cancelled is terminal for lifecycle actions; only an explicit edit can
// bring a subscription back from it.
func Transition(current domain.Status, action domain.StatusAction) (domain.Status, error) {
	switch action {
	case domain.ActionPause:
		if current == domain.StatusActive || current == domain.StatusTrial {
			return domain.StatusPaused, nil
		}
	case domain.ActionResume:
		if current == domain.StatusPaused {
			return domain.StatusActive, nil
		}
	case domain.ActionCancel:
		if current == domain.StatusActive || current == domain.StatusTrial || current == domain.StatusPaused {
			return domain.StatusCancelled, nil
		}
	}
	return current, fmt.Errorf("%w: cannot %s a %s subscription", domain.ErrInvalidTransition, action, current)
}

// EffectiveStatus derives the status a subscription should be displayed
// with as of the given time. An active or trial subscription whose next
// billing date has already passed is cancelled; everything else keeps its
// stored status.
func EffectiveStatus(sub *domain.Subscription, asOf time.Time) domain.Status {
	if sub.Status == domain.StatusActive || sub.Status == domain.StatusTrial {
		if IsPast(sub.NextBillingDate, asOf) {
			return domain.StatusCancelled
		}
	}
	return sub.Status
}
