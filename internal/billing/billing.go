/**
 * @description
 * Pure billing date arithmetic. Nothing in this package performs I/O or
 * reads the clock implicitly; callers pass "now" in so every function is a
 * deterministic function of its inputs.
 */
package billing

import (
	"fmt"
	"time"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// Result describes one advanced billing date.
type Result struct {
	NextDate  time.Time `json:"next_billing_date"`
	Formatted string    `json:"formatted_date"`
	DaysUntil int       `json:"days_until"`
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// NextBillingDate adds exactly one billing cycle to the anchor date.
// Month and year additions keep the day-of-month where the calendar allows
// and otherwise clamp to the last valid day of the target month, so
// Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year), never Mar 2.
// An unrecognized cycle falls back to monthly; boundary validation is
// expected to have rejected it already.
func NextBillingDate(anchor time.Time, cycle domain.BillingCycle) time.Time {
	switch cycle {
	case domain.CycleDaily:
		return anchor.AddDate(0, 0, 1)
	case domain.CycleWeekly:
		return anchor.AddDate(0, 0, 7)
	case domain.CycleYearly:
		return addMonthsClamped(anchor, 12)
	default:
		return addMonthsClamped(anchor, 1)
	}
}

// addMonthsClamped advances by whole calendar months, clamping the
// day-of-month. time.AddDate normalizes overflow into the following month,
// which is the wrong policy for billing dates.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) - 1 + months
	year += m / 12
	m = m % 12
	if m < 0 {
		m += 12
		year--
	}
	target := time.Month(m + 1)
	if last := daysInMonth(year, target); day > last {
		day = last
	}
	h, min, sec := t.Clock()
	return time.Date(year, target, day, h, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// midnight truncates a time to the start of its day in its own location.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysRemaining returns the whole number of days from now until date, both
// normalized to midnight so the time-of-day component cannot introduce
// off-by-one errors. The result is negative for past dates.
func DaysRemaining(date, now time.Time) int {
	diff := midnight(date).Sub(midnight(now))
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// IsPast reports whether date falls strictly before today.
func IsPast(date, now time.Time) bool {
	return DaysRemaining(date, now) < 0
}

// AdvanceAt computes the next billing date for a cycle together with a
// display string and a non-negative days-until counter relative to now.
func AdvanceAt(anchor time.Time, cycle domain.BillingCycle, now time.Time) Result {
	next := NextBillingDate(anchor, cycle)
	daysUntil := DaysRemaining(next, now)
	if daysUntil < 0 {
		daysUntil = 0
	}
	return Result{
		NextDate:  next,
		Formatted: FormatDate(next),
		DaysUntil: daysUntil,
	}
}

// Advance is AdvanceAt relative to the current clock.
func Advance(anchor time.Time, cycle domain.BillingCycle) Result {
	return AdvanceAt(anchor, cycle, time.Now())
}

// FormatDate renders a date the way the UI shows it, e.g. "2 Januari 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// FormatCycle renders a billing cycle for display.
func FormatCycle(cycle domain.BillingCycle) string {
	switch cycle {
	case domain.CycleDaily:
		return "Harian"
	case domain.CycleWeekly:
		return "Mingguan"
	case domain.CycleMonthly:
		return "Bulanan"
	case domain.CycleYearly:
		return "Tahunan"
	}
	return string(cycle)
}
