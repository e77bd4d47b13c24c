/**
 * @description
 * Spend analytics. Prices are converted to IDR with the stored rate table;
 * the hardcoded fallback rates cover a cold database the same way the
 * original client did.
 */
package app

import (
	"context"

	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// defaultRatesToIDR is the fallback conversion table used when no stored
// rate is available for a currency.
var defaultRatesToIDR = map[string]float64{
	"IDR": 1,
	"USD": 15800,
	"EUR": 17200,
	"GBP": 20100,
	"SGD": 11700,
	"MYR": 3500,
	"JPY": 106,
	"CNY": 2200,
	"AUD": 10300,
	"CAD": 11500,
}

// SpendSummary aggregates a user's subscription spend, normalized to IDR.
type SpendSummary struct {
	TotalSpent       float64            `json:"total_spent"`
	MonthlyTotal     float64            `json:"monthly_total"`
	YearlyProjection float64            `json:"yearly_projection"`
	AveragePerSub    float64            `json:"average_per_subscription"`
	ByCategory       map[string]float64 `json:"by_category"`
}

// SpendSummary computes a user's spend analytics: the all-time paid total
// from payment history, the monthly total over active monthly
// subscriptions, its yearly projection, and per-category price totals.
func (s *Service) SpendSummary(ctx context.Context, userID string) (*SpendSummary, error) {
	subs, err := s.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalSpent, err := s.repo.TotalPaid(ctx, userID)
	if err != nil {
		return nil, err
	}

	rates, err := s.repo.ListRatesTo(ctx, domain.DefaultCurrency)
	if err != nil {
		s.logger.Error("failed to load currency rates, using fallback table", "error", err)
		rates = nil
	}

	summary := &SpendSummary{
		TotalSpent: totalSpent,
		ByCategory: make(map[string]float64),
	}
	var activeMonthly int
	for _, sub := range subs {
		price := convertToIDR(sub.Price, sub.Currency, rates)
		summary.ByCategory[sub.Category] += price

		if sub.Status == domain.StatusActive && sub.BillingCycle == domain.CycleMonthly {
			summary.MonthlyTotal += price
			activeMonthly++
		}
	}
	summary.YearlyProjection = summary.MonthlyTotal * 12
	if activeMonthly > 0 {
		summary.AveragePerSub = summary.MonthlyTotal / float64(activeMonthly)
	}
	return summary, nil
}

// convertToIDR converts an amount using stored rates first, then the
// fallback table, then 1:1 for unknown currencies.
func convertToIDR(amount float64, currency string, rates map[string]float64) float64 {
	if currency == "" || currency == domain.DefaultCurrency {
		return amount
	}
	if rate, ok := rates[currency]; ok {
		return amount * rate
	}
	if rate, ok := defaultRatesToIDR[currency]; ok {
		return amount * rate
	}
	return amount
}
