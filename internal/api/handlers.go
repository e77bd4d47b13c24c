/**
 * @description
 * This file contains the HTTP handler functions for the subscription API.
 * Handlers parse incoming requests, call the service layer, and write JSON
 * responses; domain errors are mapped onto HTTP status codes here.
 */
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/madaldho/sub-scribe-light/internal/app"
	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// Handler holds the application services that handlers interact with.
type Handler struct {
	service *app.Service
	jobs    *app.Jobs
}

// NewHandler creates a new Handler.
func NewHandler(service *app.Service, jobs *app.Jobs) *Handler {
	return &Handler{service: service, jobs: jobs}
}

// subscriptionRequest is the wire shape for create and update calls. Dates
// travel as "2006-01-02" strings; enum strings are validated here at the
// boundary.
type subscriptionRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	BillingCycle    string   `json:"billing_cycle"`
	Category        string   `json:"category"`
	Status          string   `json:"status"`
	StartDate       string   `json:"start_date"`
	NextBillingDate string   `json:"next_billing_date"`
	IsTrial         bool     `json:"is_trial"`
	TrialEndDate    *string  `json:"trial_end_date"`
	AutoRenew       bool     `json:"auto_renew"`
	PaymentMethod   string   `json:"payment_method"`
	LogoURL         string   `json:"logo_url"`
	Notes           string   `json:"notes"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", domain.ErrValidation, s)
	}
	return t, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cycle, err := domain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	nextBillingDate, err := parseDate(req.NextBillingDate)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	trialEndDate, err := parseOptionalDate(req.TrialEndDate)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	sub, err := h.service.CreateSubscription(r.Context(), userID, app.CreateSubscriptionInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Currency:        req.Currency,
		BillingCycle:    cycle,
		Category:        req.Category,
		StartDate:       startDate,
		NextBillingDate: nextBillingDate,
		IsTrial:         req.IsTrial,
		TrialEndDate:    trialEndDate,
		AutoRenew:       req.AutoRenew,
		PaymentMethod:   req.PaymentMethod,
		LogoURL:         req.LogoURL,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	subs, err := h.service.ListSubscriptions(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, subs)
}

func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sub, err := h.service.GetSubscription(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cycle, err := domain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	nextBillingDate, err := parseDate(req.NextBillingDate)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	trialEndDate, err := parseOptionalDate(req.TrialEndDate)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	sub, err := h.service.UpdateSubscription(r.Context(), userID, chi.URLParam(r, "id"), app.UpdateSubscriptionInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Currency:        req.Currency,
		BillingCycle:    cycle,
		Category:        req.Category,
		Status:          status,
		StartDate:       startDate,
		NextBillingDate: nextBillingDate,
		IsTrial:         req.IsTrial,
		TrialEndDate:    trialEndDate,
		AutoRenew:       req.AutoRenew,
		PaymentMethod:   req.PaymentMethod,
		LogoURL:         req.LogoURL,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteSubscription(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Amount *float64 `json:"amount"`
		Notes  string   `json:"notes"`
	}
	// An empty body means "pay the configured price".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, sub, err := h.service.RecordPayment(r.Context(), userID, chi.URLParam(r, "id"), req.Amount, req.Notes)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"payment":      payment,
		"subscription": sub,
	})
}

func (h *Handler) transitionHandler(action domain.StatusAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		sub, err := h.service.Transition(r.Context(), userID, chi.URLParam(r, "id"), action)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, sub)
	}
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	payments, err := h.service.ListPaymentHistory(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payments)
}

func (h *Handler) handleListAuditLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.service.ListAuditLog(r.Context(), userID, r.URL.Query().Get("subscription_id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), userID, req)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

func (h *Handler) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	methods, err := h.service.ListPaymentMethods(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, methods)
}

func (h *Handler) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	method, err := h.service.CreatePaymentMethod(r.Context(), userID, req)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, method)
}

func (h *Handler) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeletePaymentMethod(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, notifications)
}

func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.MarkNotificationRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteNotification(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSpendSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summary, err := h.service.SpendSummary(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// handleCheckUpcoming triggers the renewal sweep. The response shape
// matches what existing callers of the scheduled function expect.
func (h *Handler) handleCheckUpcoming(w http.ResponseWriter, r *http.Request) {
	summary, err := h.jobs.CheckUpcomingRenewals(r.Context())
	if err != nil {
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// handleRefreshRates triggers the currency rate refresh.
func (h *Handler) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	summary, err := h.jobs.RefreshCurrencyRates(r.Context())
	if err != nil {
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithDomainError maps domain errors onto HTTP status codes.
func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
