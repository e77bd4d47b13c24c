package ratesclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchBaseRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","date":"2025-02-22","rates":{"IDR":15800,"EUR":0.9}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	rates, err := client.FetchBaseRates(context.Background())
	if err != nil {
		t.Fatalf("FetchBaseRates returned error: %v", err)
	}
	if rates["IDR"] != 15800 {
		t.Errorf("expected IDR rate 15800, got %v", rates["IDR"])
	}
	if rates["EUR"] != 0.9 {
		t.Errorf("expected EUR rate 0.9, got %v", rates["EUR"])
	}
}

func TestFetchBaseRatesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.FetchBaseRates(context.Background()); err == nil {
		t.Fatal("expected error on 5xx response")
	}
}

func TestFetchBaseRatesEmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.FetchBaseRates(context.Background()); err == nil {
		t.Fatal("expected error on empty rate table")
	}
}

func TestFetchBaseRatesUnconfigured(t *testing.T) {
	client := NewClient("")
	if _, err := client.FetchBaseRates(context.Background()); err == nil {
		t.Fatal("expected error when no URL is configured")
	}
}
