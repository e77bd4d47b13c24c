/**
 * @description
 * Client for the external exchange rate API. The API returns a single base
 * currency table; the refresh job derives cross rates from it.
 */
package ratesclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client fetches exchange rates from the rate API.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a new exchange rate client.
func NewClient(url string) *Client {
	return &Client{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ratesResponse mirrors the API payload.
type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchBaseRates retrieves the base currency rate table.
func (c *Client) FetchBaseRates(ctx context.Context) (map[string]float64, error) {
	if c.url == "" {
		return nil, fmt.Errorf("exchange rate API URL is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rate API returned no rates")
	}

	return payload.Rates, nil
}
