package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type ExchangeRateClient struct {
	http    *http.Client
	baseURL string
	base    string
}

type apiResponse struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

// FetchRates returns every rate the provider quotes against the configured base currency.
func (c *ExchangeRateClient) FetchRates(ctx context.Context) (map[string]string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("currency", c.base)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for currency %q: %w", c.base, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request for currency %q: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d for currency %q: %s", resp.StatusCode, c.base, resp.Status)
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response for currency %q: %w", c.base, err)
	}

	if len(body.Data.Rates) == 0 {
		return nil, fmt.Errorf("api returned no rates for currency %q", c.base)
	}

	return body.Data.Rates, nil
}

func NewExchangeRateClient(httpClient *http.Client, baseURL string, base string) *ExchangeRateClient {
	return &ExchangeRateClient{http: httpClient, baseURL: baseURL, base: base}
}
