package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
)

const (
	exchangeRateBaseURL = "https://api.exchangerate.host"
	latestRatesPath     = "/latest"
)

// ExchangeRateAPIClient fetches latest rates from exchangerate.host
type ExchangeRateAPIClient struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
	logger     logger.Logger
}

// NewExchangeRateAPIClient creates a new rate provider client.
// An empty baseURL selects the public exchangerate.host endpoint.
func NewExchangeRateAPIClient(baseURL, accessKey string, httpClient *http.Client, log logger.Logger) *ExchangeRateAPIClient {
	if baseURL == "" {
		baseURL = exchangeRateBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExchangeRateAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessKey:  accessKey,
		httpClient: httpClient,
		logger:     log,
	}
}

// LatestRatesResponse represents the response structure of the latest rates endpoint
type LatestRatesResponse struct {
	Success *bool              `json:"success,omitempty"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

// FetchRates retrieves the current rates of symbols against base
func (c *ExchangeRateAPIClient) FetchRates(ctx context.Context, base string, symbols []string) (entity.Rates, error) {
	query := url.Values{}
	query.Set("base", base)
	query.Set("symbols", strings.Join(symbols, ","))
	if c.accessKey != "" {
		query.Set("access_key", c.accessKey)
	}
	reqURL := c.baseURL + latestRatesPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	c.logger.Debug("Requesting exchange rates", map[string]interface{}{
		"base":    base,
		"symbols": symbols,
	})

	// Single attempt, the caller degrades on failure
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned error status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ratesResp LatestRatesResponse
	if err := json.Unmarshal(bodyBytes, &ratesResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if ratesResp.Success != nil && !*ratesResp.Success {
		info := "unknown error"
		if ratesResp.Error != nil {
			info = fmt.Sprintf("%d %s", ratesResp.Error.Code, ratesResp.Error.Info)
		}
		return nil, fmt.Errorf("API reported failure: %s", info)
	}

	if len(ratesResp.Rates) == 0 {
		return nil, fmt.Errorf("response contained no rates for base %s", base)
	}

	rates := make(entity.Rates, len(ratesResp.Rates))
	for code, rate := range ratesResp.Rates {
		rates[strings.ToUpper(code)] = rate
	}

	c.logger.Debug("Exchange rates received", map[string]interface{}{
		"base":  base,
		"date":  ratesResp.Date,
		"rates": rates,
	})

	return rates, nil
}
