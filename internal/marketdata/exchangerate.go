package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finnow/internal/models"

	"github.com/rs/zerolog"
)

// ExchangeRateClient fetches USD rates for a fixed currency list from
// exchangerate-api.com.
type ExchangeRateClient struct {
	baseURL    string
	currencies []string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewExchangeRateClient creates an exchangerate-api.com client.
func NewExchangeRateClient(currencies []string, timeout time.Duration, log zerolog.Logger) *ExchangeRateClient {
	return &ExchangeRateClient{
		baseURL:    "https://api.exchangerate-api.com/v4/latest",
		currencies: currencies,
		httpClient: SharedHTTPClient(timeout),
		log:        log.With().Str("client", "exchangerate-api").Logger(),
	}
}

// FetchRates performs one GET for the USD table and picks out the
// configured currencies. A currency missing from the table is an
// upstream error, not a partial success.
func (c *ExchangeRateClient) FetchRates(ctx context.Context) ([]models.CurrencyRate, error) {
	reqURL := fmt.Sprintf("%s/USD", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewUpstreamError("exchangerate-api", "currency", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewUpstreamError("exchangerate-api", "currency", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewUpstreamError("exchangerate-api", "currency", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, NewUpstreamError("exchangerate-api", "currency", err)
	}
	if len(result.Rates) == 0 {
		return nil, NewUpstreamError("exchangerate-api", "currency", ErrInvalidResponse)
	}

	rates := make([]models.CurrencyRate, 0, len(c.currencies))
	for _, currency := range c.currencies {
		rate, ok := result.Rates[currency]
		if !ok {
			return nil, NewUpstreamError("exchangerate-api", "currency",
				fmt.Errorf("%w: rate for %s missing", ErrInvalidResponse, currency))
		}
		rates = append(rates, models.CurrencyRate{Currency: currency, Rate: rate})
	}

	c.log.Debug().Int("currencies", len(rates)).Msg("fetched currency rates")
	return rates, nil
}
