package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finnow/internal/models"

	"github.com/rs/zerolog"
)

// CoinGeckoClient fetches crypto market quotes for a fixed coin id list.
type CoinGeckoClient struct {
	baseURL    string
	coinIDs    []string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewCoinGeckoClient creates a CoinGecko markets client.
func NewCoinGeckoClient(coinIDs []string, timeout time.Duration, log zerolog.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    "https://api.coingecko.com/api/v3",
		coinIDs:    coinIDs,
		httpClient: SharedHTTPClient(timeout),
		log:        log.With().Str("client", "coingecko").Logger(),
	}
}

type coinGeckoMarketRow struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	Change24h    float64 `json:"price_change_24h"`
	ChangePct24h float64 `json:"price_change_percentage_24h"`
}

// FetchPrices performs one GET against /coins/markets and maps the rows
// into CryptoPrice records. An empty result set is an upstream error.
func (c *CoinGeckoClient) FetchPrices(ctx context.Context) ([]models.CryptoPrice, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("ids", strings.Join(c.coinIDs, ","))
	q.Set("order", "market_cap_desc")
	q.Set("sparkline", "false")

	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewUpstreamError("coingecko", "crypto", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewUpstreamError("coingecko", "crypto", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewUpstreamError("coingecko", "crypto", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewUpstreamError("coingecko", "crypto", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var rows []coinGeckoMarketRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, NewUpstreamError("coingecko", "crypto", err)
	}
	if len(rows) == 0 {
		return nil, NewUpstreamError("coingecko", "crypto", ErrInvalidResponse)
	}

	prices := make([]models.CryptoPrice, 0, len(rows))
	for _, row := range rows {
		prices = append(prices, models.CryptoPrice{
			Symbol:       strings.ToUpper(row.Symbol),
			Name:         row.Name,
			Price:        row.CurrentPrice,
			Change24h:    row.Change24h,
			ChangePct24h: row.ChangePct24h,
		})
	}

	c.log.Debug().Int("coins", len(prices)).Msg("fetched crypto prices")
	return prices, nil
}
