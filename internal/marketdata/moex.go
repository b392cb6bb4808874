package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finnow/internal/models"

	"github.com/rs/zerolog"
)

// MOEXClient fetches share and bond quotes from the MOEX ISS API.
// When proxyURL is set, quotes are fetched through the CORS proxy
// envelope instead of the ISS API directly.
type MOEXClient struct {
	baseURL      string
	proxyURL     string
	stockTickers []string
	bondTickers  []string
	httpClient   *http.Client
	log          zerolog.Logger
}

// MOEXOption configures a MOEXClient.
type MOEXOption func(*MOEXClient)

// WithMOEXBaseURL overrides the ISS API base URL.
func WithMOEXBaseURL(u string) MOEXOption {
	return func(c *MOEXClient) { c.baseURL = u }
}

// WithMOEXProxy routes quote fetches through the CORS proxy at u.
func WithMOEXProxy(u string) MOEXOption {
	return func(c *MOEXClient) { c.proxyURL = strings.TrimSuffix(u, "/") }
}

// NewMOEXClient creates a MOEX ISS client for fixed ticker lists.
func NewMOEXClient(stockTickers, bondTickers []string, timeout time.Duration, log zerolog.Logger, opts ...MOEXOption) *MOEXClient {
	c := &MOEXClient{
		baseURL:      "https://iss.moex.com/iss",
		stockTickers: stockTickers,
		bondTickers:  bondTickers,
		httpClient:   SharedHTTPClient(timeout),
		log:          log.With().Str("client", "moex-iss").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// issTable is one columnar section of an ISS response.
type issTable struct {
	Columns []string          `json:"columns"`
	Data    [][]json.RawMessage `json:"data"`
}

// issResponse is the two-section quote payload. Either section missing
// means the response is structurally invalid.
type issResponse struct {
	Securities *issTable `json:"securities"`
	Marketdata *issTable `json:"marketdata"`
}

// colIndex maps column names to positions. ISS guarantees names, not
// positional order, so every lookup goes through this index.
func colIndex(columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for i, col := range columns {
		idx[col] = i
	}
	return idx
}

func cellFloat(row []json.RawMessage, idx map[string]int, col string) float64 {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return 0
	}
	var v float64
	if err := json.Unmarshal(row[i], &v); err != nil {
		return 0
	}
	return v
}

func cellString(row []json.RawMessage, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	var v string
	if err := json.Unmarshal(row[i], &v); err != nil {
		return ""
	}
	return v
}

func (c *MOEXClient) fetchISS(ctx context.Context, kind, path string, tickers []string) (*issResponse, error) {
	reqURL := fmt.Sprintf("%s%s/securities.json?securities=%s", c.baseURL, path, strings.Join(tickers, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewUpstreamError("moex-iss", kind, err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewUpstreamError("moex-iss", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewUpstreamError("moex-iss", kind, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var payload issResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewUpstreamError("moex-iss", kind, err)
	}
	if payload.Securities == nil || payload.Marketdata == nil {
		return nil, NewUpstreamError("moex-iss", kind,
			fmt.Errorf("%w: securities or marketdata section missing", ErrInvalidResponse))
	}

	return &payload, nil
}

// FetchStocks fetches share quotes for the configured tickers
// (board TQBR), either directly from ISS or through the CORS proxy.
func (c *MOEXClient) FetchStocks(ctx context.Context) ([]models.StockQuote, error) {
	if c.proxyURL != "" {
		var stocks []models.StockQuote
		if err := c.fetchProxy(ctx, "stocks", &stocks); err != nil {
			return nil, err
		}
		return stocks, nil
	}

	payload, err := c.fetchISS(ctx, "stocks", "/engines/stock/markets/shares/boards/TQBR", c.stockTickers)
	if err != nil {
		return nil, err
	}

	secIdx := colIndex(payload.Securities.Columns)
	mktIdx := colIndex(payload.Marketdata.Columns)

	var stocks []models.StockQuote
	for i, secRow := range payload.Securities.Data {
		if i >= len(payload.Marketdata.Data) {
			break
		}
		mktRow := payload.Marketdata.Data[i]

		ticker := cellString(secRow, secIdx, "SECID")
		name := cellString(secRow, secIdx, "SHORTNAME")
		if name == "" {
			name = cellString(secRow, secIdx, "SECNAME")
		}
		price := cellFloat(mktRow, mktIdx, "LAST")
		if price == 0 {
			price = cellFloat(mktRow, mktIdx, "PREVPRICE")
		}

		if ticker == "" || price <= 0 {
			continue
		}
		stocks = append(stocks, models.StockQuote{
			Ticker:    ticker,
			Name:      name,
			Price:     price,
			Change:    cellFloat(mktRow, mktIdx, "CHANGE"),
			ChangePct: cellFloat(mktRow, mktIdx, "LASTTOPREVPRICE"),
			Volume:    cellFloat(mktRow, mktIdx, "VOLTODAY"),
		})
	}

	if len(stocks) == 0 {
		return nil, NewUpstreamError("moex-iss", "stocks", ErrInvalidResponse)
	}

	c.log.Debug().Int("stocks", len(stocks)).Msg("fetched stock quotes")
	return stocks, nil
}

// FetchBonds fetches OFZ bond quotes for the configured tickers
// (board TQOB), either directly from ISS or through the CORS proxy.
func (c *MOEXClient) FetchBonds(ctx context.Context) ([]models.BondQuote, error) {
	if c.proxyURL != "" {
		var bonds []models.BondQuote
		if err := c.fetchProxy(ctx, "bonds", &bonds); err != nil {
			return nil, err
		}
		return bonds, nil
	}

	payload, err := c.fetchISS(ctx, "bonds", "/engines/stock/markets/bonds/boards/TQOB", c.bondTickers)
	if err != nil {
		return nil, err
	}

	secIdx := colIndex(payload.Securities.Columns)
	mktIdx := colIndex(payload.Marketdata.Columns)

	var bonds []models.BondQuote
	for i, secRow := range payload.Securities.Data {
		if i >= len(payload.Marketdata.Data) {
			break
		}
		mktRow := payload.Marketdata.Data[i]

		ticker := cellString(secRow, secIdx, "SECID")
		name := cellString(secRow, secIdx, "SHORTNAME")
		if name == "" {
			name = cellString(secRow, secIdx, "SECNAME")
		}
		price := cellFloat(mktRow, mktIdx, "LAST")
		if price == 0 {
			price = cellFloat(mktRow, mktIdx, "PREVPRICE")
		}
		faceValue := cellFloat(secRow, secIdx, "FACEVALUE")
		if faceValue == 0 {
			faceValue = 1000
		}

		if ticker == "" || price <= 0 {
			continue
		}
		bonds = append(bonds, models.BondQuote{
			Ticker:       ticker,
			Name:         name,
			Price:        price,
			FaceValue:    faceValue,
			Yield:        cellFloat(mktRow, mktIdx, "YIELD"),
			CouponRate:   cellFloat(secRow, secIdx, "COUPONPERCENT"),
			MaturityDate: cellString(secRow, secIdx, "MATDATE"),
		})
	}

	if len(bonds) == 0 {
		return nil, NewUpstreamError("moex-iss", "bonds", ErrInvalidResponse)
	}

	c.log.Debug().Int("bonds", len(bonds)).Msg("fetched bond quotes")
	return bonds, nil
}

// proxyEnvelope is the response shape of the CORS proxy endpoints.
type proxyEnvelope struct {
	Success   bool            `json:"success"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
}

func (c *MOEXClient) fetchProxy(ctx context.Context, kind string, out interface{}) error {
	reqURL := fmt.Sprintf("%s/%s", c.proxyURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewUpstreamError("moex-proxy", kind, err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewUpstreamError("moex-proxy", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewUpstreamError("moex-proxy", kind, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var envelope proxyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return NewUpstreamError("moex-proxy", kind, err)
	}
	if !envelope.Success || envelope.Data == nil {
		return NewUpstreamError("moex-proxy", kind,
			fmt.Errorf("%w: %s", ErrInvalidResponse, envelope.Error))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return NewUpstreamError("moex-proxy", kind, err)
	}
	return nil
}
