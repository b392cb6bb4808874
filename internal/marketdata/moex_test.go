package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStockTickers = []string{"SBER", "GAZP"}
var testBondTickers = []string{"SU26238RMFS4"}

// issStocksBody uses a deliberately shuffled column order: the client must
// map columns by name, never by position.
const issStocksBody = `{
	"securities": {
		"columns": ["SHORTNAME", "SECID", "SECNAME"],
		"data": [
			["Сбербанк", "SBER", "Сбербанк России ПАО ао"],
			[null, "GAZP", "Газпром ПАО ао"]
		]
	},
	"marketdata": {
		"columns": ["VOLTODAY", "LAST", "CHANGE", "LASTTOPREVPRICE"],
		"data": [
			[1234567890, 300.0, 6.5, 2.21],
			[987654321, null, -2.8, -2.19]
		]
	}
}`

const issBondsBody = `{
	"securities": {
		"columns": ["SECID", "SHORTNAME", "FACEVALUE", "COUPONPERCENT", "MATDATE"],
		"data": [["SU26238RMFS4", "ОФЗ 26238", 1000, 7.5, "2028-07-19"]]
	},
	"marketdata": {
		"columns": ["SECID", "LAST", "YIELD"],
		"data": [["SU26238RMFS4", 59.0, 13.92]]
	}
}`

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestMOEXClient(t *testing.T, handler http.HandlerFunc) *MOEXClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMOEXClient(testStockTickers, testBondTickers, 5*time.Second, zerolog.Nop(), WithMOEXBaseURL(srv.URL))
}

func TestFetchStocksMapsColumnsByName(t *testing.T) {
	client := newTestMOEXClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/engines/stock/markets/shares/boards/TQBR/securities.json")
		assert.Equal(t, "SBER,GAZP", r.URL.Query().Get("securities"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(issStocksBody))
	})

	stocks, err := client.FetchStocks(testContext(t))
	require.NoError(t, err)

	// GAZP has a null LAST, no PREVPRICE column value, so it is dropped.
	require.Len(t, stocks, 1)
	assert.Equal(t, "SBER", stocks[0].Ticker)
	assert.Equal(t, "Сбербанк", stocks[0].Name)
	assert.Equal(t, 300.0, stocks[0].Price)
	assert.Equal(t, 6.5, stocks[0].Change)
	assert.Equal(t, 2.21, stocks[0].ChangePct)
	assert.Equal(t, float64(1234567890), stocks[0].Volume)
}

func TestFetchStocksFallsBackToSecName(t *testing.T) {
	body := `{
		"securities": {"columns": ["SECID", "SHORTNAME", "SECNAME"], "data": [["SBER", null, "Сбербанк России ПАО ао"]]},
		"marketdata": {"columns": ["LAST", "PREVPRICE"], "data": [[null, 295.5]]}
	}`
	client := newTestMOEXClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	stocks, err := client.FetchStocks(testContext(t))
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "Сбербанк России ПАО ао", stocks[0].Name)
	assert.Equal(t, 295.5, stocks[0].Price, "PREVPRICE substitutes a missing LAST")
}

func TestFetchStocksMissingSectionIsUpstreamError(t *testing.T) {
	client := newTestMOEXClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"securities": {"columns": [], "data": []}}`))
	})

	_, err := client.FetchStocks(testContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "moex-iss", upstreamErr.Upstream)
	assert.Equal(t, "stocks", upstreamErr.Kind)
}

func TestFetchStocksHTTPErrorIsUpstreamError(t *testing.T) {
	client := newTestMOEXClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.FetchStocks(testContext(t))
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestFetchBonds(t *testing.T) {
	client := newTestMOEXClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/engines/stock/markets/bonds/boards/TQOB/securities.json")
		_, _ = w.Write([]byte(issBondsBody))
	})

	bonds, err := client.FetchBonds(testContext(t))
	require.NoError(t, err)
	require.Len(t, bonds, 1)

	assert.Equal(t, "SU26238RMFS4", bonds[0].Ticker)
	assert.Equal(t, "ОФЗ 26238", bonds[0].Name)
	assert.Equal(t, 59.0, bonds[0].Price)
	assert.Equal(t, 1000.0, bonds[0].FaceValue)
	assert.Equal(t, 13.92, bonds[0].Yield)
	assert.Equal(t, 7.5, bonds[0].CouponRate)
	assert.Equal(t, "2028-07-19", bonds[0].MaturityDate)
}

func TestFetchBondsDefaultsFaceValue(t *testing.T) {
	body := `{
		"securities": {"columns": ["SECID", "SHORTNAME"], "data": [["SU26238RMFS4", "ОФЗ 26238"]]},
		"marketdata": {"columns": ["LAST", "YIELD"], "data": [[59.0, 13.92]]}
	}`
	client := newTestMOEXClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	bonds, err := client.FetchBonds(testContext(t))
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, 1000.0, bonds[0].FaceValue)
}

func TestFetchStocksThroughProxyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stocks", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "timestamp": "2024-12-04T12:00:00Z", "data": [
			{"ticker": "SBER", "name": "Сбербанк", "price": 300.0, "change": 6.5, "changePercent": 2.21, "volume": 1234567890}
		]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewMOEXClient(testStockTickers, testBondTickers, 5*time.Second, zerolog.Nop(), WithMOEXProxy(srv.URL))

	stocks, err := client.FetchStocks(testContext(t))
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, "SBER", stocks[0].Ticker)
	assert.Equal(t, 300.0, stocks[0].Price)
}

func TestFetchThroughProxyEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "MOEX API error: 503"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewMOEXClient(testStockTickers, testBondTickers, 5*time.Second, zerolog.Nop(), WithMOEXProxy(srv.URL))

	_, err := client.FetchBonds(testContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
