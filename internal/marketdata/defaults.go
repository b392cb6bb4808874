package marketdata

import "finnow/internal/models"

// Static last-known-good datasets, returned only when a kind has no cache
// entry and the live fetch fails. Snapshots taken 2024-12-04; never mutated
// at runtime. Callers receive copies.

func defaultCryptoPrices() []models.CryptoPrice {
	return []models.CryptoPrice{
		{Symbol: "BTC", Name: "Bitcoin", Price: 93676.00, Change24h: 1845.30, ChangePct24h: 2.01},
		{Symbol: "ETH", Name: "Ethereum", Price: 3334.12, Change24h: 42.18, ChangePct24h: 1.28},
		{Symbol: "USDT", Name: "Tether", Price: 1.00, Change24h: 0.0002, ChangePct24h: 0.02},
		{Symbol: "BNB", Name: "BNB", Price: 645.20, Change24h: -8.74, ChangePct24h: -1.34},
	}
}

func defaultCurrencyRates() []models.CurrencyRate {
	return []models.CurrencyRate{
		{Currency: "EUR", Rate: 0.95},
		{Currency: "RUB", Rate: 103.50},
		{Currency: "CNY", Rate: 7.29},
		{Currency: "JPY", Rate: 150.45},
	}
}

func defaultStockQuotes() []models.StockQuote {
	return []models.StockQuote{
		{Ticker: "SBER", Name: "Сбербанк", Price: 300.00, Change: 6.50, ChangePct: 2.21, Volume: 1234567890},
		{Ticker: "GAZP", Name: "Газпром", Price: 125.00, Change: -2.80, ChangePct: -2.19, Volume: 987654321},
		{Ticker: "YDEX", Name: "Яндекс", Price: 4145.00, Change: 85.00, ChangePct: 2.09, Volume: 234567890},
		{Ticker: "LKOH", Name: "ЛУКОЙЛ", Price: 5430.00, Change: -105.00, ChangePct: -1.90, Volume: 456789012},
		{Ticker: "GMKN", Name: "Норникель", Price: 131.00, Change: 1.04, ChangePct: 0.80, Volume: 345678901},
	}
}

func defaultBondQuotes() []models.BondQuote {
	return []models.BondQuote{
		{Ticker: "SU26238RMFS4", Name: "ОФЗ 26238", Price: 59.00, FaceValue: 1000, Yield: 13.92, CouponRate: 7.5, MaturityDate: "2028-07-19"},
		{Ticker: "SU26240RMFS9", Name: "ОФЗ 26240", Price: 61.79, FaceValue: 1000, Yield: 14.48, CouponRate: 6.9, MaturityDate: "2036-07-30"},
		{Ticker: "SU26241RMFS7", Name: "ОФЗ 26241", Price: 80.19, FaceValue: 1000, Yield: 14.54, CouponRate: 6.1, MaturityDate: "2032-11-17"},
	}
}
