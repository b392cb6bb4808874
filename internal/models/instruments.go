package models

import (
	"encoding/json"
	"os"
)

// InstrumentUniverse holds the fixed identifier lists queried from each
// upstream. Kept small on purpose: these are the instruments the app
// surfaces, not a user-extensible watchlist.
type InstrumentUniverse struct {
	CoinGeckoIDs []string `json:"coingecko"`
	Currencies   []string `json:"currencies"`
	StockTickers []string `json:"stocks"`
	BondTickers  []string `json:"bonds"`
}

// DefaultUniverse is the compiled-in instrument set.
var DefaultUniverse = InstrumentUniverse{
	CoinGeckoIDs: []string{"bitcoin", "ethereum", "tether", "binancecoin"},
	Currencies:   []string{"EUR", "RUB", "CNY", "JPY"},
	StockTickers: []string{"SBER", "GAZP", "YDEX", "LKOH", "GMKN"},
	BondTickers:  []string{"SU26238RMFS4", "SU26240RMFS9", "SU26241RMFS7"},
}

// LoadUniverseFromJSON loads an instrument universe from a JSON file,
// falling back to the defaults when the file is absent or empty.
func LoadUniverseFromJSON(filePath string) (InstrumentUniverse, error) {
	u := DefaultUniverse

	if filePath == "" {
		return u, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return u, nil
		}
		return u, err
	}

	var custom InstrumentUniverse
	if err := json.Unmarshal(data, &custom); err != nil {
		return u, err
	}

	if len(custom.CoinGeckoIDs) > 0 {
		u.CoinGeckoIDs = custom.CoinGeckoIDs
	}
	if len(custom.Currencies) > 0 {
		u.Currencies = custom.Currencies
	}
	if len(custom.StockTickers) > 0 {
		u.StockTickers = custom.StockTickers
	}
	if len(custom.BondTickers) > 0 {
		u.BondTickers = custom.BondTickers
	}

	return u, nil
}
