package marketdata

import (
	"context"
	"sync"
	"time"

	"finnow/internal/models"

	"github.com/rs/zerolog"
)

// Service bundles the per-kind resolvers behind typed accessors. It is the
// only market-data surface the advisor and bot layers see.
type Service struct {
	crypto *Resolver[[]models.CryptoPrice]
	rates  *Resolver[[]models.CurrencyRate]
	stocks *Resolver[[]models.StockQuote]
	bonds  *Resolver[[]models.BondQuote]
	log    zerolog.Logger
}

// ServiceConfig configures the market data service.
type ServiceConfig struct {
	Universe     models.InstrumentUniverse
	HTTPTimeout  time.Duration
	TTL          time.Duration
	MOEXBaseURL  string // optional ISS base URL override
	MOEXProxyURL string // optional: fetch MOEX quotes through the CORS proxy
	Log          zerolog.Logger
}

// NewService wires the fetchers, caches and static defaults for all four
// resource kinds.
func NewService(cfg ServiceConfig) *Service {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	cg := NewCoinGeckoClient(cfg.Universe.CoinGeckoIDs, cfg.HTTPTimeout, cfg.Log)
	er := NewExchangeRateClient(cfg.Universe.Currencies, cfg.HTTPTimeout, cfg.Log)

	var moexOpts []MOEXOption
	if cfg.MOEXBaseURL != "" {
		moexOpts = append(moexOpts, WithMOEXBaseURL(cfg.MOEXBaseURL))
	}
	if cfg.MOEXProxyURL != "" {
		moexOpts = append(moexOpts, WithMOEXProxy(cfg.MOEXProxyURL))
	}
	moex := NewMOEXClient(cfg.Universe.StockTickers, cfg.Universe.BondTickers, cfg.HTTPTimeout, cfg.Log, moexOpts...)

	return &Service{
		crypto: NewResolver("crypto", cfg.TTL, cg.FetchPrices, defaultCryptoPrices(), cfg.Log),
		rates:  NewResolver("currency", cfg.TTL, er.FetchRates, defaultCurrencyRates(), cfg.Log),
		stocks: NewResolver("stocks", cfg.TTL, moex.FetchStocks, defaultStockQuotes(), cfg.Log),
		bonds:  NewResolver("bonds", cfg.TTL, moex.FetchBonds, defaultBondQuotes(), cfg.Log),
		log:    cfg.Log.With().Str("service", "marketdata").Logger(),
	}
}

// Crypto returns current crypto prices, best effort.
func (s *Service) Crypto(ctx context.Context) []models.CryptoPrice {
	return s.crypto.Resolve(ctx)
}

// Rates returns current USD currency rates, best effort.
func (s *Service) Rates(ctx context.Context) []models.CurrencyRate {
	return s.rates.Resolve(ctx)
}

// Stocks returns current MOEX share quotes, best effort.
func (s *Service) Stocks(ctx context.Context) []models.StockQuote {
	return s.stocks.Resolve(ctx)
}

// Bonds returns current OFZ bond quotes, best effort.
func (s *Service) Bonds(ctx context.Context) []models.BondQuote {
	return s.bonds.Resolve(ctx)
}

// RefreshAll refreshes every kind concurrently. Failures are logged and
// swallowed; stale entries stay in place for the fallback chain.
func (s *Service) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup

	refresh := func(kind string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			s.log.Warn().Err(err).Str("kind", kind).Msg("refresh failed")
		}
	}

	wg.Add(4)
	go refresh("crypto", s.crypto.Refresh)
	go refresh("currency", s.rates.Refresh)
	go refresh("stocks", s.stocks.Refresh)
	go refresh("bonds", s.bonds.Refresh)
	wg.Wait()
}
