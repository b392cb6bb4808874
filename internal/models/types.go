package models

// CryptoPrice is one row of the CoinGecko markets response.
type CryptoPrice struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Price        float64 `json:"current_price"`
	Change24h    float64 `json:"price_change_24h"`
	ChangePct24h float64 `json:"price_change_percentage_24h"`
}

// CurrencyRate is the USD rate for one currency.
type CurrencyRate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}

// StockQuote is one MOEX share quote (board TQBR).
type StockQuote struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"changePercent"`
	Volume    float64 `json:"volume"`
}

// BondQuote is one MOEX OFZ bond quote (board TQOB).
// Price is quoted as a percentage of face value.
type BondQuote struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	FaceValue    float64 `json:"faceValue"`
	Yield        float64 `json:"yield"`
	CouponRate   float64 `json:"couponRate"`
	MaturityDate string  `json:"maturityDate,omitempty"`
}

// Message is one turn of the chat history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RiskLevel selects one of the three investment plan profiles.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether the risk level is one of the known profiles.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Instrument is one position of a generated investment plan.
type Instrument struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Allocation    int       `json:"allocation"` // percent; instruments of a plan sum to 100
	Amount        int64     `json:"amount"`     // rubles, floor(total * Allocation / 100)
	ExpectedYield float64   `json:"expectedYield"`
	Description   string    `json:"description"`
	RiskLevel     RiskLevel `json:"riskLevel"`
}

// InvestmentPlan is an AI-generated (or fallback) portfolio allocation.
type InvestmentPlan struct {
	Instruments   []Instrument `json:"instruments"`
	ExpectedYield float64      `json:"expectedYield"`
	Timeframe     string       `json:"timeframe"`
	Reasoning     string       `json:"aiReasoning"`
}
