package domain

// Position categories, assigned once per analysis run.
const (
	CategoryDiamondHands = "diamond_hands"
	CategoryBagholding   = "bagholding"
	CategoryRecent       = "recent"
	CategoryHolding      = "holding"
	CategoryUnknownEntry = "unknown_entry"
)

// Position is a still-open holding valued at current market price. Entry
// fields are nil when the position predates the observed transaction window.
type Position struct {
	Mint                  string   `json:"mint"`
	Symbol                string   `json:"symbol"`
	Name                  string   `json:"name"`
	Balance               float64  `json:"balance"`
	CurrentPriceUSD       float64  `json:"current_price_usd"`
	CurrentValueUSD       float64  `json:"current_value_usd"`
	PriceChange24hPercent float64  `json:"price_change_24h_percent"`
	CostBasisNative       *float64 `json:"cost_basis_native,omitempty"`
	AvgEntryPriceNative   *float64 `json:"avg_entry_price_native,omitempty"`
	HoldingDays           *int     `json:"holding_days,omitempty"`
	Category              string   `json:"category"`
}

// PortfolioSummary aggregates one analysis run's open positions.
type PortfolioSummary struct {
	TotalPositions   int     `json:"total_positions"`
	TotalValueUSD    float64 `json:"total_value_usd"` // rounded to cents
	DiamondHandCount int     `json:"diamond_hand_count"`
	BagholdingCount  int     `json:"bagholding_count"`
}

// PositionSnapshot is one position row of a recorded portfolio snapshot,
// written to the snapshot history store after an analysis run.
type PositionSnapshot struct {
	Wallet          string
	TimestampMs     int64
	Mint            string
	Symbol          string
	Balance         float64
	CurrentValueUSD float64
	Category        string
}
