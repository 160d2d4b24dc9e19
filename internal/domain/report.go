package domain

// WinRateNotApplicable is the win-rate sentinel when no sell carries PnL.
const WinRateNotApplicable = "N/A"

// TradeStats aggregates realized outcomes over all PnL-bearing sells.
type TradeStats struct {
	TotalTrades    int     `json:"total_trades"`
	Buys           int     `json:"buys"`
	Sells          int     `json:"sells"`
	Wins           int     `json:"wins"`             // sells with RealizedPnLPercent > 0
	Losses         int     `json:"losses"`           // sells with RealizedPnLPercent <= 0
	TotalPnLNative float64 `json:"total_pnl_native"` // sum of realized native PnL, rounded to 3 decimals
	AvgWinPercent  float64 `json:"avg_win_percent"`  // mean over winning sells, 0 when none
	AvgLossPercent float64 `json:"avg_loss_percent"` // mean over losing sells, 0 when none
	WinRate        string  `json:"win_rate"`         // rounded percentage, or WinRateNotApplicable
}

// WalletReport is the full output of one wallet analysis run.
type WalletReport struct {
	Wallet        string           `json:"wallet"`
	GeneratedAtMs int64            `json:"generated_at_ms"`
	Stats         TradeStats       `json:"stats"`
	Trades        []*Swap          `json:"trades"`
	OpenPositions []*Position      `json:"open_positions"`
	Summary       PortfolioSummary `json:"summary"`
}
