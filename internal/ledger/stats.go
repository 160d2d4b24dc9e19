package ledger

import (
	"fmt"
	"math"

	"wallet-trade-lab/internal/domain"
)

// ComputeTradeStats aggregates realized outcomes over all sells that carry
// PnL. Sells with null PnL (no matched lots, no reference leg) count toward
// the sell total but not toward wins, losses, or the win rate.
func ComputeTradeStats(swaps []*domain.Swap) domain.TradeStats {
	stats := domain.TradeStats{TotalTrades: len(swaps)}

	totalPnL := 0.0
	winSum, lossSum := 0.0, 0.0

	for _, s := range swaps {
		switch s.Direction {
		case domain.SwapDirectionBuy:
			stats.Buys++
		case domain.SwapDirectionSell:
			stats.Sells++
		}

		if s.Direction != domain.SwapDirectionSell || s.RealizedPnLPercent == nil {
			continue
		}
		if *s.RealizedPnLPercent > 0 {
			stats.Wins++
			winSum += *s.RealizedPnLPercent
		} else {
			stats.Losses++
			lossSum += *s.RealizedPnLPercent
		}
		if s.RealizedPnLNative != nil {
			totalPnL += *s.RealizedPnLNative
		}
	}

	stats.TotalPnLNative = round3(totalPnL)
	if stats.Wins > 0 {
		stats.AvgWinPercent = winSum / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLossPercent = lossSum / float64(stats.Losses)
	}

	scored := stats.Wins + stats.Losses
	if scored == 0 {
		stats.WinRate = domain.WinRateNotApplicable
	} else {
		rate := float64(stats.Wins) / float64(scored) * 100
		stats.WinRate = fmt.Sprintf("%d%%", int(math.Round(rate)))
	}

	return stats
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
