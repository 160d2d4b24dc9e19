// Package positions values a wallet's still-open token holdings at current
// market prices and classifies each one by momentum and holding duration.
package positions

import (
	"context"
	"math"
	"sort"
	"time"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/ledger"
	"wallet-trade-lab/internal/txparse"
)

// MinPositionValueUSD is the dust floor: holdings worth less are not positions.
const MinPositionValueUSD = 1.0

// MaxPositions caps the returned position list.
const MaxPositions = 20

// Categorization thresholds. Boundaries are inclusive: a token up exactly
// 50% held exactly 7 days is diamond hands.
const (
	diamondHandsChangePercent = 50.0
	diamondHandsMinDays       = 7
	bagholdingChangePercent   = -30.0
	bagholdingMinDays         = 3
)

// MetadataSource yields display metadata for a mint. Lookups are best effort;
// implementations fall back to a shortened address.
type MetadataSource interface {
	GetTokenMetadata(ctx context.Context, mint string) domain.TokenMetadata
}

// Valuator combines balances, prices, and cost-basis state into classified
// open positions. Stateless; the clock is injected for deterministic tests.
type Valuator struct {
	metadata MetadataSource
	clock    func() time.Time
}

// ValuatorOption configures Valuator.
type ValuatorOption func(*Valuator)

// WithClock injects a clock for deterministic holding-day math.
func WithClock(clock func() time.Time) ValuatorOption {
	return func(v *Valuator) {
		v.clock = clock
	}
}

// NewValuator creates a valuator over a metadata source.
func NewValuator(metadata MetadataSource, opts ...ValuatorOption) *Valuator {
	v := &Valuator{
		metadata: metadata,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Value builds the open-position list and portfolio summary. Native and
// stable balances are skipped, as are tokens without a price quote and
// holdings under the dust floor. Positions are sorted by USD value
// descending and capped; the summary counts everything that survived the
// filters, capped list or not.
func (v *Valuator) Value(
	ctx context.Context,
	balances []domain.TokenBalance,
	prices map[string]domain.TokenPrice,
	costBasis *ledger.CostBasisTracker,
) ([]domain.Position, domain.PortfolioSummary) {
	nowMs := v.clock().UnixMilli()

	var positions []domain.Position
	for _, bal := range balances {
		if bal.Mint == domain.NativeAssetID || bal.Mint == domain.WSOLMint || txparse.IsStableMint(bal.Mint) {
			continue
		}
		price, ok := prices[bal.Mint]
		if !ok {
			continue
		}
		valueUSD := bal.Balance * price.PriceUSD
		if valueUSD < MinPositionValueUSD {
			continue
		}

		meta := v.metadata.GetTokenMetadata(ctx, bal.Mint)
		pos := domain.Position{
			Mint:                  bal.Mint,
			Symbol:                meta.Symbol,
			Name:                  meta.Name,
			Balance:               bal.Balance,
			CurrentPriceUSD:       price.PriceUSD,
			CurrentValueUSD:       valueUSD,
			PriceChange24hPercent: price.PriceChange24h,
			Category:              domain.CategoryUnknownEntry,
		}

		if entry := costBasis.Entry(bal.Mint); entry != nil && entry.TotalQuantity > 0 {
			cost := entry.TotalCostNative
			avg := entry.AvgEntryPrice()
			pos.CostBasisNative = &cost
			pos.AvgEntryPriceNative = &avg
			if entry.FirstBuyTimeMs > 0 {
				days := int((nowMs - entry.FirstBuyTimeMs) / int64(24*time.Hour/time.Millisecond))
				pos.HoldingDays = &days
				pos.Category = categorize(price.PriceChange24h, days)
			} else {
				pos.Category = domain.CategoryHolding
			}
		}

		positions = append(positions, pos)
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].CurrentValueUSD > positions[j].CurrentValueUSD
	})

	summary := summarize(positions)
	if len(positions) > MaxPositions {
		positions = positions[:MaxPositions]
	}
	return positions, summary
}

func categorize(change24h float64, holdingDays int) string {
	switch {
	case change24h >= diamondHandsChangePercent && holdingDays >= diamondHandsMinDays:
		return domain.CategoryDiamondHands
	case change24h < bagholdingChangePercent && holdingDays >= bagholdingMinDays:
		return domain.CategoryBagholding
	case holdingDays < 1:
		return domain.CategoryRecent
	default:
		return domain.CategoryHolding
	}
}

func summarize(positions []domain.Position) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{TotalPositions: len(positions)}
	for _, pos := range positions {
		summary.TotalValueUSD += pos.CurrentValueUSD
		switch pos.Category {
		case domain.CategoryDiamondHands:
			summary.DiamondHandCount++
		case domain.CategoryBagholding:
			summary.BagholdingCount++
		}
	}
	summary.TotalValueUSD = math.Round(summary.TotalValueUSD*100) / 100
	return summary
}

// Snapshots converts valued positions into snapshot rows for the history
// store.
func Snapshots(wallet string, atMs int64, positions []domain.Position) []domain.PositionSnapshot {
	rows := make([]domain.PositionSnapshot, 0, len(positions))
	for _, pos := range positions {
		rows = append(rows, domain.PositionSnapshot{
			Wallet:          wallet,
			TimestampMs:     atMs,
			Mint:            pos.Mint,
			Symbol:          pos.Symbol,
			Balance:         pos.Balance,
			CurrentValueUSD: pos.CurrentValueUSD,
			Category:        pos.Category,
		})
	}
	return rows
}
