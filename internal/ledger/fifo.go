// Package ledger reconstructs realized and unrealized cost basis from a
// wallet's swap history. The FIFO Ledger books exact realized PnL on sells;
// the CostBasisTracker keeps a cheaper average-cost view of what is still
// held, for open-position valuation only.
package ledger

import (
	"math"
	"sort"

	"wallet-trade-lab/internal/domain"
)

// lotDustThreshold is the residual quantity below which a lot counts as
// fully consumed. Float accumulation leaves residues around 1e-12.
const lotDustThreshold = 1e-9

// Lot is a quantity of a token acquired at one unit price, consumed
// oldest-first by later sells. Owned exclusively by one token's queue.
type Lot struct {
	UnitPrice   float64
	Quantity    float64
	TimestampMs int64
}

// Ledger matches sells against buy lots per token, oldest first. Not safe for
// concurrent use; construct one per analysis run.
type Ledger struct {
	lots map[string][]*Lot // token mint -> FIFO queue
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{lots: make(map[string][]*Lot)}
}

// SortSwaps orders swaps ascending by timestamp for ledger processing.
// Swaps with no timestamp sort last, in their original relative order, so an
// undated trade can never steal cost basis from a dated one.
func SortSwaps(swaps []*domain.Swap) {
	sort.SliceStable(swaps, func(i, j int) bool {
		ti, tj := swaps[i].TimestampMs, swaps[j].TimestampMs
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return *ti < *tj
		}
	})
}

// Process runs the full swap sequence through the ledger in timestamp order,
// attaching PriceNative to buys and sells and realized PnL to sells that
// matched at least one lot. The input slice is sorted in place.
func (l *Ledger) Process(swaps []*domain.Swap) {
	SortSwaps(swaps)
	for _, s := range swaps {
		switch s.Direction {
		case domain.SwapDirectionBuy:
			l.processBuy(s)
		case domain.SwapDirectionSell:
			l.processSell(s)
		default:
			// Token-to-token swaps have no reference leg to price against.
		}
	}
}

// processBuy opens a new lot from a buy swap.
func (l *Ledger) processBuy(s *domain.Swap) {
	native, token := s.NativeLeg(), s.TokenLeg()
	if native == nil || token == nil {
		return
	}
	quantity := math.Abs(token.Delta)
	if quantity <= 0 {
		return
	}
	unitPrice := math.Abs(native.Delta) / quantity
	s.PriceNative = &unitPrice

	var ts int64
	if s.TimestampMs != nil {
		ts = *s.TimestampMs
	}
	l.lots[token.Asset] = append(l.lots[token.Asset], &Lot{
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		TimestampMs: ts,
	})
}

// processSell consumes lots oldest-first and books realized PnL over the
// matched quantity. A sell exceeding recorded buys is matched only against
// available lots; the excess has unknown entry and contributes no PnL.
func (l *Ledger) processSell(s *domain.Swap) {
	native, token := s.NativeLeg(), s.TokenLeg()
	if native == nil || token == nil {
		return
	}
	sold := math.Abs(token.Delta)
	if sold <= 0 {
		return
	}
	unitPrice := math.Abs(native.Delta) / sold
	s.PriceNative = &unitPrice

	queue := l.lots[token.Asset]
	remaining := sold
	cost := 0.0
	matched := 0.0

	for remaining > 0 && len(queue) > 0 {
		lot := queue[0]
		take := math.Min(lot.Quantity, remaining)
		cost += take * lot.UnitPrice
		matched += take
		lot.Quantity -= take
		remaining -= take
		if lot.Quantity <= lotDustThreshold {
			queue = queue[1:]
		}
	}
	l.lots[token.Asset] = queue

	if matched <= 0 {
		return
	}

	avgEntry := cost / matched
	pnlPercent := (unitPrice - avgEntry) / avgEntry * 100
	pnlNative := (unitPrice - avgEntry) * matched
	s.RealizedPnLPercent = &pnlPercent
	s.RealizedPnLNative = &pnlNative
}

// OpenLots returns the surviving lots for a token, oldest first. Exposed for
// inspection and tests; the returned slice shares the ledger's lot pointers.
func (l *Ledger) OpenLots(mint string) []*Lot {
	return l.lots[mint]
}
