package ledger

import (
	"math"

	"wallet-trade-lab/internal/domain"
)

// entryDustThreshold removes cost-basis entries whose remaining quantity is
// effectively zero after a full exit.
const entryDustThreshold = 1e-9

// CostBasisEntry is the surviving average-cost position for one token.
type CostBasisEntry struct {
	Mint             string
	TotalCostNative  float64
	TotalQuantity    float64
	FirstBuyTimeMs   int64
}

// AvgEntryPrice returns the running average entry price in native units.
func (e *CostBasisEntry) AvgEntryPrice() float64 {
	if e.TotalQuantity <= 0 {
		return 0
	}
	return e.TotalCostNative / e.TotalQuantity
}

// CostBasisTracker maintains per-token surviving cost and quantity under an
// average-cost discipline. On a sell, cost and quantity shrink by the same
// ratio, so the average entry price is preserved. This is deliberately not
// FIFO: it only feeds unrealized-position display, never booked PnL, and the
// approximation is much cheaper than carrying lot queues for open holdings.
// Like the Ledger, one tracker per analysis run; not safe for concurrent use.
type CostBasisTracker struct {
	entries map[string]*CostBasisEntry
}

// NewCostBasisTracker creates an empty tracker.
func NewCostBasisTracker() *CostBasisTracker {
	return &CostBasisTracker{entries: make(map[string]*CostBasisEntry)}
}

// Process consumes the same sorted swap sequence as the Ledger. The input is
// expected to be sorted already (Ledger.Process sorts in place); Process
// sorts defensively when used standalone.
func (t *CostBasisTracker) Process(swaps []*domain.Swap) {
	SortSwaps(swaps)
	for _, s := range swaps {
		switch s.Direction {
		case domain.SwapDirectionBuy:
			t.applyBuy(s)
		case domain.SwapDirectionSell:
			t.applySell(s)
		}
	}
}

func (t *CostBasisTracker) applyBuy(s *domain.Swap) {
	native, token := s.NativeLeg(), s.TokenLeg()
	if native == nil || token == nil {
		return
	}
	quantity := math.Abs(token.Delta)
	if quantity <= 0 {
		return
	}

	entry, ok := t.entries[token.Asset]
	if !ok {
		entry = &CostBasisEntry{Mint: token.Asset}
		if s.TimestampMs != nil {
			entry.FirstBuyTimeMs = *s.TimestampMs
		}
		t.entries[token.Asset] = entry
	}
	entry.TotalCostNative += math.Abs(native.Delta)
	entry.TotalQuantity += quantity
}

func (t *CostBasisTracker) applySell(s *domain.Swap) {
	token := s.TokenLeg()
	if token == nil {
		return
	}
	entry, ok := t.entries[token.Asset]
	if !ok || entry.TotalQuantity <= 0 {
		return
	}

	sold := math.Abs(token.Delta)
	ratio := math.Min(sold/entry.TotalQuantity, 1)
	entry.TotalCostNative *= 1 - ratio
	entry.TotalQuantity -= sold
	if entry.TotalQuantity < entryDustThreshold {
		delete(t.entries, token.Asset)
	}
}

// Entries returns the tracker's surviving positions keyed by mint.
func (t *CostBasisTracker) Entries() map[string]*CostBasisEntry {
	return t.entries
}

// Entry returns the surviving position for a mint, or nil.
func (t *CostBasisTracker) Entry(mint string) *CostBasisEntry {
	return t.entries[mint]
}
