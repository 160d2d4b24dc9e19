package ledger

import (
	"testing"

	"wallet-trade-lab/internal/domain"
)

func TestCostBasisTracker_AccumulatesBuys(t *testing.T) {
	swaps := []*domain.Swap{
		makeSwap("buy1", domain.SwapDirectionBuy, i64(1000), 1.0, 1000),
		makeSwap("buy2", domain.SwapDirectionBuy, i64(2000), 2.0, 1000),
	}

	tracker := NewCostBasisTracker()
	tracker.Process(swaps)

	entry := tracker.Entry(testMint)
	if entry == nil {
		t.Fatal("expected entry")
	}
	if !almostEqual(entry.TotalCostNative, 3.0) || !almostEqual(entry.TotalQuantity, 2000) {
		t.Errorf("unexpected totals: cost=%f qty=%f", entry.TotalCostNative, entry.TotalQuantity)
	}
	if !almostEqual(entry.AvgEntryPrice(), 0.0015) {
		t.Errorf("expected avg entry 0.0015, got %f", entry.AvgEntryPrice())
	}
	if entry.FirstBuyTimeMs != 1000 {
		t.Errorf("expected first buy time 1000, got %d", entry.FirstBuyTimeMs)
	}
}

func TestCostBasisTracker_SellPreservesAverage(t *testing.T) {
	swaps := []*domain.Swap{
		makeSwap("buy1", domain.SwapDirectionBuy, i64(1000), 1.0, 1000),
		makeSwap("buy2", domain.SwapDirectionBuy, i64(2000), 2.0, 1000),
		makeSwap("sell1", domain.SwapDirectionSell, i64(3000), 2.0, 500),
	}

	tracker := NewCostBasisTracker()
	tracker.Process(swaps)

	entry := tracker.Entry(testMint)
	if entry == nil {
		t.Fatal("expected surviving entry")
	}
	// Sold a quarter: cost scales by 0.75, quantity drops by 500, average
	// entry price is unchanged. This is the average-cost property that
	// distinguishes the tracker from the FIFO ledger.
	if !almostEqual(entry.TotalQuantity, 1500) {
		t.Errorf("expected quantity 1500, got %f", entry.TotalQuantity)
	}
	if !almostEqual(entry.TotalCostNative, 2.25) {
		t.Errorf("expected cost 2.25, got %f", entry.TotalCostNative)
	}
	if !almostEqual(entry.AvgEntryPrice(), 0.0015) {
		t.Errorf("average entry price must be preserved, got %f", entry.AvgEntryPrice())
	}
}

func TestCostBasisTracker_FullExitDeletesEntry(t *testing.T) {
	swaps := []*domain.Swap{
		makeSwap("buy1", domain.SwapDirectionBuy, i64(1000), 1.0, 1000),
		makeSwap("sell1", domain.SwapDirectionSell, i64(2000), 3.0, 1000),
	}

	tracker := NewCostBasisTracker()
	tracker.Process(swaps)

	if entry := tracker.Entry(testMint); entry != nil {
		t.Errorf("expected entry deleted after full exit, got %+v", entry)
	}
}

func TestCostBasisTracker_OversellClampsRatio(t *testing.T) {
	swaps := []*domain.Swap{
		makeSwap("buy1", domain.SwapDirectionBuy, i64(1000), 1.0, 1000),
		makeSwap("sell1", domain.SwapDirectionSell, i64(2000), 10.0, 5000),
	}

	tracker := NewCostBasisTracker()
	tracker.Process(swaps)

	if entry := tracker.Entry(testMint); entry != nil {
		t.Errorf("oversell must clear the entry, got %+v", entry)
	}
}

func TestCostBasisTracker_SellWithoutEntryIgnored(t *testing.T) {
	swaps := []*domain.Swap{
		makeSwap("sell1", domain.SwapDirectionSell, i64(1000), 2.0, 1000),
	}

	tracker := NewCostBasisTracker()
	tracker.Process(swaps)

	if len(tracker.Entries()) != 0 {
		t.Errorf("expected no entries, got %d", len(tracker.Entries()))
	}
}
