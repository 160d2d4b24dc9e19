package ath

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"wallet-trade-lab/internal/cache"
	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/market"
)

// fakePairs returns canned pairs per mint and counts upstream fetches.
type fakePairs struct {
	pairs   map[string][]market.Pair
	fetches atomic.Int64
	err     error
}

func (f *fakePairs) GetPairs(_ context.Context, mint string) ([]market.Pair, error) {
	f.fetches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.pairs[mint], nil
}

func f64(v float64) *float64 { return &v }

func TestEstimate_BackSolvesFromDeepestDrop(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	source := &fakePairs{pairs: map[string][]market.Pair{
		"MintAAA": {{
			BaseSymbol:   "AAA",
			PriceUSD:     100,
			MarketCap:    f64(1_000_000),
			LiquidityUSD: 50_000,
			ChangeH1:     f64(-5),
			ChangeH6:     f64(-15),
			ChangeH24:    f64(-20),
		}},
	}}

	est := NewEstimator(source, cache.NewMemory(), WithClock(func() time.Time { return now }))
	rec := est.Estimate(context.Background(), "MintAAA")
	if rec == nil {
		t.Fatal("expected a record")
	}

	// -20% is the deepest drop: ath = 100 / 0.8 = 125, placed 12h back.
	if math.Abs(rec.ATHPrice-125) > 1e-9 {
		t.Errorf("expected ATH 125, got %f", rec.ATHPrice)
	}
	wantTime := now.Add(-12 * time.Hour).UnixMilli()
	if rec.ATHTimeMs == nil || *rec.ATHTimeMs != wantTime {
		t.Errorf("expected ATH time %d, got %v", wantTime, rec.ATHTimeMs)
	}
	if rec.ATHMarketCap == nil || math.Abs(*rec.ATHMarketCap-1_250_000) > 1e-6 {
		t.Errorf("expected scaled market cap 1250000, got %v", rec.ATHMarketCap)
	}
	if rec.CurrentPrice != 100 || rec.Symbol != "AAA" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestEstimate_NoQualifyingDropMeansPeakIsNow(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	source := &fakePairs{pairs: map[string][]market.Pair{
		"MintBBB": {{
			BaseSymbol: "BBB",
			PriceUSD:   2,
			ChangeH1:   f64(3),
			ChangeH24:  f64(-8), // above the -10% gate
		}},
	}}

	est := NewEstimator(source, cache.NewMemory(), WithClock(func() time.Time { return now }))
	rec := est.Estimate(context.Background(), "MintBBB")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.ATHPrice != 2 {
		t.Errorf("expected ATH = current price, got %f", rec.ATHPrice)
	}
	if rec.ATHTimeMs == nil || *rec.ATHTimeMs != now.UnixMilli() {
		t.Errorf("expected ATH time now, got %v", rec.ATHTimeMs)
	}
}

func TestEstimate_UsesMostLiquidPair(t *testing.T) {
	source := &fakePairs{pairs: map[string][]market.Pair{
		"MintCCC": {
			{BaseSymbol: "CCC", PriceUSD: 1.0, LiquidityUSD: 100},
			{BaseSymbol: "CCC", PriceUSD: 1.1, LiquidityUSD: 90_000},
		},
	}}

	est := NewEstimator(source, cache.NewMemory())
	rec := est.Estimate(context.Background(), "MintCCC")
	if rec == nil || rec.CurrentPrice != 1.1 {
		t.Fatalf("expected the 90k-liquidity quote, got %+v", rec)
	}
}

func TestEstimate_NilOnFetchFailure(t *testing.T) {
	source := &fakePairs{err: errors.New("aggregator down")}
	est := NewEstimator(source, cache.NewMemory())
	if rec := est.Estimate(context.Background(), "MintAAA"); rec != nil {
		t.Errorf("expected nil on fetch failure, got %+v", rec)
	}
}

func TestEstimate_NilWhenNoPairs(t *testing.T) {
	source := &fakePairs{pairs: map[string][]market.Pair{}}
	est := NewEstimator(source, cache.NewMemory())
	if rec := est.Estimate(context.Background(), "MintAAA"); rec != nil {
		t.Errorf("expected nil for unknown token, got %+v", rec)
	}
}

func TestEstimate_CachesWithinTTL(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	clock := func() time.Time { return now }
	source := &fakePairs{pairs: map[string][]market.Pair{
		"MintAAA": {{BaseSymbol: "AAA", PriceUSD: 50, LiquidityUSD: 1000}},
	}}

	est := NewEstimator(source, cache.NewMemoryWithClock(clock), WithClock(clock))

	first := est.Estimate(context.Background(), "MintAAA")
	if first == nil {
		t.Fatal("expected a record")
	}

	now = now.Add(29 * time.Minute)
	second := est.Estimate(context.Background(), "MintAAA")
	if second == nil {
		t.Fatal("expected a cached record")
	}
	if source.fetches.Load() != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", source.fetches.Load())
	}
	if second.FetchedAtMs != first.FetchedAtMs {
		t.Error("cached record must carry the original fetch time")
	}

	// Past the TTL the estimate is recomputed.
	now = now.Add(2 * time.Minute)
	est.Estimate(context.Background(), "MintAAA")
	if source.fetches.Load() != 2 {
		t.Errorf("expected refetch after TTL, got %d fetches", source.fetches.Load())
	}
}

func sellSwap(sig, mint string, tsMs int64, price float64) *domain.Swap {
	ts := tsMs
	p := price
	return &domain.Swap{
		Signature:   sig,
		TimestampMs: &ts,
		Direction:   domain.SwapDirectionSell,
		Changes: []domain.BalanceChange{
			{Asset: domain.NativeAssetID, Delta: 1, Direction: domain.ChangeReceived, Decimals: 9, Kind: domain.LegNative},
			{Asset: mint, Delta: -100, Direction: domain.ChangeSent, Decimals: 6, Kind: domain.LegToken},
		},
		PriceNative: &p,
	}
}

func TestClassifyExit(t *testing.T) {
	athTime := int64(1_700_000_000_000)
	rec := &domain.ATHRecord{Mint: "MintAAA", ATHPrice: 2.0, ATHTimeMs: &athTime, CurrentPrice: 1.0}

	before := sellSwap("sig1", "MintAAA", athTime-1000, 1.5)
	ClassifyExit(before, rec)
	if before.ATHTiming != domain.ATHTimingBefore {
		t.Errorf("expected before_ath, got %s", before.ATHTiming)
	}
	// (1.5 - 2.0) / 2.0 = -25.0%
	if before.ExitVsATHPercent == nil || *before.ExitVsATHPercent != -25.0 {
		t.Errorf("unexpected exit-vs-ATH: %v", before.ExitVsATHPercent)
	}
	if before.ATHPrice == nil || *before.ATHPrice != 2.0 {
		t.Errorf("ATH price not attached: %v", before.ATHPrice)
	}

	after := sellSwap("sig2", "MintAAA", athTime+1000, 1.5)
	ClassifyExit(after, rec)
	if after.ATHTiming != domain.ATHTimingAfter {
		t.Errorf("expected after_ath, got %s", after.ATHTiming)
	}

	noRecord := sellSwap("sig3", "MintAAA", athTime, 1.5)
	ClassifyExit(noRecord, nil)
	if noRecord.ATHTiming != domain.ATHTimingUnknown {
		t.Errorf("expected unknown without a record, got %s", noRecord.ATHTiming)
	}
	if noRecord.ExitVsATHPercent != nil {
		t.Error("no record must not attach a percent")
	}

	noTimestamp := sellSwap("sig4", "MintAAA", 0, 1.5)
	noTimestamp.TimestampMs = nil
	ClassifyExit(noTimestamp, rec)
	if noTimestamp.ATHTiming != domain.ATHTimingUnknown {
		t.Errorf("expected unknown without a timestamp, got %s", noTimestamp.ATHTiming)
	}
}

func TestClassifyExit_RoundsToOneDecimal(t *testing.T) {
	athTime := int64(1_700_000_000_000)
	rec := &domain.ATHRecord{Mint: "MintAAA", ATHPrice: 3.0, ATHTimeMs: &athTime}

	swap := sellSwap("sig1", "MintAAA", athTime+1, 2.0)
	ClassifyExit(swap, rec)
	// (2 - 3) / 3 = -33.333..% rounds to -33.3
	if swap.ExitVsATHPercent == nil || *swap.ExitVsATHPercent != -33.3 {
		t.Errorf("expected -33.3, got %v", swap.ExitVsATHPercent)
	}
}

func TestEnrichSells_FetchesOncePerMint(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	source := &fakePairs{pairs: map[string][]market.Pair{
		"MintAAA": {{BaseSymbol: "AAA", PriceUSD: 100, LiquidityUSD: 1000, ChangeH24: f64(-50)}},
	}}
	est := NewEstimator(source, cache.NewMemoryWithClock(func() time.Time { return now }),
		WithClock(func() time.Time { return now }))

	swaps := []*domain.Swap{
		sellSwap("sig1", "MintAAA", now.UnixMilli()-1000, 150),
		sellSwap("sig2", "MintAAA", now.UnixMilli()+1000, 150),
		sellSwap("sig3", "MintZZZ", now.UnixMilli(), 1), // unknown token
		{Signature: "sig4", Direction: domain.SwapDirectionBuy}, // buys are never enriched
	}

	if err := est.EnrichSells(context.Background(), swaps); err != nil {
		t.Fatalf("EnrichSells: %v", err)
	}

	// Two MintAAA sells share one fetch; MintZZZ adds one more.
	if source.fetches.Load() != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", source.fetches.Load())
	}

	// ath = 100 / 0.5 = 200, 12h back; both sells are after that.
	if swaps[0].ATHPrice == nil || *swaps[0].ATHPrice != 200 {
		t.Errorf("unexpected ATH on sig1: %v", swaps[0].ATHPrice)
	}
	if swaps[0].ATHTiming != domain.ATHTimingAfter || swaps[1].ATHTiming != domain.ATHTimingAfter {
		t.Errorf("expected after_ath on both sells, got %s / %s", swaps[0].ATHTiming, swaps[1].ATHTiming)
	}
	if swaps[2].ATHTiming != domain.ATHTimingUnknown {
		t.Errorf("unknown token must classify unknown, got %s", swaps[2].ATHTiming)
	}
	if swaps[3].ATHTiming != "" || swaps[3].ATHPrice != nil {
		t.Error("buy swaps must stay untouched")
	}
}
