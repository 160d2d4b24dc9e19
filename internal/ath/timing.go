package ath

import (
	"context"
	"math"
	"sync"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/fetch"
)

// ClassifyExit annotates a sell swap with how its exit price compares to the
// token's estimated peak: the percentage gap (one decimal) and whether the
// exit happened before or after the estimated peak time. Swaps without an
// exit price, or estimates without a peak time, classify as unknown.
func ClassifyExit(swap *domain.Swap, rec *domain.ATHRecord) {
	if rec == nil {
		swap.ATHTiming = domain.ATHTimingUnknown
		return
	}

	swap.ATHPrice = &rec.ATHPrice
	swap.ATHTimeMs = rec.ATHTimeMs
	swap.ATHMarketCap = rec.ATHMarketCap

	if swap.PriceNative != nil && rec.ATHPrice > 0 {
		pct := math.Round((*swap.PriceNative-rec.ATHPrice)/rec.ATHPrice*1000) / 10
		swap.ExitVsATHPercent = &pct
	}

	switch {
	case swap.TimestampMs == nil || rec.ATHTimeMs == nil:
		swap.ATHTiming = domain.ATHTimingUnknown
	case *swap.TimestampMs < *rec.ATHTimeMs:
		swap.ATHTiming = domain.ATHTimingBefore
	default:
		swap.ATHTiming = domain.ATHTimingAfter
	}
}

// EnrichSells attaches ATH estimates to every sell swap in place. Estimates
// are fetched once per distinct mint under the shared fan-out cap; swaps whose
// token has no estimate are classified as unknown.
func (e *Estimator) EnrichSells(ctx context.Context, swaps []*domain.Swap) error {
	byMint := make(map[string][]*domain.Swap)
	var mints []string
	for _, swap := range swaps {
		if swap.Direction != domain.SwapDirectionSell {
			continue
		}
		leg := swap.TokenLeg()
		if leg == nil {
			continue
		}
		if _, seen := byMint[leg.Asset]; !seen {
			mints = append(mints, leg.Asset)
		}
		byMint[leg.Asset] = append(byMint[leg.Asset], swap)
	}

	records := make(map[string]*domain.ATHRecord, len(mints))
	var mu sync.Mutex
	err := fetch.Batched(ctx, mints, fetch.DefaultConcurrency, fetch.DefaultPause, func(mint string) {
		rec := e.Estimate(ctx, mint)
		mu.Lock()
		records[mint] = rec
		mu.Unlock()
	})
	if err != nil {
		return err
	}

	for mint, group := range byMint {
		for _, swap := range group {
			ClassifyExit(swap, records[mint])
		}
	}
	return nil
}
