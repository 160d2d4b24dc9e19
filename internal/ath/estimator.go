// Package ath estimates a token's historical peak price from its current
// price and short-term percentage-change windows. Direct historical price
// series are unavailable for most of these tokens, so the estimate back-solves
// the peak from the deepest recent drop. Coarse by design.
package ath

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"wallet-trade-lab/internal/cache"
	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/market"
)

// CacheTTL is how long an ATH estimate stays valid.
const CacheTTL = 30 * time.Minute

// dropGate is the minimum drop (percent) in any change window before the
// current price is treated as having fallen from a higher peak.
const dropGate = -10.0

// Lookbacks assign an estimated peak time per change window. Deliberately
// coarse: half the 1h window, half the 6h window, half the 24h window.
const (
	lookbackH1  = 30 * time.Minute
	lookbackH6  = 3 * time.Hour
	lookbackH24 = 12 * time.Hour
)

// PairSource yields trading-pair data for a token.
type PairSource interface {
	GetPairs(ctx context.Context, mint string) ([]market.Pair, error)
}

// Estimator computes and caches ATH estimates. The cache is process-wide
// shared state injected as a capability; the estimator itself is stateless.
type Estimator struct {
	pairs  PairSource
	cache  cache.Store
	clock  func() time.Time
	logger *log.Logger
}

// EstimatorOption configures Estimator.
type EstimatorOption func(*Estimator)

// WithClock injects a clock for deterministic tests.
func WithClock(clock func() time.Time) EstimatorOption {
	return func(e *Estimator) {
		e.clock = clock
	}
}

// WithLogger sets the logger for degraded-fetch notices.
func WithLogger(logger *log.Logger) EstimatorOption {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// NewEstimator creates an estimator over a pair source and a cache store.
func NewEstimator(pairs PairSource, store cache.Store, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		pairs: pairs,
		cache: store,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the ATH estimate for a token, from cache when live.
// Returns nil on any fetch or parse failure: ATH enrichment is always
// optional and the caller degrades to "no data".
func (e *Estimator) Estimate(ctx context.Context, mint string) *domain.ATHRecord {
	if rec := e.cached(ctx, mint); rec != nil {
		return rec
	}

	pairs, err := e.pairs.GetPairs(ctx, mint)
	if err != nil {
		e.logf("ath: fetch pairs for %s: %v", mint, err)
		return nil
	}
	best := market.BestPair(pairs)
	if best == nil || best.PriceUSD <= 0 {
		return nil
	}

	rec := e.backSolve(mint, best)
	e.store(ctx, mint, rec)
	return rec
}

// backSolve derives the peak estimate from the most liquid pair's change
// windows. The deepest drop wins; a drop beyond the gate means the current
// price fell from a peak `1/(1+drop)` higher, with the peak time placed a
// fixed lookback into that window. No qualifying drop means the token trades
// at or near its peak right now.
func (e *Estimator) backSolve(mint string, pair *market.Pair) *domain.ATHRecord {
	now := e.clock()
	nowMs := now.UnixMilli()

	rec := &domain.ATHRecord{
		Mint:         mint,
		CurrentPrice: pair.PriceUSD,
		Symbol:       pair.BaseSymbol,
		FetchedAtMs:  nowMs,
	}

	type window struct {
		change   *float64
		lookback time.Duration
	}
	windows := []window{
		{pair.ChangeH1, lookbackH1},
		{pair.ChangeH6, lookbackH6},
		{pair.ChangeH24, lookbackH24},
	}

	var maxDrop *float64
	lookback := time.Duration(0)
	for _, w := range windows {
		if w.change == nil {
			continue
		}
		if maxDrop == nil || *w.change < *maxDrop {
			maxDrop = w.change
			lookback = w.lookback
		}
	}

	if maxDrop == nil || *maxDrop >= dropGate {
		// Near the peak now.
		rec.ATHPrice = pair.PriceUSD
		rec.ATHTimeMs = &nowMs
		rec.ATHMarketCap = pair.MarketCap
		return rec
	}

	ratio := 1 + *maxDrop/100
	rec.ATHPrice = pair.PriceUSD / ratio
	athTime := now.Add(-lookback).UnixMilli()
	rec.ATHTimeMs = &athTime
	if pair.MarketCap != nil {
		scaled := *pair.MarketCap / ratio
		rec.ATHMarketCap = &scaled
	}
	return rec
}

func (e *Estimator) cached(ctx context.Context, mint string) *domain.ATHRecord {
	data, ok, err := e.cache.Get(ctx, cacheKey(mint))
	if err != nil {
		e.logf("ath: cache get %s: %v", mint, err)
		return nil
	}
	if !ok {
		return nil
	}
	var rec domain.ATHRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	return &rec
}

func (e *Estimator) store(ctx context.Context, mint string, rec *domain.ATHRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, cacheKey(mint), data, CacheTTL); err != nil {
		e.logf("ath: cache set %s: %v", mint, err)
	}
}

func cacheKey(mint string) string {
	return "ath:" + mint
}

func (e *Estimator) logf(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
