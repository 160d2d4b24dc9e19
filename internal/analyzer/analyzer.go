// Package analyzer orchestrates the wallet analysis pipeline: fetch the
// transaction window, classify swaps, book realized PnL, value what is still
// held, and optionally enrich and archive closed trades.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wallet-trade-lab/internal/ath"
	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/idhash"
	"wallet-trade-lab/internal/ledger"
	"wallet-trade-lab/internal/observability"
	"wallet-trade-lab/internal/positions"
	"wallet-trade-lab/internal/solana"
	"wallet-trade-lab/internal/storage"
	"wallet-trade-lab/internal/txparse"
)

// ErrEmptyWindow rejects analysis requests with a non-positive transaction window.
var ErrEmptyWindow = errors.New("transaction window must be positive")

// TransactionSource yields a wallet's recent signatures and parsed transactions.
type TransactionSource interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

// BalanceSource yields a wallet's current non-zero token holdings.
type BalanceSource interface {
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]solana.TokenAccountBalance, error)
}

// PriceSource yields spot prices for a batch of mints. Unknown tokens are
// absent from the result, not errors.
type PriceSource interface {
	GetPrices(ctx context.Context, mints []string) (map[string]domain.TokenPrice, error)
}

// Analyzer runs wallet analyses over injected sources. Stateless between
// runs; the per-run ledgers are constructed fresh on every call.
type Analyzer struct {
	txs      TransactionSource
	balances BalanceSource
	prices   PriceSource
	valuator *positions.Valuator

	estimator *ath.Estimator                // optional, enables EnrichWithATH
	archive   storage.TradeArchive          // optional
	snapshots storage.PositionSnapshotStore // optional

	logger *log.Logger
	clock  func() time.Time
}

// Option configures Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for degraded-upstream notices.
func WithLogger(logger *log.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithClock injects a clock for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Analyzer) { a.clock = clock }
}

// WithEstimator enables ATH enrichment of closed trades.
func WithEstimator(est *ath.Estimator) Option {
	return func(a *Analyzer) { a.estimator = est }
}

// WithArchive persists enriched sell trades to the trade journal.
func WithArchive(archive storage.TradeArchive) Option {
	return func(a *Analyzer) { a.archive = archive }
}

// WithSnapshotStore records open positions to the snapshot history after
// each analysis run.
func WithSnapshotStore(store storage.PositionSnapshotStore) Option {
	return func(a *Analyzer) { a.snapshots = store }
}

// New creates an analyzer over transaction, balance, price, and metadata sources.
func New(
	txs TransactionSource,
	balances BalanceSource,
	prices PriceSource,
	metadata positions.MetadataSource,
	opts ...Option,
) *Analyzer {
	a := &Analyzer{
		txs:      txs,
		balances: balances,
		prices:   prices,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.valuator = positions.NewValuator(metadata, positions.WithClock(a.clock))
	return a
}

// AnalyzeWallet reconstructs a wallet's trading history over its most recent
// txWindow transactions. Individual transaction fetch failures are skipped;
// a failed signature listing or balance fetch aborts the analysis.
func (a *Analyzer) AnalyzeWallet(ctx context.Context, wallet string, txWindow int) (*domain.WalletReport, error) {
	started := a.clock()

	if err := solana.ValidateWalletAddress(wallet); err != nil {
		observability.RecordAnalysis("rejected", 0)
		return nil, fmt.Errorf("validate wallet: %w", err)
	}
	if txWindow <= 0 {
		observability.RecordAnalysis("rejected", 0)
		return nil, ErrEmptyWindow
	}

	swaps, err := a.collectSwaps(ctx, wallet, txWindow)
	if err != nil {
		observability.RecordAnalysis("failed", a.clock().Sub(started).Seconds())
		return nil, err
	}

	fifo := ledger.NewLedger()
	fifo.Process(swaps)
	stats := ledger.ComputeTradeStats(swaps)

	tracker := ledger.NewCostBasisTracker()
	tracker.Process(swaps)

	holdings, err := a.currentHoldings(ctx, wallet)
	if err != nil {
		observability.RecordAnalysis("failed", a.clock().Sub(started).Seconds())
		return nil, err
	}

	prices := a.fetchPrices(ctx, holdings)
	open, summary := a.valuator.Value(ctx, holdings, prices, tracker)

	report := &domain.WalletReport{
		Wallet:        wallet,
		GeneratedAtMs: a.clock().UnixMilli(),
		Stats:         stats,
		Trades:        swaps,
		OpenPositions: make([]*domain.Position, 0, len(open)),
		Summary:       summary,
	}
	for i := range open {
		report.OpenPositions = append(report.OpenPositions, &open[i])
	}

	a.recordSnapshot(ctx, wallet, report.GeneratedAtMs, open)

	observability.RecordAnalysis("ok", a.clock().Sub(started).Seconds())
	observability.DefaultMetrics.LastSuccessfulAnalysis.Set(float64(a.clock().Unix()))
	return report, nil
}

// collectSwaps fetches and classifies the transaction window. Per-transaction
// fetch failures are logged and skipped; the signature listing itself failing
// is fatal.
func (a *Analyzer) collectSwaps(ctx context.Context, wallet string, txWindow int) ([]*domain.Swap, error) {
	sigs, err := a.txs.GetSignaturesForAddress(ctx, wallet, &solana.SignaturesOpts{Limit: txWindow})
	if err != nil {
		observability.RecordUpstreamError("signatures")
		return nil, fmt.Errorf("fetch signatures: %w", err)
	}

	classifier := txparse.NewClassifier(wallet)
	var swaps []*domain.Swap
	for _, sig := range sigs {
		tx, err := a.txs.GetTransaction(ctx, sig.Signature)
		if err != nil {
			a.logf("analyze %s: fetch tx %s: %v", wallet, sig.Signature, err)
			observability.DefaultMetrics.TxFetchesFailed.Inc()
			continue
		}
		if tx == nil {
			continue
		}
		observability.RecordTransactionClassified()
		if swap := classifier.Classify(tx); swap != nil {
			observability.RecordSwap(swap.Direction)
			swaps = append(swaps, swap)
		}
	}
	return swaps, nil
}

// currentHoldings fetches current balances; a whole-call failure is fatal.
func (a *Analyzer) currentHoldings(ctx context.Context, wallet string) ([]domain.TokenBalance, error) {
	accounts, err := a.balances.GetTokenAccountsByOwner(ctx, wallet)
	if err != nil {
		observability.RecordUpstreamError("balances")
		return nil, fmt.Errorf("fetch balances: %w", err)
	}

	holdings := make([]domain.TokenBalance, 0, len(accounts))
	for _, acc := range accounts {
		holdings = append(holdings, domain.TokenBalance{
			Mint:     acc.Mint,
			Balance:  acc.Amount,
			Decimals: acc.Decimals,
		})
	}
	return holdings, nil
}

// fetchPrices quotes the analyzable holdings. A failed price batch degrades
// to no prices: those tokens drop out of the open-position list.
func (a *Analyzer) fetchPrices(ctx context.Context, holdings []domain.TokenBalance) map[string]domain.TokenPrice {
	var mints []string
	for _, h := range holdings {
		if h.Mint == domain.NativeAssetID || h.Mint == domain.WSOLMint || txparse.IsStableMint(h.Mint) {
			continue
		}
		mints = append(mints, h.Mint)
	}
	if len(mints) == 0 {
		return nil
	}

	prices, err := a.prices.GetPrices(ctx, mints)
	if err != nil {
		a.logf("fetch prices: %v", err)
		observability.RecordUpstreamError("prices")
		return nil
	}
	return prices
}

// recordSnapshot writes the run's open positions to the snapshot history.
// Best effort: a failed write is logged, never fails the analysis.
func (a *Analyzer) recordSnapshot(ctx context.Context, wallet string, atMs int64, open []domain.Position) {
	if a.snapshots == nil || len(open) == 0 {
		return
	}
	rows := positions.Snapshots(wallet, atMs, open)
	ptrs := make([]*domain.PositionSnapshot, len(rows))
	for i := range rows {
		ptrs[i] = &rows[i]
	}
	if err := a.snapshots.InsertBulk(ctx, ptrs); err != nil {
		a.logf("record snapshot for %s: %v", wallet, err)
		return
	}
	observability.DefaultMetrics.SnapshotsRecorded.Add(float64(len(rows)))
}

// EnrichWithATH attaches ATH estimates to the report's sell trades and, when
// an archive is configured, journals them. Requires WithEstimator.
func (a *Analyzer) EnrichWithATH(ctx context.Context, wallet string, swaps []*domain.Swap) error {
	if a.estimator == nil {
		return errors.New("ath estimator not configured")
	}
	if err := a.estimator.EnrichSells(ctx, swaps); err != nil {
		return fmt.Errorf("enrich sells: %w", err)
	}
	a.archiveSells(ctx, wallet, swaps)
	return nil
}

// archiveSells journals enriched sell trades. Duplicate trade IDs mean the
// trade was archived by an earlier run and are skipped silently.
func (a *Analyzer) archiveSells(ctx context.Context, wallet string, swaps []*domain.Swap) {
	if a.archive == nil {
		return
	}
	nowMs := a.clock().UnixMilli()
	for _, swap := range swaps {
		if swap.Direction != domain.SwapDirectionSell {
			continue
		}
		token := swap.TokenLeg()
		if token == nil {
			continue
		}
		trade := flattenTrade(wallet, swap, token, nowMs)

		err := a.archive.Insert(ctx, trade)
		switch {
		case err == nil:
			observability.DefaultMetrics.TradesArchived.Inc()
		case errors.Is(err, storage.ErrDuplicateKey):
			// Already journaled.
		default:
			a.logf("archive trade %s: %v", trade.TradeID, err)
		}
	}
}

// flattenTrade converts an enriched sell swap into its archive row.
func flattenTrade(wallet string, swap *domain.Swap, token *domain.BalanceChange, nowMs int64) *domain.ArchivedTrade {
	trade := &domain.ArchivedTrade{
		TradeID:            idhash.ComputeTradeID(wallet, swap.Signature, token.Asset),
		Wallet:             wallet,
		Signature:          swap.Signature,
		Mint:               token.Asset,
		TimestampMs:        swap.TimestampMs,
		Direction:          swap.Direction,
		QuantityToken:      abs(token.Delta),
		FeeNative:          swap.FeeNative,
		PriceNative:        swap.PriceNative,
		RealizedPnLPercent: swap.RealizedPnLPercent,
		RealizedPnLNative:  swap.RealizedPnLNative,
		ATHPrice:           swap.ATHPrice,
		ATHTimeMs:          swap.ATHTimeMs,
		ATHMarketCap:       swap.ATHMarketCap,
		ExitVsATHPercent:   swap.ExitVsATHPercent,
		ATHTiming:          swap.ATHTiming,
		ArchivedAtMs:       nowMs,
	}
	if native := swap.NativeLeg(); native != nil {
		trade.AmountNative = abs(native.Delta)
	}
	return trade
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (a *Analyzer) logf(format string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
