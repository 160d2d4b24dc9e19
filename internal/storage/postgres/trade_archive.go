package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/storage"
)

// TradeArchive implements storage.TradeArchive using PostgreSQL.
type TradeArchive struct {
	pool *Pool
}

// NewTradeArchive creates a new TradeArchive.
func NewTradeArchive(pool *Pool) *TradeArchive {
	return &TradeArchive{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeArchive = (*TradeArchive)(nil)

const tradeArchiveColumns = `
	trade_id, wallet, tx_signature, mint, timestamp_ms, direction,
	quantity_token, amount_native, fee_native,
	price_native, realized_pnl_percent, realized_pnl_native,
	ath_price, ath_time_ms, ath_market_cap, exit_vs_ath_percent, ath_timing,
	archived_at_ms
`

const tradeArchiveInsert = `
	INSERT INTO trade_archive (
		trade_id, wallet, tx_signature, mint, timestamp_ms, direction,
		quantity_token, amount_native, fee_native,
		price_native, realized_pnl_percent, realized_pnl_native,
		ath_price, ath_time_ms, ath_market_cap, exit_vs_ath_percent, ath_timing,
		archived_at_ms
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9,
		$10, $11, $12,
		$13, $14, $15, $16, $17,
		$18
	)
`

func tradeArchiveArgs(t *domain.ArchivedTrade) []interface{} {
	return []interface{}{
		t.TradeID, t.Wallet, t.Signature, t.Mint, t.TimestampMs, t.Direction,
		t.QuantityToken, t.AmountNative, t.FeeNative,
		t.PriceNative, t.RealizedPnLPercent, t.RealizedPnLNative,
		t.ATHPrice, t.ATHTimeMs, t.ATHMarketCap, t.ExitVsATHPercent, t.ATHTiming,
		t.ArchivedAtMs,
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeArchive) Insert(ctx context.Context, t *domain.ArchivedTrade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, tradeArchiveInsert, tradeArchiveArgs(t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert archived trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeArchive) InsertBulk(ctx context.Context, trades []*domain.ArchivedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, tradeArchiveInsert, tradeArchiveArgs(t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert archived trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeArchive) GetByID(ctx context.Context, tradeID string) (*domain.ArchivedTrade, error) {
	query := `SELECT ` + tradeArchiveColumns + ` FROM trade_archive WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanArchivedTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get archived trade by id: %w", err)
	}
	return t, nil
}

// GetByWallet retrieves all archived trades for a wallet, ordered by timestamp ASC
// (NULL timestamps last).
func (s *TradeArchive) GetByWallet(ctx context.Context, wallet string) ([]*domain.ArchivedTrade, error) {
	query := `
		SELECT ` + tradeArchiveColumns + `
		FROM trade_archive
		WHERE wallet = $1
		ORDER BY timestamp_ms ASC NULLS LAST, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get archived trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanArchivedTrades(rows)
}

// GetByWalletMint retrieves a wallet's archived trades for one token,
// ordered by timestamp ASC.
func (s *TradeArchive) GetByWalletMint(ctx context.Context, wallet, mint string) ([]*domain.ArchivedTrade, error) {
	query := `
		SELECT ` + tradeArchiveColumns + `
		FROM trade_archive
		WHERE wallet = $1 AND mint = $2
		ORDER BY timestamp_ms ASC NULLS LAST, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("get archived trades by wallet/mint: %w", err)
	}
	defer rows.Close()

	return scanArchivedTrades(rows)
}

// scanArchivedTrade scans a single row into an ArchivedTrade.
func scanArchivedTrade(row pgx.Row) (*domain.ArchivedTrade, error) {
	var t domain.ArchivedTrade

	err := row.Scan(
		&t.TradeID, &t.Wallet, &t.Signature, &t.Mint, &t.TimestampMs, &t.Direction,
		&t.QuantityToken, &t.AmountNative, &t.FeeNative,
		&t.PriceNative, &t.RealizedPnLPercent, &t.RealizedPnLNative,
		&t.ATHPrice, &t.ATHTimeMs, &t.ATHMarketCap, &t.ExitVsATHPercent, &t.ATHTiming,
		&t.ArchivedAtMs,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// scanArchivedTrades scans multiple rows into a slice of ArchivedTrade.
func scanArchivedTrades(rows pgx.Rows) ([]*domain.ArchivedTrade, error) {
	var trades []*domain.ArchivedTrade

	for rows.Next() {
		t, err := scanArchivedTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archived trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived trade rows: %w", err)
	}

	return trades, nil
}
