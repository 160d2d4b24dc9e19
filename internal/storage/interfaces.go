package storage

import (
	"context"

	"wallet-trade-lab/internal/domain"
)

// TradeArchive provides access to the append-only trade journal.
type TradeArchive interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.ArchivedTrade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.ArchivedTrade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.ArchivedTrade, error)

	// GetByWallet retrieves all archived trades for a wallet, ordered by timestamp ASC
	// (trades without a timestamp sort last).
	GetByWallet(ctx context.Context, wallet string) ([]*domain.ArchivedTrade, error)

	// GetByWalletMint retrieves a wallet's archived trades for one token,
	// ordered by timestamp ASC.
	GetByWalletMint(ctx context.Context, wallet, mint string) ([]*domain.ArchivedTrade, error)
}

// PositionSnapshotStore provides access to portfolio snapshot history.
type PositionSnapshotStore interface {
	// InsertBulk adds one analysis run's position rows.
	InsertBulk(ctx context.Context, rows []*domain.PositionSnapshot) error

	// GetByWallet retrieves all snapshot rows for a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.PositionSnapshot, error)

	// GetByTimeRange retrieves a wallet's snapshot rows within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.PositionSnapshot, error)
}
