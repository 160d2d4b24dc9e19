package clickhouse

import (
	"context"
	"fmt"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/storage"
)

// PositionSnapshotStore implements storage.PositionSnapshotStore using ClickHouse.
// Snapshots are an append-only time series; MergeTree enforces no uniqueness
// and none is needed, each analysis run writes rows under a fresh timestamp.
type PositionSnapshotStore struct {
	conn *Conn
}

// NewPositionSnapshotStore creates a new PositionSnapshotStore.
func NewPositionSnapshotStore(conn *Conn) *PositionSnapshotStore {
	return &PositionSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PositionSnapshotStore = (*PositionSnapshotStore)(nil)

// InsertBulk adds one analysis run's position rows.
func (s *PositionSnapshotStore) InsertBulk(ctx context.Context, rows []*domain.PositionSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r == nil || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO position_snapshots (
			wallet, timestamp_ms, mint, symbol, balance, current_value_usd, category
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.Wallet, uint64(r.TimestampMs), r.Mint, r.Symbol,
			r.Balance, r.CurrentValueUSD, r.Category,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByWallet retrieves all snapshot rows for a wallet, ordered by timestamp ASC.
func (s *PositionSnapshotStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.PositionSnapshot, error) {
	query := `
		SELECT wallet, timestamp_ms, mint, symbol, balance, current_value_usd, category
		FROM position_snapshots
		WHERE wallet = ?
		ORDER BY timestamp_ms ASC, mint ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query by wallet: %w", err)
	}
	defer rows.Close()

	return scanPositionSnapshots(rows)
}

// GetByTimeRange retrieves a wallet's snapshot rows within [start, end] (inclusive).
func (s *PositionSnapshotStore) GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.PositionSnapshot, error) {
	query := `
		SELECT wallet, timestamp_ms, mint, symbol, balance, current_value_usd, category
		FROM position_snapshots
		WHERE wallet = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, mint ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPositionSnapshots(rows)
}

// scanPositionSnapshots scans multiple rows.
func scanPositionSnapshots(rows chRows) ([]*domain.PositionSnapshot, error) {
	var result []*domain.PositionSnapshot

	for rows.Next() {
		var r domain.PositionSnapshot
		var timestampMs uint64

		err := rows.Scan(
			&r.Wallet, &timestampMs, &r.Mint, &r.Symbol,
			&r.Balance, &r.CurrentValueUSD, &r.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("scan position snapshot row: %w", err)
		}

		r.TimestampMs = int64(timestampMs)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position snapshot rows: %w", err)
	}

	return result, nil
}
