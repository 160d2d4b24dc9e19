package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/storage"
)

// PositionSnapshotStore is an in-memory implementation of storage.PositionSnapshotStore.
type PositionSnapshotStore struct {
	mu   sync.RWMutex
	data []*domain.PositionSnapshot
}

// NewPositionSnapshotStore creates a new in-memory snapshot store.
func NewPositionSnapshotStore() *PositionSnapshotStore {
	return &PositionSnapshotStore{}
}

// InsertBulk adds one analysis run's position rows.
func (s *PositionSnapshotStore) InsertBulk(_ context.Context, rows []*domain.PositionSnapshot) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		if r == nil || r.Wallet == "" {
			return storage.ErrInvalidInput
		}
	}
	for _, r := range rows {
		copy := *r
		s.data = append(s.data, &copy)
	}
	return nil
}

// GetByWallet retrieves all snapshot rows for a wallet, ordered by timestamp ASC.
func (s *PositionSnapshotStore) GetByWallet(_ context.Context, wallet string) ([]*domain.PositionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PositionSnapshot
	for _, r := range s.data {
		if r.Wallet == wallet {
			copy := *r
			result = append(result, &copy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

// GetByTimeRange retrieves a wallet's snapshot rows within [start, end] (inclusive).
func (s *PositionSnapshotStore) GetByTimeRange(_ context.Context, wallet string, start, end int64) ([]*domain.PositionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PositionSnapshot
	for _, r := range s.data {
		if r.Wallet == wallet && r.TimestampMs >= start && r.TimestampMs <= end {
			copy := *r
			result = append(result, &copy)
		}
	}

	sortSnapshots(result)
	return result, nil
}

func sortSnapshots(rows []*domain.PositionSnapshot) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TimestampMs != rows[j].TimestampMs {
			return rows[i].TimestampMs < rows[j].TimestampMs
		}
		return rows[i].Mint < rows[j].Mint
	})
}

var _ storage.PositionSnapshotStore = (*PositionSnapshotStore)(nil)
