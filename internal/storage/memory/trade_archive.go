package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/storage"
)

// TradeArchive is an in-memory implementation of storage.TradeArchive.
type TradeArchive struct {
	mu   sync.RWMutex
	data map[string]*domain.ArchivedTrade // keyed by trade_id
}

// NewTradeArchive creates a new in-memory trade archive.
func NewTradeArchive() *TradeArchive {
	return &TradeArchive{
		data: make(map[string]*domain.ArchivedTrade),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeArchive) Insert(_ context.Context, t *domain.ArchivedTrade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TradeID] = &copy
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeArchive) InsertBulk(_ context.Context, trades []*domain.ArchivedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(trades))

	// First pass: check for duplicates (existing + intra-batch)
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}

		if _, exists := s.data[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	// Second pass: insert all
	for _, t := range trades {
		copy := *t
		s.data[t.TradeID] = &copy
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeArchive) GetByID(_ context.Context, tradeID string) (*domain.ArchivedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// GetByWallet retrieves all archived trades for a wallet, ordered by timestamp ASC.
func (s *TradeArchive) GetByWallet(_ context.Context, wallet string) ([]*domain.ArchivedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ArchivedTrade
	for _, t := range s.data {
		if t.Wallet == wallet {
			copy := *t
			result = append(result, &copy)
		}
	}

	sortTrades(result)
	return result, nil
}

// GetByWalletMint retrieves a wallet's archived trades for one token,
// ordered by timestamp ASC.
func (s *TradeArchive) GetByWalletMint(_ context.Context, wallet, mint string) ([]*domain.ArchivedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ArchivedTrade
	for _, t := range s.data {
		if t.Wallet == wallet && t.Mint == mint {
			copy := *t
			result = append(result, &copy)
		}
	}

	sortTrades(result)
	return result, nil
}

// sortTrades orders by timestamp ASC; trades without a timestamp sort last,
// ties break on trade_id for determinism.
func sortTrades(trades []*domain.ArchivedTrade) {
	sort.Slice(trades, func(i, j int) bool {
		ti, tj := trades[i].TimestampMs, trades[j].TimestampMs
		switch {
		case ti == nil && tj == nil:
			return trades[i].TradeID < trades[j].TradeID
		case ti == nil:
			return false
		case tj == nil:
			return true
		case *ti != *tj:
			return *ti < *tj
		default:
			return trades[i].TradeID < trades[j].TradeID
		}
	})
}

var _ storage.TradeArchive = (*TradeArchive)(nil)
