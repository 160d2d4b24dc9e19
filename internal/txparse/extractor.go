package txparse

import (
	"math"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/solana"
)

// Dust thresholds. Net changes at or below these are rounding noise from
// intermediate hops and never become balance changes.
const (
	// TokenDustThreshold filters token deltas (in decimal-adjusted units).
	TokenDustThreshold = 1e-6
	// NativeDustThreshold filters native SOL deltas, coarser because every
	// transaction moves a few thousand lamports of fees and rent.
	NativeDustThreshold = 1e-4

	lamportsPerSOL = 1_000_000_000.0
	nativeDecimals = 9
)

// ExtractBalanceChanges computes the net per-asset balance deltas of one
// transaction for the given wallet. Token deltas come from the pre/post
// token-balance snapshots; the native delta comes from the wallet's lamport
// account slot. Pure function: no I/O, deterministic output order (native
// first, then tokens in post-balance order).
func ExtractBalanceChanges(tx *solana.Transaction, wallet string) []domain.BalanceChange {
	if tx == nil || tx.Meta == nil {
		return nil
	}

	var changes []domain.BalanceChange

	if delta, ok := nativeDelta(tx, wallet); ok && math.Abs(delta) > NativeDustThreshold {
		changes = append(changes, domain.BalanceChange{
			Asset:     domain.NativeAssetID,
			Delta:     delta,
			Direction: changeDirection(delta),
			Decimals:  nativeDecimals,
			Kind:      domain.LegNative,
		})
	}

	type balancePair struct {
		pre      float64
		post     float64
		decimals int
	}

	// Net per mint: a wallet can hold several token accounts for one mint.
	pairs := make(map[string]*balancePair)
	order := make([]string, 0, len(tx.Meta.PostTokenBalances))

	record := func(entry solana.TokenBalanceEntry, post bool) {
		if entry.Owner != wallet {
			return
		}
		p, ok := pairs[entry.Mint]
		if !ok {
			p = &balancePair{decimals: entry.Decimals}
			pairs[entry.Mint] = p
			order = append(order, entry.Mint)
		}
		amount := 0.0
		if entry.UIAmount != nil {
			amount = *entry.UIAmount
		}
		if post {
			p.post += amount
		} else {
			p.pre += amount
		}
	}

	for _, entry := range tx.Meta.PostTokenBalances {
		record(entry, true)
	}
	for _, entry := range tx.Meta.PreTokenBalances {
		record(entry, false)
	}

	for _, mint := range order {
		p := pairs[mint]
		delta := p.post - p.pre
		if math.Abs(delta) <= TokenDustThreshold {
			continue
		}
		changes = append(changes, domain.BalanceChange{
			Asset:     mint,
			Delta:     delta,
			Direction: changeDirection(delta),
			Decimals:  p.decimals,
			Kind:      classifyLeg(mint),
		})
	}

	return changes
}

// nativeDelta returns the wallet's lamport delta in SOL. The wallet's balance
// slot is its index in the static account keys.
func nativeDelta(tx *solana.Transaction, wallet string) (float64, bool) {
	if tx.Message == nil {
		return 0, false
	}
	idx := -1
	for i, key := range tx.Message.AccountKeys {
		if key == wallet {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(tx.Meta.PreBalances) || idx >= len(tx.Meta.PostBalances) {
		return 0, false
	}
	pre := float64(tx.Meta.PreBalances[idx])
	post := float64(tx.Meta.PostBalances[idx])
	return (post - pre) / lamportsPerSOL, true
}

func changeDirection(delta float64) domain.ChangeDirection {
	if delta > 0 {
		return domain.ChangeReceived
	}
	return domain.ChangeSent
}
