package txparse

import (
	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/solana"
)

// Classifier turns raw transactions into directional Swap records for one
// wallet. It is stateless; classifying the same transaction twice yields
// identical output.
type Classifier struct {
	wallet string
}

// NewClassifier creates a classifier for the analyzed wallet.
func NewClassifier(wallet string) *Classifier {
	return &Classifier{wallet: wallet}
}

// Classify decides whether a transaction is DEX activity and, if so, packages
// its balance deltas into a Swap. Returns nil for anything that is not a
// reconstructable trade: no allow-listed program touched, failed transaction,
// or fewer than two non-dust balance changes. None of these are errors.
func (c *Classifier) Classify(tx *solana.Transaction) *domain.Swap {
	if tx == nil || tx.Meta == nil {
		return nil
	}
	// Failed transactions move no balances worth reading.
	if tx.Meta.Err != nil {
		return nil
	}
	if !touchesDEX(tx) {
		return nil
	}

	changes := ExtractBalanceChanges(tx, c.wallet)
	if len(changes) < 2 {
		// Ambiguous or partially failed swap; skip rather than guess.
		return nil
	}

	swap := &domain.Swap{
		Signature: tx.Signature,
		Direction: domain.SwapDirectionUnknown,
		Changes:   changes,
		FeeNative: float64(tx.Meta.Fee) / lamportsPerSOL,
	}
	if tx.BlockTime != nil {
		ms := *tx.BlockTime * 1000
		swap.TimestampMs = &ms
	}

	// Direction follows the reference leg: the wallet paying native/stable
	// means it bought the token, receiving means it sold. Token-to-token
	// routes have no reference leg and stay unknown.
	if ref := swap.NativeLeg(); ref != nil {
		if ref.Delta > 0 {
			swap.Direction = domain.SwapDirectionSell
		} else {
			swap.Direction = domain.SwapDirectionBuy
		}
	}

	return swap
}

// touchesDEX checks the transaction against the program allow-list, in order:
// static account keys, then top-level instruction programs, then inner
// instruction programs. First match short-circuits.
func touchesDEX(tx *solana.Transaction) bool {
	if tx.Message == nil {
		return false
	}
	for _, key := range tx.Message.AccountKeys {
		if IsDEXProgram(key) {
			return true
		}
	}
	for _, ix := range tx.Message.Instructions {
		if IsDEXProgram(tx.Message.ProgramID(ix)) {
			return true
		}
	}
	for _, inner := range tx.Meta.InnerInstructions {
		for _, ix := range inner.Instructions {
			if IsDEXProgram(tx.Message.ProgramID(ix)) {
				return true
			}
		}
	}
	return false
}
