package domain

// Well-known asset identifiers.
const (
	// NativeAssetID is the sentinel asset ID for the chain-native asset (SOL).
	// Native balance changes come from lamport account deltas, not token accounts,
	// so they carry no mint address.
	NativeAssetID = "SOL"

	// WSOLMint is the wrapped SOL mint, treated as the native asset for leg selection.
	WSOLMint = "So11111111111111111111111111111111111111112"
)

// LegKind classifies a balance change for swap leg selection.
// Priority order when picking the reference leg: native first, then stable.
// Everything else is a token leg.
type LegKind int

const (
	LegToken LegKind = iota
	LegNative
	LegStable
)

// String returns the leg kind name.
func (k LegKind) String() string {
	switch k {
	case LegNative:
		return "native"
	case LegStable:
		return "stable"
	default:
		return "token"
	}
}

// ChangeDirection indicates whether the wallet received or sent an asset.
type ChangeDirection string

const (
	ChangeReceived ChangeDirection = "received"
	ChangeSent     ChangeDirection = "sent"
)

// BalanceChange is the net per-asset balance delta of one transaction for the
// analyzed wallet. At most one change per asset per transaction: deltas are
// netted across instructions, not itemized.
type BalanceChange struct {
	Asset     string          `json:"asset"`     // NativeAssetID or token mint address
	Delta     float64         `json:"delta"`     // signed, decimal-adjusted
	Direction ChangeDirection `json:"direction"` // received when Delta > 0, sent otherwise
	Decimals  int             `json:"decimals"`  // token decimals (9 for native)
	Kind      LegKind         `json:"kind"`      // leg classification, assigned at extraction
}

// Swap direction constants.
const (
	SwapDirectionBuy     = "buy"
	SwapDirectionSell    = "sell"
	SwapDirectionUnknown = "unknown"
)

// ATH timing classification for a closed trade's exit.
const (
	ATHTimingBefore  = "before_ath"
	ATHTimingAfter   = "after_ath"
	ATHTimingUnknown = "unknown"
)

// Swap is a reconstructed directional trade inferred from a transaction's
// balance deltas. It is created immutable by the classifier; the FIFO ledger
// is the only component that mutates it, once, to attach price and realized
// PnL. ATH fields are attached by batch enrichment and stay nil when the
// estimator has no data for the token.
type Swap struct {
	Signature   string          `json:"signature"`
	TimestampMs *int64          `json:"timestamp_ms"` // block time in ms, nil when the chain omitted it
	Direction   string          `json:"direction"`    // buy | sell | unknown
	Changes     []BalanceChange `json:"changes"`
	FeeNative   float64         `json:"fee_native"` // transaction fee in SOL

	// Attached by the FIFO ledger.
	PriceNative        *float64 `json:"price_native"` // unit price in reference-leg units
	RealizedPnLPercent *float64 `json:"realized_pnl_percent"`
	RealizedPnLNative  *float64 `json:"realized_pnl_native"`

	// Attached by ATH enrichment.
	ATHPrice         *float64 `json:"ath_price,omitempty"`
	ATHTimeMs        *int64   `json:"ath_time_ms,omitempty"`
	ATHMarketCap     *float64 `json:"ath_market_cap,omitempty"`
	ExitVsATHPercent *float64 `json:"exit_vs_ath_percent,omitempty"`
	ATHTiming        string   `json:"ath_timing,omitempty"` // before_ath | after_ath | unknown | "" when unenriched
}

// NativeLeg returns the first native-or-stable balance change, native taking
// priority over stable. Returns nil when the swap has no reference leg
// (token-to-token route).
func (s *Swap) NativeLeg() *BalanceChange {
	for i := range s.Changes {
		if s.Changes[i].Kind == LegNative {
			return &s.Changes[i]
		}
	}
	for i := range s.Changes {
		if s.Changes[i].Kind == LegStable {
			return &s.Changes[i]
		}
	}
	return nil
}

// TokenLeg returns the first balance change that is neither native nor stable.
func (s *Swap) TokenLeg() *BalanceChange {
	for i := range s.Changes {
		if s.Changes[i].Kind == LegToken {
			return &s.Changes[i]
		}
	}
	return nil
}
