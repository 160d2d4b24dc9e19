package domain

// ArchivedTrade is one journaled trade row: a classified swap flattened for
// persistence, with whatever ATH enrichment was available at archive time.
// TradeID is content-derived, so re-archiving the same analysis is a
// duplicate-key no-op rather than a double entry.
type ArchivedTrade struct {
	TradeID     string
	Wallet      string
	Signature   string
	Mint        string
	TimestampMs *int64
	Direction   string

	QuantityToken float64 // token leg magnitude
	AmountNative  float64 // native leg magnitude
	FeeNative     float64

	PriceNative        *float64
	RealizedPnLPercent *float64
	RealizedPnLNative  *float64

	ATHPrice         *float64
	ATHTimeMs        *int64
	ATHMarketCap     *float64
	ExitVsATHPercent *float64
	ATHTiming        string

	ArchivedAtMs int64
}
