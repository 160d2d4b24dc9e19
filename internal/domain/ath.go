package domain

// ATHRecord is an estimated historical peak for a token, back-solved from
// short-term percentage-change windows. Immutable for its cache TTL window.
type ATHRecord struct {
	Mint         string
	ATHPrice     float64
	ATHTimeMs    *int64 // nil when the estimate carries no usable timestamp
	ATHMarketCap *float64
	CurrentPrice float64
	Symbol       string
	FetchedAtMs  int64 // when the estimate was computed
}
