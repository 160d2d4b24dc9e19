package domain

// TokenBalance is a current non-zero token holding of a wallet.
type TokenBalance struct {
	Mint     string
	Balance  float64 // decimal-adjusted
	Decimals int
}

// TokenPrice is a spot quote for a token from the price source.
type TokenPrice struct {
	PriceUSD       float64
	PriceChange24h float64 // percent
}

// TokenMetadata is display metadata for a mint. Symbol falls back to a
// shortened mint address when the metadata source has nothing.
type TokenMetadata struct {
	Mint   string
	Symbol string
	Name   string
}
