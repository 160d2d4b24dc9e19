package txparse

import "wallet-trade-lab/internal/domain"

// Known swap/router/AMM program IDs. A transaction touching any of these is
// treated as DEX activity.
const (
	// RaydiumAMMV4 is the Raydium AMM v4 program ID.
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	// RaydiumCLMM is the Raydium concentrated liquidity program ID.
	RaydiumCLMM = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
	// RaydiumCPMM is the Raydium constant product (standard) AMM program ID.
	RaydiumCPMM = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"
	// OrcaWhirlpool is the Orca Whirlpool program ID.
	OrcaWhirlpool = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	// MeteoraDLMM is the Meteora dynamic liquidity market maker program ID.
	MeteoraDLMM = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"
	// JupiterV6 is the Jupiter aggregator v6 program ID.
	JupiterV6 = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	// PumpFun is the pump.fun bonding curve program ID.
	PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	// PumpSwap is the pump.fun AMM program ID.
	PumpSwap = "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"
	// Phoenix is the Phoenix order book program ID.
	Phoenix = "PhoeNiXZ8ByJGLkxNfZRnkUfjvmuYqLR89jjFHGqdXY"
)

// dexPrograms is the swap-detection allow-list.
var dexPrograms = map[string]bool{
	RaydiumAMMV4:  true,
	RaydiumCLMM:   true,
	RaydiumCPMM:   true,
	OrcaWhirlpool: true,
	MeteoraDLMM:   true,
	JupiterV6:     true,
	PumpFun:       true,
	PumpSwap:      true,
	Phoenix:       true,
}

// Reference stable mints. A balance change in one of these can serve as the
// swap's pricing leg when no native SOL leg exists.
const (
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

var stableMints = map[string]bool{
	USDCMint: true,
	USDTMint: true,
}

// IsDEXProgram reports whether a program ID is on the swap allow-list.
func IsDEXProgram(programID string) bool {
	return dexPrograms[programID]
}

// IsStableMint reports whether a mint is a reference stable asset.
func IsStableMint(mint string) bool {
	return stableMints[mint]
}

// classifyLeg assigns the leg kind for an asset ID.
func classifyLeg(asset string) domain.LegKind {
	switch {
	case asset == domain.NativeAssetID || asset == domain.WSOLMint:
		return domain.LegNative
	case stableMints[asset]:
		return domain.LegStable
	default:
		return domain.LegToken
	}
}
