package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress wraps every wallet address validation failure.
var ErrInvalidAddress = errors.New("invalid wallet address")

// ValidateWalletAddress checks that an address is a plausible wallet:
// base58, 32 bytes, and a valid ed25519 curve point. Program-derived
// addresses are off-curve and rejected, since they cannot sign transactions.
func ValidateWalletAddress(address string) error {
	if address == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: decode base58: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: must decode to 32 bytes, got %d", ErrInvalidAddress, len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("%w: not on the ed25519 curve", ErrInvalidAddress)
	}
	return nil
}

// IsValidMint reports whether a string looks like a token mint address.
// Mints may be off-curve, so only base58 shape is checked.
func IsValidMint(mint string) bool {
	if len(mint) < 32 || len(mint) > 44 {
		return false
	}
	raw, err := base58.Decode(mint)
	return err == nil && len(raw) == 32
}
