// Package idhash derives deterministic record identifiers from record content.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(wallet|tx_signature|mint)
// Returns hex-encoded hash (64 characters).
//
// The same trade archived twice yields the same ID, so the append-only
// archive rejects the replay as a duplicate instead of double-counting it.
func ComputeTradeID(wallet, txSignature, mint string) string {
	data := fmt.Sprintf("%s|%s|%s", wallet, txSignature, mint)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
