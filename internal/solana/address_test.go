package solana

import (
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

func TestValidateWalletAddress(t *testing.T) {
	// A guaranteed on-curve pubkey: the ed25519 base point.
	onCurve := base58.Encode(edwards25519.NewGeneratorPoint().Bytes())

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{
			name:    "valid on-curve address",
			address: onCurve,
			wantErr: false,
		},
		{
			name:    "valid system program address",
			address: "11111111111111111111111111111111",
			wantErr: false,
		},
		{
			name:    "empty",
			address: "",
			wantErr: true,
		},
		{
			name:    "not base58",
			address: "0x0000000000000000000000000000000000000000",
			wantErr: true,
		},
		{
			name:    "too short",
			address: "abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWalletAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWalletAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
		})
	}
}

func TestIsValidMint(t *testing.T) {
	if !IsValidMint("So11111111111111111111111111111111111111112") {
		t.Error("expected WSOL mint to be valid")
	}
	if IsValidMint("short") {
		t.Error("expected short string to be invalid")
	}
	if IsValidMint("O0lI" + "So11111111111111111111111111111111111111") {
		t.Error("expected non-base58 characters to be invalid")
	}
}
