package txparse

import (
	"reflect"
	"testing"

	"wallet-trade-lab/internal/domain"
	"wallet-trade-lab/internal/solana"
)

// makeSwapTx builds a DEX transaction: wallet pays solDelta SOL (negative =
// paid) and its token balance moves from preToken to postToken.
func makeSwapTx(sig string, solPre, solPost uint64, mint string, preToken, postToken float64) *solana.Transaction {
	tx := makeTx(sig, i64(1700000000), []string{RaydiumAMMV4}, solPre, solPost)
	addTokenDelta(tx, mint, preToken, postToken, 6)
	return tx
}

func TestClassify_Buy(t *testing.T) {
	c := NewClassifier(testWallet)
	tx := makeSwapTx("buy1", 3_000_000_000, 2_000_000_000, "MintAAA", 0, 1000)

	swap := c.Classify(tx)
	if swap == nil {
		t.Fatal("expected swap, got nil")
	}
	if swap.Direction != domain.SwapDirectionBuy {
		t.Errorf("expected buy, got %s", swap.Direction)
	}
	if swap.FeeNative != 5000.0/1e9 {
		t.Errorf("unexpected fee: %f", swap.FeeNative)
	}
	if swap.TimestampMs == nil || *swap.TimestampMs != 1700000000000 {
		t.Errorf("unexpected timestamp: %v", swap.TimestampMs)
	}
}

func TestClassify_Sell(t *testing.T) {
	c := NewClassifier(testWallet)
	tx := makeSwapTx("sell1", 2_000_000_000, 3_000_000_000, "MintAAA", 1000, 0)

	swap := c.Classify(tx)
	if swap == nil {
		t.Fatal("expected swap, got nil")
	}
	if swap.Direction != domain.SwapDirectionSell {
		t.Errorf("expected sell, got %s", swap.Direction)
	}
}

func TestClassify_UnknownDirection_TokenToToken(t *testing.T) {
	c := NewClassifier(testWallet)
	// No native or stable movement beyond dust: token-to-token route.
	tx := makeTx("t2t", i64(1700000000), []string{JupiterV6}, 1_000_000_000, 1_000_000_000)
	addTokenDelta(tx, "MintAAA", 500, 0, 6)
	addTokenDelta(tx, "MintBBB", 0, 120000, 9)

	swap := c.Classify(tx)
	if swap == nil {
		t.Fatal("expected swap, got nil")
	}
	if swap.Direction != domain.SwapDirectionUnknown {
		t.Errorf("expected unknown, got %s", swap.Direction)
	}
}

func TestClassify_StableLegDirection(t *testing.T) {
	c := NewClassifier(testWallet)
	// Paid USDC for a token, no native movement: still a buy.
	tx := makeTx("usdcbuy", nil, []string{OrcaWhirlpool}, 1_000_000_000, 1_000_000_000)
	addTokenDelta(tx, USDCMint, 500, 400, 6)
	addTokenDelta(tx, "MintAAA", 0, 250, 6)

	swap := c.Classify(tx)
	if swap == nil {
		t.Fatal("expected swap, got nil")
	}
	if swap.Direction != domain.SwapDirectionBuy {
		t.Errorf("expected buy via stable leg, got %s", swap.Direction)
	}
}

func TestClassify_NonDEXDiscarded(t *testing.T) {
	c := NewClassifier(testWallet)
	// Plain transfer: balance moves but no allow-listed program.
	tx := makeTx("xfer", i64(1700000000), []string{"SomeOtherProgram1111111111111111111111111"}, 3_000_000_000, 2_000_000_000)
	addTokenDelta(tx, "MintAAA", 0, 1000, 6)

	if swap := c.Classify(tx); swap != nil {
		t.Errorf("expected nil for non-DEX transaction, got %+v", swap)
	}
}

func TestClassify_FewerThanTwoChangesDiscarded(t *testing.T) {
	c := NewClassifier(testWallet)
	// DEX program touched but only the native leg moved.
	tx := makeTx("onechange", i64(1700000000), []string{RaydiumAMMV4}, 3_000_000_000, 2_000_000_000)

	if swap := c.Classify(tx); swap != nil {
		t.Errorf("expected nil for single-change transaction, got %+v", swap)
	}
}

func TestClassify_FailedTxDiscarded(t *testing.T) {
	c := NewClassifier(testWallet)
	tx := makeSwapTx("failed", 3_000_000_000, 2_000_000_000, "MintAAA", 0, 1000)
	tx.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}

	if swap := c.Classify(tx); swap != nil {
		t.Errorf("expected nil for failed transaction, got %+v", swap)
	}
}

func TestClassify_DEXViaCPI(t *testing.T) {
	// A router CPI into Raydium: the AMM program sits in the account list and
	// is invoked from an inner instruction.
	c := NewClassifier(testWallet)
	tx := makeTx("inner", i64(1700000000), []string{"RouterProgram111111111111111111111111111111", RaydiumAMMV4}, 3_000_000_000, 2_000_000_000)
	addTokenDelta(tx, "MintAAA", 0, 1000, 6)
	tx.Meta.InnerInstructions = []solana.InnerInstructionSet{
		{Index: 0, Instructions: []solana.Instruction{{ProgramIDIndex: 2}}},
	}

	swap := c.Classify(tx)
	if swap == nil {
		t.Fatal("expected swap via CPI match")
	}
	if swap.Direction != domain.SwapDirectionBuy {
		t.Errorf("expected buy, got %s", swap.Direction)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier(testWallet)
	tx := makeSwapTx("idem", 3_000_000_000, 2_000_000_000, "MintAAA", 0, 1000)

	first := c.Classify(tx)
	second := c.Classify(tx)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
