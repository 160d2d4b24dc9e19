package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// Transaction is a parsed confirmed transaction with the metadata the
// balance-delta pipeline consumes: account keys, instruction program IDs, and
// pre/post balances for both lamport accounts and token accounts.
type Transaction struct {
	Signature string
	Slot      int64
	BlockTime *int64 // unix seconds, nil when the cluster omitted it
	Message   *TransactionMessage
	Meta      *TransactionMeta
}

// TransactionMessage holds the static account list and top-level instructions.
type TransactionMessage struct {
	AccountKeys  []string
	Instructions []Instruction
}

// Instruction is a compiled instruction referencing the message account list.
type Instruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           string
}

// InnerInstructionSet holds inner instructions emitted by one top-level instruction.
type InnerInstructionSet struct {
	Index        int
	Instructions []Instruction
}

// TransactionMeta is the execution metadata of a confirmed transaction.
type TransactionMeta struct {
	Err               interface{}
	Fee               uint64 // lamports
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalanceEntry
	PostTokenBalances []TokenBalanceEntry
	InnerInstructions []InnerInstructionSet
	LogMessages       []string
}

// TokenBalanceEntry is one pre/post token-account balance snapshot entry.
type TokenBalanceEntry struct {
	AccountIndex int
	Mint         string
	Owner        string
	UIAmount     *float64 // decimal-adjusted, nil for empty accounts
	Decimals     int
}

// TokenAccountBalance is a current token holding from getTokenAccountsByOwner.
type TokenAccountBalance struct {
	Mint     string
	Amount   float64 // decimal-adjusted
	Decimals int
}

// ProgramID resolves an instruction's program address against the account list.
// Returns empty string when the index points outside the static keys (address
// lookup tables), which callers treat as no match.
func (m *TransactionMessage) ProgramID(ix Instruction) string {
	if m == nil || ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= len(m.AccountKeys) {
		return ""
	}
	return m.AccountKeys[ix.ProgramIDIndex]
}
