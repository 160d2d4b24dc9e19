package stub

import (
	"context"
	"errors"

	"wallet-trade-lab/internal/solana"
)

// ErrUnavailable simulates a whole-call upstream failure.
var ErrUnavailable = errors.New("upstream unavailable")

// RPCClient is an in-memory transaction and balance source for tests.
type RPCClient struct {
	Transactions map[string]*solana.Transaction
	Signatures   map[string][]solana.SignatureInfo
	Balances     map[string][]solana.TokenAccountBalance

	// FailSignatures / FailBalances make the corresponding whole-batch call fail.
	FailSignatures bool
	FailBalances   bool
	// FailTransactions lists signatures whose individual fetch fails.
	FailTransactions map[string]bool

	TxFetches int // number of GetTransaction calls served
}

// NewRPCClient creates an empty stub client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions:     make(map[string]*solana.Transaction),
		Signatures:       make(map[string][]solana.SignatureInfo),
		Balances:         make(map[string][]solana.TokenAccountBalance),
		FailTransactions: make(map[string]bool),
	}
}

// GetTransaction retrieves a transaction by signature from the stub store.
// Returns nil, nil when unknown, matching the HTTP client's not-found behavior.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.TxFetches++
	if c.FailTransactions[signature] {
		return nil, ErrUnavailable
	}
	return c.Transactions[signature], nil
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	if c.FailSignatures {
		return nil, ErrUnavailable
	}
	sigs := c.Signatures[address]
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}
	return sigs, nil
}

// GetTokenAccountsByOwner retrieves stub token holdings for a wallet.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner string) ([]solana.TokenAccountBalance, error) {
	if c.FailBalances {
		return nil, ErrUnavailable
	}
	return c.Balances[owner], nil
}

// AddTransaction adds a transaction and its signature entry for an address.
func (c *RPCClient) AddTransaction(address string, tx *solana.Transaction) {
	c.Transactions[tx.Signature] = tx
	c.Signatures[address] = append(c.Signatures[address], solana.SignatureInfo{
		Signature: tx.Signature,
		Slot:      tx.Slot,
		BlockTime: tx.BlockTime,
	})
}
