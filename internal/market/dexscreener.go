// Package market provides the external aggregator client used as the price,
// pair, and token-metadata source. All lookups are best effort: a failed or
// empty response means "no data", never a pipeline abort.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wallet-trade-lab/internal/domain"
)

// DefaultBaseURL is the public DexScreener API endpoint.
const DefaultBaseURL = "https://api.dexscreener.com"

// MaxAddressesPerCall caps the number of token addresses in one batch price
// request, the aggregator's documented request-size limit.
const MaxAddressesPerCall = 30

const defaultTimeout = 15 * time.Second

// Pair is one trading pair of a token as reported by the aggregator.
type Pair struct {
	PairAddress  string
	BaseSymbol   string
	BaseName     string
	PriceUSD     float64
	MarketCap    *float64
	LiquidityUSD float64
	// Percentage-change windows; nil when the aggregator omits one.
	ChangeH1  *float64
	ChangeH6  *float64
	ChangeH24 *float64
}

// Client is an HTTP client for the aggregator API.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at a local server).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates an aggregator client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawPair is the aggregator's wire shape for one pair.
type rawPair struct {
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD    string   `json:"priceUsd"`
	MarketCap   *float64 `json:"marketCap"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	PriceChange struct {
		H1  *float64 `json:"h1"`
		H6  *float64 `json:"h6"`
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
}

func (rp rawPair) toPair() Pair {
	price, _ := strconv.ParseFloat(rp.PriceUSD, 64)
	return Pair{
		PairAddress:  rp.PairAddress,
		BaseSymbol:   rp.BaseToken.Symbol,
		BaseName:     rp.BaseToken.Name,
		PriceUSD:     price,
		MarketCap:    rp.MarketCap,
		LiquidityUSD: rp.Liquidity.USD,
		ChangeH1:     rp.PriceChange.H1,
		ChangeH6:     rp.PriceChange.H6,
		ChangeH24:    rp.PriceChange.H24,
	}
}

// GetPairs returns all known trading pairs for a token, unordered.
func (c *Client) GetPairs(ctx context.Context, mint string) ([]Pair, error) {
	var result struct {
		Pairs []rawPair `json:"pairs"`
	}
	if err := c.getJSON(ctx, "/latest/dex/tokens/"+mint, &result); err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(result.Pairs))
	for _, rp := range result.Pairs {
		pairs = append(pairs, rp.toPair())
	}
	return pairs, nil
}

// BestPair returns the pair with the highest reported liquidity, the most
// reliable quote for a token. Returns nil when the token has no pairs.
func BestPair(pairs []Pair) *Pair {
	var best *Pair
	for i := range pairs {
		if best == nil || pairs[i].LiquidityUSD > best.LiquidityUSD {
			best = &pairs[i]
		}
	}
	return best
}

// GetPrices returns spot prices and 24h change for a batch of mints, chunked
// to the per-call address limit. Tokens the aggregator does not know are
// simply absent from the result. A failed chunk drops its tokens and moves
// on; only a fully failed batch returns an error.
func (c *Client) GetPrices(ctx context.Context, mints []string) (map[string]domain.TokenPrice, error) {
	prices := make(map[string]domain.TokenPrice, len(mints))
	var lastErr error
	failed := 0
	chunks := 0

	for start := 0; start < len(mints); start += MaxAddressesPerCall {
		end := start + MaxAddressesPerCall
		if end > len(mints) {
			end = len(mints)
		}
		chunks++

		var result struct {
			Pairs []rawPair `json:"pairs"`
		}
		if err := c.getJSON(ctx, "/latest/dex/tokens/"+strings.Join(mints[start:end], ","), &result); err != nil {
			failed++
			lastErr = err
			continue
		}

		// Keep the highest-liquidity quote per token.
		bestLiq := make(map[string]float64)
		for _, rp := range result.Pairs {
			mint := rp.BaseToken.Address
			pair := rp.toPair()
			if liq, seen := bestLiq[mint]; seen && pair.LiquidityUSD <= liq {
				continue
			}
			bestLiq[mint] = pair.LiquidityUSD
			change := 0.0
			if pair.ChangeH24 != nil {
				change = *pair.ChangeH24
			}
			prices[mint] = domain.TokenPrice{
				PriceUSD:       pair.PriceUSD,
				PriceChange24h: change,
			}
		}
	}

	if chunks > 0 && failed == chunks {
		return nil, fmt.Errorf("all price batches failed: %w", lastErr)
	}
	return prices, nil
}

// GetTokenMetadata returns display metadata for a mint, derived from its most
// liquid pair. Falls back to a shortened address when the aggregator has
// nothing, so callers always get something displayable.
func (c *Client) GetTokenMetadata(ctx context.Context, mint string) domain.TokenMetadata {
	pairs, err := c.GetPairs(ctx, mint)
	if err == nil {
		if best := BestPair(pairs); best != nil && best.BaseSymbol != "" {
			return domain.TokenMetadata{Mint: mint, Symbol: best.BaseSymbol, Name: best.BaseName}
		}
	}
	return domain.TokenMetadata{Mint: mint, Symbol: ShortAddress(mint), Name: ShortAddress(mint)}
}

// ShortAddress shortens a mint for display: first 4 + ".." + last 4.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:4] + ".." + address[len(address)-4:]
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
