package api

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// FetchTokenList fetches the known-token metadata list for a chain. The full
// list is trusted to fit in memory; the service does not paginate. Entries
// are returned sorted by symbol so repeated fetches produce a stable order.
func (c *Client) FetchTokenList(ctx context.Context, chainID uint64) ([]TokenInfo, error) {
	url := fmt.Sprintf("%s/%d/tokens.json", c.tokenListBase, chainID)

	var result tokenListResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch token list: %w", err)
	}

	tokens := make([]TokenInfo, 0, len(result.Tokens))
	for addr, info := range result.Tokens {
		if info.Address == "" {
			info.Address = addr
		}
		tokens = append(tokens, info)
	}

	sort.Slice(tokens, func(i, j int) bool {
		si, sj := strings.ToLower(tokens[i].Symbol), strings.ToLower(tokens[j].Symbol)
		if si != sj {
			return si < sj
		}
		return tokens[i].Address < tokens[j].Address
	})

	return tokens, nil
}

// TokenBalance queries the per-token balance service for a single
// (token, wallet) pair. This is the fallback path used when the chain client
// cannot serve the lookup itself.
func (c *Client) TokenBalance(ctx context.Context, chainID uint64, tokenAddress, walletAddress string) (*big.Int, error) {
	url := fmt.Sprintf("%s/%d/balance?tokenAddress=%s&walletAddress=%s",
		c.balanceBase, chainID, tokenAddress, walletAddress)

	var result balanceResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch token balance: %w", err)
	}

	balance, ok := new(big.Int).SetString(result.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance value: %q", result.Balance)
	}

	return balance, nil
}
