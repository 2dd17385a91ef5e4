package registry

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain describes a supported network: its native asset and the well-known
// token contracts the dashboard always tracks, whether or not the external
// token list mentions them.
type Chain struct {
	ChainID        uint64
	Name           string
	NativeSymbol   string
	NativeDecimals uint8
	ExplorerURL    string

	// Stablecoin is the fiat-pegged token for the chain (USDC everywhere).
	Stablecoin Token

	// StakedAsset is the chain's staked-asset token, if one exists. Check
	// HasStakedAsset before using it.
	StakedAsset    Token
	HasStakedAsset bool
}

// Token is a well-known token entry compiled into the registry.
type Token struct {
	Address  common.Address
	Symbol   string
	Name     string
	Decimals uint8
}

// Registry is an immutable chain table. Construct it once with New and inject
// it; lookups for chains it does not know return ok=false rather than failing.
type Registry struct {
	chains map[uint64]Chain
}

// New builds the compiled-in chain table. The chain set matches the networks
// the dashboard connects to: Ethereum mainnet, Goerli, Sepolia and Gnosis.
func New() *Registry {
	chains := []Chain{
		{
			ChainID:        1,
			Name:           "Ethereum",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://etherscan.io",
			Stablecoin: Token{
				Address:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
				Symbol:   "USDC",
				Name:     "USD Coin",
				Decimals: 6,
			},
			StakedAsset: Token{
				Address:  common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0"),
				Symbol:   "wstETH",
				Name:     "Wrapped liquid staked Ether 2.0",
				Decimals: 18,
			},
			HasStakedAsset: true,
		},
		{
			ChainID:        5,
			Name:           "Goerli",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://goerli.etherscan.io",
			Stablecoin: Token{
				Address:  common.HexToAddress("0x07865c6E87B9F70255377e024ace6630C1Eaa37F"),
				Symbol:   "USDC",
				Name:     "USD Coin",
				Decimals: 6,
			},
		},
		{
			ChainID:        11155111,
			Name:           "Sepolia",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			ExplorerURL:    "https://sepolia.etherscan.io",
			Stablecoin: Token{
				Address:  common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"),
				Symbol:   "USDC",
				Name:     "USD Coin",
				Decimals: 6,
			},
		},
		{
			ChainID:        100,
			Name:           "Gnosis",
			NativeSymbol:   "xDAI",
			NativeDecimals: 18,
			ExplorerURL:    "https://gnosisscan.io",
			Stablecoin: Token{
				Address:  common.HexToAddress("0xDDAfbb505ad214D7b80b1f830fcCc89B60fb7A83"),
				Symbol:   "USDC",
				Name:     "USD Coin on Gnosis",
				Decimals: 6,
			},
			StakedAsset: Token{
				Address:  common.HexToAddress("0xaf204776c7245bF4147c2612BF6e5972Ee483701"),
				Symbol:   "sDAI",
				Name:     "Savings xDAI",
				Decimals: 18,
			},
			HasStakedAsset: true,
		},
	}

	m := make(map[uint64]Chain, len(chains))
	for _, c := range chains {
		m[c.ChainID] = c
	}
	return &Registry{chains: m}
}

// Lookup returns the chain entry for the given chain ID. The second return
// value is false for chains the registry does not know; callers must handle
// absence explicitly.
func (r *Registry) Lookup(chainID uint64) (Chain, bool) {
	c, ok := r.chains[chainID]
	return c, ok
}

// NativeSymbol returns the native asset symbol for the chain, or "Unknown"
// for unregistered chains.
func (r *Registry) NativeSymbol(chainID uint64) string {
	if c, ok := r.chains[chainID]; ok {
		return c.NativeSymbol
	}
	return "Unknown"
}

// ChainIDs returns the registered chain IDs in ascending order.
func (r *Registry) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids
}

// WellKnownTokens returns the compiled-in tokens for the chain: the
// stablecoin always, the staked asset where the chain has one.
func (r *Registry) WellKnownTokens(chainID uint64) []Token {
	c, ok := r.chains[chainID]
	if !ok {
		return nil
	}
	tokens := []Token{c.Stablecoin}
	if c.HasStakedAsset {
		tokens = append(tokens, c.StakedAsset)
	}
	return tokens
}

// SameAddress compares two contract addresses case-insensitively in their
// hex form. Token lists are inconsistent about checksummed casing.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "0x"), strings.TrimPrefix(b, "0x"))
}
