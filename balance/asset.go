package balance

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bllackjack/walletdash/catalog"
)

// Asset selects either the chain's native asset or a token by contract
// address.
type Asset struct {
	Native bool
	Token  catalog.Token
}

// NativeAsset selects the chain's native asset.
func NativeAsset() Asset {
	return Asset{Native: true}
}

// TokenAsset selects a token by its catalog descriptor.
func TokenAsset(t catalog.Token) Asset {
	return Asset{Token: t}
}

// Key returns the cache key for the asset: "native", or the lowercased
// contract address.
func (a Asset) Key() string {
	if a.Native {
		return "native"
	}
	return strings.ToLower(a.Token.Address)
}

// Entry is one resolved balance: the raw base-unit value and its decimal
// display form.
type Entry struct {
	Asset     Asset
	Raw       *big.Int
	Formatted string
}

// formatUnits renders a base-unit value as a decimal string using the
// asset's precision.
func formatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
