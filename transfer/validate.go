package transfer

import (
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/bllackjack/walletdash/balance"
)

// Request is one transfer submission. It is immutable after dispatch; a new
// attempt requires a new Request.
type Request struct {
	Asset     balance.Asset
	Recipient string
	Amount    string
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// validate runs the checks in their fixed order and fails fast: the first
// failing check wins and nothing is dispatched. On success it returns the
// amount converted to the asset's base units.
//
// The balance check reads the cached entry only. A missing cache entry is
// treated as insufficient rather than optimistically allowed; an amount equal
// to the cached balance passes.
func validate(req Request, decimals uint8, cached func() (balance.Entry, bool)) (*big.Int, RejectReason) {
	if req.Recipient == "" || req.Amount == "" {
		return nil, ReasonMissingField
	}

	if !addressPattern.MatchString(req.Recipient) {
		return nil, ReasonInvalidAddress
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return nil, ReasonInvalidAmount
	}

	// Sub-base-unit dust is truncated away by the integer conversion.
	baseUnits := amount.Shift(int32(decimals)).BigInt()
	if baseUnits.Sign() <= 0 {
		return nil, ReasonInvalidAmount
	}

	entry, ok := cached()
	if !ok || entry.Raw == nil {
		return nil, ReasonInsufficientBalance
	}
	if baseUnits.Cmp(entry.Raw) > 0 {
		return nil, ReasonInsufficientBalance
	}

	return baseUnits, ""
}
