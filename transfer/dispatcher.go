package transfer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/registry"
)

// ChainClient exposes the two transaction primitives and the receipt await.
// Exactly one of the send primitives is invoked per request.
type ChainClient interface {
	// SendNative submits a native value transfer and returns its
	// transaction identifier.
	SendNative(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)

	// SendToken submits an ERC20 transfer(to, amount) contract call against
	// the token contract and returns its transaction identifier.
	SendToken(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error)

	// WaitReceipt blocks until the transaction's receipt is available. A nil
	// return means the transaction succeeded; a revert or transport problem
	// comes back as an error.
	WaitReceipt(ctx context.Context, hash common.Hash) error
}

// BalanceCache is the aggregator surface the dispatcher needs: cached reads
// for validation, and invalidation after a confirmed transfer.
type BalanceCache interface {
	Cached(asset balance.Asset) (balance.Entry, bool)
	Invalidate()
}

// Dispatcher validates transfer requests, dispatches exactly one underlying
// transaction per request, and tracks its confirmation. Dispatch-time and
// post-dispatch errors are terminal for the handle; there is no automatic
// retry.
type Dispatcher struct {
	client ChainClient
	cache  BalanceCache
	reg    *registry.Registry
}

// New creates a Dispatcher. The registry is injected, never reached for as
// ambient state.
func New(client ChainClient, cache BalanceCache, reg *registry.Registry) *Dispatcher {
	return &Dispatcher{client: client, cache: cache, reg: reg}
}

// Submit validates and dispatches a transfer for the given chain context,
// returning the handle that tracks it. Validation runs strictly in order
// before any dispatch side effect; a rejected request invokes no primitive.
// Confirmation continues in the background after Submit returns; observe it
// through the handle.
func (d *Dispatcher) Submit(ctx context.Context, chainID uint64, req Request) *Handle {
	kind := KindToken
	if req.Asset.Native {
		kind = KindNative
	}
	h := newHandle(kind)
	h.advance(StatusValidating)

	decimals := d.assetDecimals(chainID, req.Asset)
	amount, reason := validate(req, decimals, func() (balance.Entry, bool) {
		return d.cache.Cached(req.Asset)
	})
	if reason != "" {
		h.reject(reason)
		return h
	}

	h.advance(StatusDispatched)

	to := common.HexToAddress(req.Recipient)
	var (
		hash common.Hash
		err  error
	)
	if kind == KindNative {
		hash, err = d.client.SendNative(ctx, to, amount)
	} else {
		token := common.HexToAddress(req.Asset.Token.Address)
		hash, err = d.client.SendToken(ctx, token, to, amount)
	}
	if err != nil {
		// Cached balances stay untouched: nothing moved on chain.
		h.fail(classifyError(err), err.Error())
		return h
	}

	h.setTxHash(hash)
	h.advance(StatusPending)

	go d.confirm(h, hash)
	return h
}

// confirm awaits the receipt and settles the handle. It runs detached from
// the submitting call's context: a dashboard request finishing must not
// abandon an in-flight transaction.
func (d *Dispatcher) confirm(h *Handle, hash common.Hash) {
	h.advance(StatusConfirming)

	if err := d.client.WaitReceipt(context.Background(), hash); err != nil {
		h.fail(classifyError(err), err.Error())
		return
	}

	h.advance(StatusSucceeded)

	// The on-chain state moved; cached balances are now stale.
	d.cache.Invalidate()
}

func (d *Dispatcher) assetDecimals(chainID uint64, asset balance.Asset) uint8 {
	if !asset.Native {
		return asset.Token.Decimals
	}
	if c, ok := d.reg.Lookup(chainID); ok {
		return c.NativeDecimals
	}
	return 18
}
