package transfer_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/assert"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/catalog"
	"github.com/bllackjack/walletdash/registry"
	"github.com/bllackjack/walletdash/transfer"
)

var (
	recipient = "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6"
	usdc      = catalog.Token{
		Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
	}
	txHash = common.HexToHash("0xdeadbeef")
)

type fakeChain struct {
	mu          sync.Mutex
	nativeSends []*big.Int
	tokenSends  []*big.Int
	sendErr     error
	receiptErr  error
}

func (f *fakeChain) SendNative(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.nativeSends = append(f.nativeSends, amount)
	return txHash, nil
}

func (f *fakeChain) SendToken(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.tokenSends = append(f.tokenSends, amount)
	return txHash, nil
}

func (f *fakeChain) WaitReceipt(ctx context.Context, hash common.Hash) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receiptErr
}

func (f *fakeChain) sends() (native, token int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nativeSends), len(f.tokenSends)
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]balance.Entry
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]balance.Entry)}
}

func (f *fakeCache) set(asset balance.Asset, raw *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[asset.Key()] = balance.Entry{Asset: asset, Raw: raw}
}

func (f *fakeCache) Cached(asset balance.Asset) (balance.Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[asset.Key()]
	return e, ok
}

func (f *fakeCache) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func (f *fakeCache) invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidated
}

func await(t *testing.T, h *transfer.Handle) transfer.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := h.Wait(ctx)
	assert.NoError(t, err)
	return status
}

func TestSubmitNativeHappyPath(t *testing.T) {
	chain := &fakeChain{}
	cache := newFakeCache()
	cache.set(balance.NativeAsset(), big.NewInt(2e18))

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     balance.NativeAsset(),
		Recipient: recipient,
		Amount:    "1.5",
	})

	status := await(t, h)
	assert.Equal(t, transfer.StatusSucceeded, status)
	assert.Equal(t, transfer.KindNative, h.Kind())

	hash, ok := h.TxHash()
	assert.True(t, ok)
	assert.Equal(t, txHash, hash)

	native, token := chain.sends()
	assert.Equal(t, 1, native)
	assert.Equal(t, 0, token)
	assert.Equal(t, "1500000000000000000", chain.nativeSends[0].String())
	assert.Equal(t, 1, cache.invalidations())
}

func TestSubmitNativeHistory(t *testing.T) {
	chain := &fakeChain{}
	cache := newFakeCache()
	cache.set(balance.NativeAsset(), big.NewInt(2e18))

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     balance.NativeAsset(),
		Recipient: recipient,
		Amount:    "0.1",
	})
	await(t, h)

	want := []transfer.Status{
		transfer.StatusValidating,
		transfer.StatusDispatched,
		transfer.StatusPending,
		transfer.StatusConfirming,
		transfer.StatusSucceeded,
	}
	history := h.History()
	assert.Equal(t, len(want), len(history))
	for i := range want {
		assert.Equal(t, want[i], history[i])
	}
}

func TestSubmitTokenRoutesToTokenPipeline(t *testing.T) {
	chain := &fakeChain{}
	cache := newFakeCache()
	asset := balance.TokenAsset(usdc)
	cache.set(asset, big.NewInt(50000000)) // 50 USDC

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     asset,
		Recipient: recipient,
		Amount:    "25",
	})

	status := await(t, h)
	assert.Equal(t, transfer.StatusSucceeded, status)
	assert.Equal(t, transfer.KindToken, h.Kind())

	native, token := chain.sends()
	assert.Equal(t, 0, native)
	assert.Equal(t, 1, token)
	assert.Equal(t, "25000000", chain.tokenSends[0].String())

	nativeStatus, tokenStatus := h.Pipelines()
	assert.Equal(t, transfer.StatusIdle, nativeStatus)
	assert.Equal(t, transfer.StatusSucceeded, tokenStatus)
}

func TestSubmitRejections(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		amount    string
		cached    *big.Int
		want      transfer.RejectReason
	}{
		{"missing recipient", "", "1", big.NewInt(2e18), transfer.ReasonMissingField},
		{"missing amount", recipient, "", big.NewInt(2e18), transfer.ReasonMissingField},
		{"malformed address", "0x1234", "1", big.NewInt(2e18), transfer.ReasonInvalidAddress},
		{"garbage amount", recipient, "abc", big.NewInt(2e18), transfer.ReasonInvalidAmount},
		{"zero amount", recipient, "0", big.NewInt(2e18), transfer.ReasonInvalidAmount},
		{"negative amount", recipient, "-1", big.NewInt(2e18), transfer.ReasonInvalidAmount},
		{"amount over balance", recipient, "3", big.NewInt(2e18), transfer.ReasonInsufficientBalance},
		{"no cached balance", recipient, "1", nil, transfer.ReasonInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &fakeChain{}
			cache := newFakeCache()
			if tt.cached != nil {
				cache.set(balance.NativeAsset(), tt.cached)
			}

			d := transfer.New(chain, cache, registry.New())
			h := d.Submit(context.Background(), 1, transfer.Request{
				Asset:     balance.NativeAsset(),
				Recipient: tt.recipient,
				Amount:    tt.amount,
			})

			assert.Equal(t, transfer.StatusRejected, h.Status())
			assert.Equal(t, tt.want, h.RejectReason())

			// A rejection dispatches nothing.
			native, token := chain.sends()
			assert.Equal(t, 0, native)
			assert.Equal(t, 0, token)
		})
	}
}

func TestSubmitAmountEqualToBalancePasses(t *testing.T) {
	chain := &fakeChain{}
	cache := newFakeCache()
	cache.set(balance.NativeAsset(), big.NewInt(1e18))

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     balance.NativeAsset(),
		Recipient: recipient,
		Amount:    "1",
	})

	assert.Equal(t, transfer.StatusSucceeded, await(t, h))
}

func TestSubmitDispatchErrorClassified(t *testing.T) {
	chain := &fakeChain{sendErr: errors.New("MetaMask Tx Signature: User denied transaction signature")}
	cache := newFakeCache()
	cache.set(balance.NativeAsset(), big.NewInt(2e18))

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     balance.NativeAsset(),
		Recipient: recipient,
		Amount:    "1",
	})

	assert.Equal(t, transfer.StatusFailed, h.Status())
	kind, detail := h.Failure()
	assert.Equal(t, transfer.ErrKindUserRejected, kind)
	assert.NotEqual(t, "", detail)

	// A failed dispatch moved nothing on chain, so the cache stays intact.
	assert.Equal(t, 0, cache.invalidations())
	_, ok := h.TxHash()
	assert.False(t, ok)
}

func TestSubmitRevertOnConfirm(t *testing.T) {
	chain := &fakeChain{receiptErr: errors.New("execution reverted: transaction failed")}
	cache := newFakeCache()
	asset := balance.TokenAsset(usdc)
	cache.set(asset, big.NewInt(50000000))

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     asset,
		Recipient: recipient,
		Amount:    "10",
	})

	assert.Equal(t, transfer.StatusFailed, await(t, h))
	kind, _ := h.Failure()
	assert.Equal(t, transfer.ErrKindRevert, kind)
	assert.Equal(t, 0, cache.invalidations())

	// The hash was issued before confirmation failed and stays observable.
	_, ok := h.TxHash()
	assert.True(t, ok)
}

func TestSubmitZeroTokenBalanceRejected(t *testing.T) {
	chain := &fakeChain{}
	cache := newFakeCache()
	asset := balance.TokenAsset(usdc)
	cache.set(asset, big.NewInt(0))

	d := transfer.New(chain, cache, registry.New())
	h := d.Submit(context.Background(), 1, transfer.Request{
		Asset:     asset,
		Recipient: recipient,
		Amount:    "1",
	})

	assert.Equal(t, transfer.StatusRejected, h.Status())
	assert.Equal(t, transfer.ReasonInsufficientBalance, h.RejectReason())
}
