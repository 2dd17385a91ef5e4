package balance_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/assert"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/catalog"
	"github.com/bllackjack/walletdash/registry"
)

var (
	account  = common.HexToAddress("0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6")
	usdcAddr = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

type fakeReader struct {
	native      *big.Int
	nativeErr   error
	balances    map[common.Address]*big.Int
	errs        map[common.Address]error
	onTokenRead func(token common.Address)
}

func (f *fakeReader) NativeBalance(ctx context.Context, acct common.Address) (*big.Int, error) {
	return f.native, f.nativeErr
}

func (f *fakeReader) TokenBalance(ctx context.Context, token, acct common.Address) (*big.Int, error) {
	if f.onTokenRead != nil {
		f.onTokenRead(token)
	}
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	if b, ok := f.balances[token]; ok {
		return b, nil
	}
	return big.NewInt(0), nil
}

type fakeFallback struct {
	balance *big.Int
	err     error
	calls   int
}

func (f *fakeFallback) TokenBalance(ctx context.Context, chainID uint64, tokenAddress, walletAddress string) (*big.Int, error) {
	f.calls++
	return f.balance, f.err
}

func eth(whole int64) *big.Int {
	wei := new(big.Int).SetInt64(whole)
	return wei.Mul(wei, big.NewInt(1e18))
}

func TestGetBalanceWithoutContext(t *testing.T) {
	agg := balance.New(&fakeReader{}, registry.New())

	_, err := agg.GetBalance(context.Background(), balance.NativeAsset())
	assert.True(t, errors.Is(err, balance.ErrUnavailable))
}

func TestGetBalanceNativeFormatting(t *testing.T) {
	reader := &fakeReader{native: big.NewInt(1500000000000000000)}
	agg := balance.New(reader, registry.New())
	agg.SetContext(account, 1)

	entry, err := agg.GetBalance(context.Background(), balance.NativeAsset())
	assert.NoError(t, err)
	assert.Equal(t, "1.5", entry.Formatted)
	assert.Equal(t, "1500000000000000000", entry.Raw.String())
}

func TestGetBalanceCaches(t *testing.T) {
	reader := &fakeReader{native: eth(2)}
	agg := balance.New(reader, registry.New())
	agg.SetContext(account, 1)

	_, ok := agg.Cached(balance.NativeAsset())
	assert.False(t, ok)

	_, err := agg.GetBalance(context.Background(), balance.NativeAsset())
	assert.NoError(t, err)

	entry, ok := agg.Cached(balance.NativeAsset())
	assert.True(t, ok)
	assert.Equal(t, "2", entry.Formatted)

	// A context change drops the cache.
	agg.SetContext(account, 100)
	_, ok = agg.Cached(balance.NativeAsset())
	assert.False(t, ok)
}

func TestGetBalanceTokenFallback(t *testing.T) {
	token := catalog.Token{Address: usdcAddr, Symbol: "USDC", Decimals: 6}
	reader := &fakeReader{errs: map[common.Address]error{
		common.HexToAddress(usdcAddr): errors.New("rpc down"),
	}}
	fallback := &fakeFallback{balance: big.NewInt(25000000)}

	agg := balance.New(reader, registry.New(), balance.WithFallback(fallback))
	agg.SetContext(account, 1)

	entry, err := agg.GetBalance(context.Background(), balance.TokenAsset(token))
	assert.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
	assert.Equal(t, "25", entry.Formatted)
}

func TestGetBalanceTokenBothPathsFail(t *testing.T) {
	token := catalog.Token{Address: usdcAddr, Symbol: "USDC", Decimals: 6}
	reader := &fakeReader{errs: map[common.Address]error{
		common.HexToAddress(usdcAddr): errors.New("rpc down"),
	}}
	fallback := &fakeFallback{err: errors.New("service down")}

	agg := balance.New(reader, registry.New(), balance.WithFallback(fallback))
	agg.SetContext(account, 1)

	_, err := agg.GetBalance(context.Background(), balance.TokenAsset(token))
	assert.Error(t, err)
}

func sweepCatalog() catalog.Catalog {
	return catalog.Catalog{ChainID: 1, Tokens: []catalog.Token{
		{Address: "0x0000000000000000000000000000000000000001", Symbol: "AAA", Decimals: 18},
		{Address: "0x0000000000000000000000000000000000000002", Symbol: "BBB", Decimals: 18},
		{Address: "0x0000000000000000000000000000000000000003", Symbol: "CCC", Decimals: 18},
		{Address: "0x0000000000000000000000000000000000000004", Symbol: "DDD", Decimals: 18},
	}}
}

func TestAllHoldingsOrderAndFiltering(t *testing.T) {
	reader := &fakeReader{balances: map[common.Address]*big.Int{
		common.HexToAddress("0x0000000000000000000000000000000000000001"): eth(1),
		common.HexToAddress("0x0000000000000000000000000000000000000003"): eth(3),
		// BBB and DDD stay zero and must be filtered out.
	}}
	agg := balance.New(reader, registry.New(), balance.WithFanOut(2))
	agg.SetContext(account, 1)

	holdings, err := agg.AllHoldings(context.Background(), sweepCatalog())
	assert.NoError(t, err)
	assert.False(t, holdings.Degraded)

	// Catalog insertion order survives the concurrent sweep.
	assert.Equal(t, 2, len(holdings.Entries))
	assert.Equal(t, "AAA", holdings.Entries[0].Asset.Token.Symbol)
	assert.Equal(t, "CCC", holdings.Entries[1].Asset.Token.Symbol)
}

func TestAllHoldingsDegraded(t *testing.T) {
	reader := &fakeReader{
		balances: map[common.Address]*big.Int{
			common.HexToAddress("0x0000000000000000000000000000000000000001"): eth(1),
		},
		errs: map[common.Address]error{
			common.HexToAddress("0x0000000000000000000000000000000000000002"): errors.New("rpc down"),
		},
	}
	agg := balance.New(reader, registry.New())
	agg.SetContext(account, 1)

	holdings, err := agg.AllHoldings(context.Background(), sweepCatalog())
	assert.NoError(t, err)
	assert.True(t, holdings.Degraded)
	assert.Equal(t, 1, holdings.Failed)
	assert.Equal(t, 1, len(holdings.Entries))
}

func TestAllHoldingsStaleContext(t *testing.T) {
	reader := &fakeReader{}
	agg := balance.New(reader, registry.New())
	agg.SetContext(account, 1)

	// Switch the account away while the sweep is mid-flight.
	other := common.HexToAddress("0x0000000000000000000000000000000000000bad")
	reader.onTokenRead = func(token common.Address) {
		agg.SetContext(other, 1)
	}

	_, err := agg.AllHoldings(context.Background(), sweepCatalog())
	assert.True(t, errors.Is(err, balance.ErrStaleContext))
}

func TestAllHoldingsWithoutContext(t *testing.T) {
	agg := balance.New(&fakeReader{}, registry.New())

	_, err := agg.AllHoldings(context.Background(), sweepCatalog())
	assert.True(t, errors.Is(err, balance.ErrUnavailable))
}

func TestAllHoldingsProgress(t *testing.T) {
	reader := &fakeReader{}
	agg := balance.New(reader, registry.New())
	agg.SetContext(account, 1)

	var last int
	_, err := agg.AllHoldings(context.Background(), sweepCatalog(), balance.WithProgress(func(done, total int) {
		last = done
		assert.Equal(t, 4, total)
	}))
	assert.NoError(t, err)
	assert.Equal(t, 4, last)
}
