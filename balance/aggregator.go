package balance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bllackjack/walletdash/catalog"
	"github.com/bllackjack/walletdash/registry"
)

// ErrUnavailable reports that no balance can be resolved because the account
// or chain context is missing. Distinct from a true zero balance.
var ErrUnavailable = errors.New("balance unavailable: no account or chain context")

// ErrStaleContext reports that the account or chain changed while a holdings
// sweep was in flight; the sweep's results were discarded.
var ErrStaleContext = errors.New("holdings sweep discarded: context changed mid-flight")

const defaultFanOut = 8

// Reader resolves balances against the chain itself.
type Reader interface {
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
}

// Fallback resolves a token balance through the external balance service
// when the chain client cannot serve the lookup.
type Fallback interface {
	TokenBalance(ctx context.Context, chainID uint64, tokenAddress, walletAddress string) (*big.Int, error)
}

// Snapshot identifies the (account, chain) context a lookup was started
// under. Results arriving under a different snapshot are discarded.
type Snapshot struct {
	Account common.Address
	ChainID uint64
}

func (s Snapshot) valid() bool {
	return s.Account != (common.Address{}) && s.ChainID != 0
}

// Aggregator resolves balances for the active (account, chain) context and
// caches them per asset. The cache is last-writer-wins; writes made under a
// superseded context are dropped.
type Aggregator struct {
	reader   Reader
	fallback Fallback
	reg      *registry.Registry
	fanOut   int

	mu    sync.RWMutex
	snap  Snapshot
	cache map[string]Entry
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFallback installs the external balance service used when the chain
// client errors on a token lookup.
func WithFallback(f Fallback) Option {
	return func(a *Aggregator) { a.fallback = f }
}

// WithFanOut bounds the number of concurrent per-token lookups in a holdings
// sweep.
func WithFanOut(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.fanOut = n
		}
	}
}

// New creates an Aggregator reading through the given chain client.
func New(reader Reader, reg *registry.Registry, opts ...Option) *Aggregator {
	a := &Aggregator{
		reader: reader,
		reg:    reg,
		fanOut: defaultFanOut,
		cache:  make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetContext installs the active account and chain. Any change drops the
// cache: balances from another context are meaningless.
func (a *Aggregator) SetContext(account common.Address, chainID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := Snapshot{Account: account, ChainID: chainID}
	if next != a.snap {
		a.snap = next
		a.cache = make(map[string]Entry)
	}
}

// Invalidate drops all cached balances. The dispatcher calls this after a
// transfer reaches a terminal confirmed state.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string]Entry)
}

func (a *Aggregator) snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Cached returns the cached entry for an asset, if present under the current
// context.
func (a *Aggregator) Cached(asset Asset) (Entry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.cache[asset.Key()]
	return e, ok
}

// GetBalance resolves the balance of one asset for the active context. The
// entry is cached unless the context changed while the lookup was in flight.
func (a *Aggregator) GetBalance(ctx context.Context, asset Asset) (Entry, error) {
	snap := a.snapshot()
	if !snap.valid() {
		return Entry{}, ErrUnavailable
	}

	entry, err := a.lookup(ctx, snap, asset)
	if err != nil {
		return Entry{}, err
	}

	a.store(snap, entry)
	return entry, nil
}

// lookup resolves a single asset balance under a fixed snapshot.
func (a *Aggregator) lookup(ctx context.Context, snap Snapshot, asset Asset) (Entry, error) {
	if asset.Native {
		raw, err := a.reader.NativeBalance(ctx, snap.Account)
		if err != nil {
			return Entry{}, fmt.Errorf("native balance: %w", err)
		}
		decimals := uint8(18)
		if c, ok := a.reg.Lookup(snap.ChainID); ok {
			decimals = c.NativeDecimals
		}
		return Entry{Asset: asset, Raw: raw, Formatted: formatUnits(raw, decimals)}, nil
	}

	tokenAddr := common.HexToAddress(asset.Token.Address)
	raw, err := a.reader.TokenBalance(ctx, tokenAddr, snap.Account)
	if err != nil && a.fallback != nil {
		raw, err = a.fallback.TokenBalance(ctx, snap.ChainID, asset.Token.Address, snap.Account.Hex())
	}
	if err != nil {
		return Entry{}, fmt.Errorf("token balance %s: %w", asset.Token.Symbol, err)
	}
	return Entry{Asset: asset, Raw: raw, Formatted: formatUnits(raw, asset.Token.Decimals)}, nil
}

// store caches an entry, discarding the write if the context moved on while
// the lookup ran.
func (a *Aggregator) store(snap Snapshot, entry Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snap != snap {
		return
	}
	a.cache[entry.Asset.Key()] = entry
}

// Holdings is the result of a full catalog sweep. Entries appear in catalog
// insertion order and hold strictly positive balances only. Degraded is set
// when some per-token lookups failed and were dropped.
type Holdings struct {
	Entries  []Entry
	Degraded bool
	Failed   int
}

// SweepOption configures one holdings sweep.
type SweepOption func(*sweepConfig)

type sweepConfig struct {
	progress func(done, total int)
}

// WithProgress reports sweep completion counts, for progress display.
func WithProgress(fn func(done, total int)) SweepOption {
	return func(c *sweepConfig) { c.progress = fn }
}

// AllHoldings looks up every token in the catalog for the active context,
// concurrently but bounded by the fan-out limit. Lookups that error are
// dropped from the result and counted; they do not fail the sweep. If the
// account or chain changes while the sweep runs, the whole result is
// discarded and ErrStaleContext returned.
func (a *Aggregator) AllHoldings(ctx context.Context, cat catalog.Catalog, opts ...SweepOption) (Holdings, error) {
	var cfg sweepConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	snap := a.snapshot()
	if !snap.valid() {
		return Holdings{}, ErrUnavailable
	}

	total := len(cat.Tokens)
	results := make([]Entry, total)
	failed := make([]bool, total)

	var (
		wg   sync.WaitGroup
		done sync.Mutex
		n    int
	)
	sem := make(chan struct{}, a.fanOut)

	for i, token := range cat.Tokens {
		wg.Add(1)
		go func(i int, token catalog.Token) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			entry, err := a.lookup(ctx, snap, TokenAsset(token))
			if err != nil {
				failed[i] = true
			} else {
				results[i] = entry
			}

			if cfg.progress != nil {
				done.Lock()
				n++
				cfg.progress(n, total)
				done.Unlock()
			}
		}(i, token)
	}
	wg.Wait()

	// Stale-response guard: the sweep was started under snap; if the
	// context moved on, nothing from this sweep may be observed.
	if a.snapshot() != snap {
		return Holdings{}, ErrStaleContext
	}

	var holdings Holdings
	for i := range results {
		if failed[i] {
			holdings.Failed++
			continue
		}
		e := results[i]
		if e.Raw == nil || e.Raw.Sign() <= 0 {
			continue
		}
		holdings.Entries = append(holdings.Entries, e)
		a.store(snap, e)
	}
	holdings.Degraded = holdings.Failed > 0

	return holdings, nil
}
