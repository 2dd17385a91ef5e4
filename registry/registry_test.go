package registry_test

import (
	"testing"

	"github.com/bllackjack/walletdash/registry"
)

func TestLookup(t *testing.T) {
	reg := registry.New()

	tests := []struct {
		chainID      uint64
		ok           bool
		name         string
		nativeSymbol string
	}{
		{1, true, "Ethereum", "ETH"},
		{5, true, "Goerli", "ETH"},
		{11155111, true, "Sepolia", "ETH"},
		{100, true, "Gnosis", "xDAI"},
		{42, false, "", ""},
	}

	for _, tt := range tests {
		c, ok := reg.Lookup(tt.chainID)
		if ok != tt.ok {
			t.Errorf("Lookup(%d) ok = %v, want %v", tt.chainID, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if c.Name != tt.name {
			t.Errorf("Lookup(%d) name = %q, want %q", tt.chainID, c.Name, tt.name)
		}
		if c.NativeSymbol != tt.nativeSymbol {
			t.Errorf("Lookup(%d) symbol = %q, want %q", tt.chainID, c.NativeSymbol, tt.nativeSymbol)
		}
	}
}

func TestNativeSymbolUnknownChain(t *testing.T) {
	reg := registry.New()
	if got := reg.NativeSymbol(42); got != "Unknown" {
		t.Errorf("NativeSymbol(42) = %q, want %q", got, "Unknown")
	}
}

func TestChainIDsSorted(t *testing.T) {
	reg := registry.New()
	ids := reg.ChainIDs()

	want := []uint64{1, 5, 100, 11155111}
	if len(ids) != len(want) {
		t.Fatalf("ChainIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ChainIDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestWellKnownTokens(t *testing.T) {
	reg := registry.New()

	// Every chain carries USDC; mainnet and Gnosis also carry a staked asset.
	for _, id := range reg.ChainIDs() {
		tokens := reg.WellKnownTokens(id)
		if len(tokens) == 0 || tokens[0].Symbol != "USDC" {
			t.Errorf("chain %d: first well-known token = %+v, want USDC", id, tokens)
		}
	}

	if tokens := reg.WellKnownTokens(1); len(tokens) != 2 || tokens[1].Symbol != "wstETH" {
		t.Errorf("chain 1 tokens = %+v, want USDC + wstETH", tokens)
	}
	if tokens := reg.WellKnownTokens(11155111); len(tokens) != 1 {
		t.Errorf("chain 11155111 tokens = %+v, want USDC only", tokens)
	}
	if tokens := reg.WellKnownTokens(42); tokens != nil {
		t.Errorf("chain 42 tokens = %+v, want nil", tokens)
	}
}

func TestSameAddress(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", true},
		{"A0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", true},
		{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "0x07865c6E87B9F70255377e024ace6630C1Eaa37F", false},
	}
	for _, tt := range tests {
		if got := registry.SameAddress(tt.a, tt.b); got != tt.want {
			t.Errorf("SameAddress(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
