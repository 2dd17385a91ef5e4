package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zeebo/assert"

	"github.com/bllackjack/walletdash/api"
)

func TestFetchTokenList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1/tokens.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tokens": {
				"0x6b175474e89094c44da98b954eedeac495271d0f": {
					"symbol": "DAI", "name": "Dai Stablecoin", "decimals": 18
				},
				"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {
					"symbol": "USDC", "name": "USD Coin", "decimals": 6,
					"address": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
				}
			}
		}`))
	}))
	defer srv.Close()

	client := api.NewClient(api.WithTokenListBaseURL(srv.URL))

	tokens, err := client.FetchTokenList(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tokens))

	// Sorted by symbol; the address falls back to the map key when the entry
	// omits it.
	assert.Equal(t, "DAI", tokens[0].Symbol)
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", tokens[0].Address)
	assert.Equal(t, "USDC", tokens[1].Symbol)
	assert.Equal(t, uint8(6), tokens[1].Decimals)
}

func TestFetchTokenListServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := api.NewClient(api.WithTokenListBaseURL(srv.URL))

	_, err := client.FetchTokenList(context.Background(), 1)
	assert.Error(t, err)
}

func TestTokenBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1/balance", r.URL.Path)
		assert.Equal(t, "0xtoken", r.URL.Query().Get("tokenAddress"))
		assert.Equal(t, "0xwallet", r.URL.Query().Get("walletAddress"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance": "123450000"}`))
	}))
	defer srv.Close()

	client := api.NewClient(api.WithBalanceBaseURL(srv.URL))

	balance, err := client.TokenBalance(context.Background(), 1, "0xtoken", "0xwallet")
	assert.NoError(t, err)
	assert.Equal(t, "123450000", balance.String())
}

func TestTokenBalanceMalformedValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"balance": "not-a-number"}`))
	}))
	defer srv.Close()

	client := api.NewClient(api.WithBalanceBaseURL(srv.URL))

	_, err := client.TokenBalance(context.Background(), 1, "0xtoken", "0xwallet")
	assert.Error(t, err)
}
