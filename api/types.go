package api

// TokenInfo is one entry of the external token metadata list.
type TokenInfo struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// tokenListResponse is the token metadata document: a "tokens" object keyed
// by contract address.
type tokenListResponse struct {
	Tokens map[string]TokenInfo `json:"tokens"`
}

// balanceResponse is the per-token balance service reply.
type balanceResponse struct {
	Balance string `json:"balance"`
}
