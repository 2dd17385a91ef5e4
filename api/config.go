package api

// External service endpoints. The token list and balance services are keyed
// by chain ID in the URL path; neither requires authentication.
const (
	DefaultTokenListBaseURL = "https://tokens.1inch.io/v1.2"
	DefaultBalanceBaseURL   = "https://api.1inch.io/v5.0"
)
