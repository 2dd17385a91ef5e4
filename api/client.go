package api

// API Client
//
// Files:
//   config.go - External service endpoints
//   types.go  - Struct definitions (token list, balance responses)
//   base.go   - Core client functionality (client struct, NewClient, helpers)
//   tokens.go - Token metadata list and per-token balance fallback
//
// Usage:
//   client := api.NewClient()  // from base.go
//   tokens, err := client.FetchTokenList(ctx, chainID)            // from tokens.go
//   bal, err := client.TokenBalance(ctx, chainID, token, wallet)  // from tokens.go
