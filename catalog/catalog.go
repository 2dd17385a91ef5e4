package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/bllackjack/walletdash/api"
	"github.com/bllackjack/walletdash/registry"
)

// Token is one descriptor in a chain's catalog. Descriptors are immutable
// once fetched.
type Token struct {
	Address  string
	Symbol   string
	Name     string
	Decimals uint8
}

// Catalog is the set of known token descriptors for one chain, in a stable
// order.
type Catalog struct {
	ChainID uint64
	Tokens  []Token
}

// Lister fetches the raw token metadata list for a chain.
type Lister interface {
	FetchTokenList(ctx context.Context, chainID uint64) ([]api.TokenInfo, error)
}

// Service builds catalogs from the external token list, guaranteeing the
// registry's well-known tokens are present even when the list omits them.
type Service struct {
	lister Lister
	reg    *registry.Registry
}

// NewService creates a catalog service backed by the given lister.
func NewService(lister Lister, reg *registry.Registry) *Service {
	return &Service{lister: lister, reg: reg}
}

// Fetch retrieves the catalog for a chain. On transport failure it returns an
// empty catalog together with the error; the caller decides how to degrade.
// There is no automatic retry.
func (s *Service) Fetch(ctx context.Context, chainID uint64) (Catalog, error) {
	cat := Catalog{ChainID: chainID}

	infos, err := s.lister.FetchTokenList(ctx, chainID)
	if err != nil {
		return cat, fmt.Errorf("catalog fetch for chain %d: %w", chainID, err)
	}

	cat.Tokens = make([]Token, 0, len(infos)+2)
	for _, info := range infos {
		cat.Tokens = append(cat.Tokens, Token{
			Address:  info.Address,
			Symbol:   info.Symbol,
			Name:     info.Name,
			Decimals: info.Decimals,
		})
	}

	cat.Tokens = mergeWellKnown(cat.Tokens, s.reg.WellKnownTokens(chainID))
	return cat, nil
}

// mergeWellKnown appends registry tokens missing from the fetched list,
// de-duplicating by contract address case-insensitively.
func mergeWellKnown(tokens []Token, wellKnown []registry.Token) []Token {
	for _, wk := range wellKnown {
		found := false
		for _, t := range tokens {
			if registry.SameAddress(t.Address, wk.Address.Hex()) {
				found = true
				break
			}
		}
		if !found {
			tokens = append(tokens, Token{
				Address:  wk.Address.Hex(),
				Symbol:   wk.Symbol,
				Name:     wk.Name,
				Decimals: wk.Decimals,
			})
		}
	}
	return tokens
}

// Search filters the catalog by case-insensitive substring match on symbol or
// name. An empty query returns the catalog's token set unmodified. Pure, no
// I/O.
func (c Catalog) Search(query string) []Token {
	if query == "" {
		return c.Tokens
	}

	q := strings.ToLower(query)
	var matched []Token
	for _, t := range c.Tokens {
		if strings.Contains(strings.ToLower(t.Symbol), q) ||
			strings.Contains(strings.ToLower(t.Name), q) {
			matched = append(matched, t)
		}
	}
	return matched
}

// ByAddress finds a descriptor by contract address, case-insensitively.
func (c Catalog) ByAddress(address string) (Token, bool) {
	for _, t := range c.Tokens {
		if registry.SameAddress(t.Address, address) {
			return t, true
		}
	}
	return Token{}, false
}
