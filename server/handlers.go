package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/catalog"
	"github.com/bllackjack/walletdash/transfer"
)

type accountView struct {
	Address      string `json:"address,omitempty"`
	Connected    bool   `json:"connected"`
	ChainID      uint64 `json:"chainId"`
	ChainName    string `json:"chainName"`
	NativeSymbol string `json:"nativeSymbol"`
}

type balanceView struct {
	Asset     string `json:"asset"`
	Symbol    string `json:"symbol"`
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

type holdingsView struct {
	Entries  []balanceView `json:"entries"`
	Degraded bool          `json:"degraded"`
	Failed   int           `json:"failed"`
}

type tokenView struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

type transferRequest struct {
	Asset     string `json:"asset"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type transferView struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	TxHash       string `json:"txHash,omitempty"`
	RejectReason string `json:"rejectReason,omitempty"`
	ErrorKind    string `json:"errorKind,omitempty"`
	ErrorDetail  string `json:"errorDetail,omitempty"`
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	account := s.wallet.Account()
	chainID := s.wallet.ChainID()

	view := accountView{
		Connected:    account.Connected,
		ChainID:      chainID,
		ChainName:    "Unknown",
		NativeSymbol: s.reg.NativeSymbol(chainID),
	}
	if account.Connected {
		view.Address = account.Address.Hex()
	}
	if c, ok := s.reg.Lookup(chainID); ok {
		view.ChainName = c.Name
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	type chainView struct {
		ChainID      uint64 `json:"chainId"`
		Name         string `json:"name"`
		NativeSymbol string `json:"nativeSymbol"`
	}
	var views []chainView
	for _, id := range s.reg.ChainIDs() {
		c, _ := s.reg.Lookup(id)
		views = append(views, chainView{ChainID: c.ChainID, Name: c.Name, NativeSymbol: c.NativeSymbol})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	asset, err := s.resolveAsset(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.balances.GetBalance(r.Context(), asset)
	if err != nil {
		balanceLookups.WithLabelValues("error").Inc()
		if errors.Is(err, balance.ErrUnavailable) {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	balanceLookups.WithLabelValues("ok").Inc()
	s.writeJSON(w, http.StatusOK, s.balanceView(entry))
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalogFor(r.Context(), s.wallet.ChainID())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	holdings, err := s.balances.AllHoldings(r.Context(), cat)
	if err != nil {
		// Either no context is set, or it changed mid-sweep; the client
		// should retry against the new context.
		s.writeError(w, http.StatusConflict, err)
		return
	}

	view := holdingsView{Degraded: holdings.Degraded, Failed: holdings.Failed, Entries: []balanceView{}}
	for _, e := range holdings.Entries {
		view.Entries = append(view.Entries, s.balanceView(e))
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalogFor(r.Context(), s.wallet.ChainID())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	matched := cat.Search(r.URL.Query().Get("q"))
	views := make([]tokenView, 0, len(matched))
	for _, t := range matched {
		views = append(views, tokenView(t))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	asset, err := s.resolveAssetName(r.Context(), req.Asset)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	handle := s.dispatcher.Submit(r.Context(), s.wallet.ChainID(), transfer.Request{
		Asset:     asset,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	})

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("t-%d", s.nextID)
	s.handles[id] = handle
	s.mu.Unlock()

	transfersTotal.WithLabelValues(handle.Kind().String(), handle.Status().String()).Inc()
	s.writeJSON(w, http.StatusAccepted, s.transferView(id, handle))
}

func (s *Server) handleTransferStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	handle, ok := s.handles[id]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown transfer %q", id))
		return
	}

	s.writeJSON(w, http.StatusOK, s.transferView(id, handle))
}

// resolveAsset reads the asset selector from the query string.
func (s *Server) resolveAsset(r *http.Request) (balance.Asset, error) {
	return s.resolveAssetName(r.Context(), r.URL.Query().Get("asset"))
}

// resolveAssetName turns "native" or a contract address into an asset
// selector, using the catalog for token metadata.
func (s *Server) resolveAssetName(ctx context.Context, name string) (balance.Asset, error) {
	if name == "" || name == "native" {
		return balance.NativeAsset(), nil
	}

	cat, err := s.catalogFor(ctx, s.wallet.ChainID())
	if err != nil {
		return balance.Asset{}, err
	}
	token, ok := cat.ByAddress(name)
	if !ok {
		return balance.Asset{}, fmt.Errorf("unknown token %q on chain %d", name, s.wallet.ChainID())
	}
	return balance.TokenAsset(token), nil
}

func (s *Server) balanceView(e balance.Entry) balanceView {
	v := balanceView{Raw: "0", Formatted: e.Formatted}
	if e.Raw != nil {
		v.Raw = e.Raw.String()
	}
	if e.Asset.Native {
		v.Asset = "native"
		v.Symbol = s.reg.NativeSymbol(s.wallet.ChainID())
	} else {
		v.Asset = e.Asset.Token.Address
		v.Symbol = e.Asset.Token.Symbol
	}
	return v
}

func (s *Server) transferView(id string, h *transfer.Handle) transferView {
	v := transferView{
		ID:     id,
		Kind:   h.Kind().String(),
		Status: h.Status().String(),
	}
	if hash, ok := h.TxHash(); ok {
		v.TxHash = hash.Hex()
	}
	if reason := h.RejectReason(); reason != "" {
		v.RejectReason = string(reason)
	}
	if kind, detail := h.Failure(); kind != "" {
		v.ErrorKind = string(kind)
		v.ErrorDetail = detail
	}
	return v
}

// catalogFor fetches and caches the token catalog for a chain. A fetch
// failure is not cached, so a later request can recover.
func (s *Server) catalogFor(ctx context.Context, chainID uint64) (catalog.Catalog, error) {
	s.mu.RLock()
	cat, ok := s.catalogs[chainID]
	s.mu.RUnlock()
	if ok {
		return cat, nil
	}

	cat, err := s.catalogSvc.Fetch(ctx, chainID)
	if err != nil {
		catalogFetches.WithLabelValues("error").Inc()
		return catalog.Catalog{}, err
	}
	catalogFetches.WithLabelValues("ok").Inc()

	s.mu.Lock()
	s.catalogs[chainID] = cat
	s.mu.Unlock()
	return cat, nil
}

// DropCatalog forgets the cached catalog for a chain, typically after a
// chain switch.
func (s *Server) DropCatalog(chainID uint64) {
	s.mu.Lock()
	delete(s.catalogs, chainID)
	s.mu.Unlock()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
