package cmd

import (
	"context"
	"fmt"

	"github.com/bllackjack/walletdash/api"
	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/catalog"
	"github.com/bllackjack/walletdash/chains/ethereum"
	"github.com/bllackjack/walletdash/registry"
	"github.com/bllackjack/walletdash/transfer"
	"github.com/bllackjack/walletdash/wallet"
)

// core bundles the dashboard collaborators a command needs: the wallet,
// the chain registry, the chain client for the active chain, and the
// balance/catalog/transfer services built on top.
type core struct {
	manager    *wallet.Manager
	reg        *registry.Registry
	chain      *ethereum.Client
	catalogSvc *catalog.Service
	balances   *balance.Aggregator
	dispatcher *transfer.Dispatcher
}

// openCore wires the dashboard core against the wallet's active chain. The
// wallet must be unlocked. Callers close the core when done.
func openCore(ctx context.Context) (*core, error) {
	manager := wallet.NewManager()
	if !manager.IsUnlocked() {
		return nil, fmt.Errorf("wallet is locked. Run 'walletdash unlock' first")
	}

	reg := registry.New()
	chainID := manager.ChainID()
	if _, ok := reg.Lookup(chainID); !ok {
		return nil, fmt.Errorf("unsupported chain %d. Run 'walletdash chain' to pick one", chainID)
	}

	chain, err := ethereum.Dial(ctx, chainID, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain %d: %w", chainID, err)
	}

	client := api.NewClient()
	balances := balance.New(chain, reg, balance.WithFallback(client))
	c := &core{
		manager:    manager,
		reg:        reg,
		chain:      chain,
		catalogSvc: catalog.NewService(client, reg),
		balances:   balances,
		dispatcher: transfer.New(chain, balances, reg),
	}

	address, err := manager.Address()
	if err != nil {
		chain.Close()
		return nil, fmt.Errorf("failed to derive address: %w", err)
	}
	balances.SetContext(address, chainID)

	return c, nil
}

func (c *core) close() {
	c.chain.Close()
}
