package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bllackjack/walletdash/registry"
	"github.com/bllackjack/walletdash/wallet"
)

var chainCmd = &cobra.Command{
	Use:   "chain [chain-id]",
	Short: "Show or switch the active chain",
	Long: `Show the active chain or switch to another supported chain.

Switching chains keeps the same wallet address but invalidates cached
balances and catalogs.

Examples:
  walletdash chain            # Show active chain and list supported ones
  walletdash chain 1          # Switch to Ethereum mainnet
  walletdash chain 100        # Switch to Gnosis`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChain,
}

func runChain(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	reg := registry.New()

	if len(args) == 0 {
		return showChains(manager, reg)
	}

	chainID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chain id: %s", args[0])
	}

	chain, ok := reg.Lookup(chainID)
	if !ok {
		return fmt.Errorf("unsupported chain %d. Run 'walletdash chain' to list supported chains", chainID)
	}

	if err := manager.SwitchChain(chainID); err != nil {
		return fmt.Errorf("failed to switch chain: %w", err)
	}

	fmt.Printf("✅ Switched to %s (%d), native asset %s\n",
		color.GreenString(chain.Name), chain.ChainID, chain.NativeSymbol)
	return nil
}

func showChains(manager *wallet.Manager, reg *registry.Registry) error {
	active := manager.ChainID()

	fmt.Println("🌐 Supported chains")
	fmt.Println()
	for _, id := range reg.ChainIDs() {
		c, _ := reg.Lookup(id)
		marker := "  "
		name := c.Name
		if id == active {
			marker = "▶ "
			name = color.GreenString(c.Name)
		}
		fmt.Printf("   %s%-20s chain %-10d native %s\n", marker, name, c.ChainID, c.NativeSymbol)
	}

	if _, ok := reg.Lookup(active); !ok {
		fmt.Println()
		fmt.Printf("⚠️  Active chain %d is not supported\n", active)
	}

	return nil
}
