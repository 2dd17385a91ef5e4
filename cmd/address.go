package cmd

import (
	"fmt"

	"github.com/bllackjack/walletdash/registry"
	"github.com/bllackjack/walletdash/wallet"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show your wallet address",
	Long: `Show your wallet's EVM address and the active chain.

The same address is used on every supported chain.`,
	RunE: runAddress,
}

func runAddress(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	reg := registry.New()

	if !manager.IsUnlocked() {
		return fmt.Errorf("wallet is locked. Run 'walletdash unlock' first")
	}

	address, err := manager.Address()
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	chainID := manager.ChainID()
	chainName := "Unknown"
	if c, ok := reg.Lookup(chainID); ok {
		chainName = c.Name
	}

	fmt.Println("📬 Wallet Address")
	fmt.Println()
	fmt.Printf("   %s\n", address.Hex())
	fmt.Println()
	fmt.Printf("🌐 Active chain: %s (%d)\n", chainName, chainID)

	return nil
}
