package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/catalog"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check your balances on the active chain",
	Long: `Check your balances on the active chain.

By default this shows the native balance and the chain's well-known tokens.
With --all, the full token catalog is swept concurrently and every token
you hold a positive balance of is listed.

Examples:
  walletdash balance         # Native + well-known tokens
  walletdash balance --all   # Sweep the full catalog`,
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().Bool("all", false, "sweep the full token catalog")
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	c, err := openCore(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	chainID := c.manager.ChainID()
	chain, _ := c.reg.Lookup(chainID)
	address, err := c.manager.Address()
	if err != nil {
		return err
	}

	fmt.Println("💰 Wallet Balances")
	fmt.Printf("🌐 Chain: %s (%d)\n", chain.Name, chainID)
	fmt.Printf("📬 Address: %s\n", address.Hex())
	fmt.Println()

	native, err := c.balances.GetBalance(ctx, balance.NativeAsset())
	if err != nil {
		fmt.Printf("❌ %s: Error - %v\n", chain.NativeSymbol, err)
	} else {
		fmt.Printf("🔷 %s: %s\n", chain.NativeSymbol, color.GreenString(native.Formatted))
	}

	allFlag, _ := cmd.Flags().GetBool("all")
	if allFlag {
		return sweepCatalog(ctx, c, chainID)
	}

	for _, token := range c.reg.WellKnownTokens(chainID) {
		asset := balance.TokenAsset(catalog.Token{
			Address:  token.Address.Hex(),
			Symbol:   token.Symbol,
			Name:     token.Name,
			Decimals: token.Decimals,
		})
		entry, err := c.balances.GetBalance(ctx, asset)
		if err != nil {
			fmt.Printf("❌ %s: Error - %v\n", token.Symbol, err)
			continue
		}
		fmt.Printf("🪙 %s: %s\n", token.Symbol, color.GreenString(entry.Formatted))
	}

	return nil
}

// sweepCatalog fetches the token catalog and resolves every token balance,
// printing the tokens held.
func sweepCatalog(ctx context.Context, c *core, chainID uint64) error {
	fmt.Println()
	fmt.Println("📊 Sweeping token catalog...")

	cat, err := c.catalogSvc.Fetch(ctx, chainID)
	if err != nil {
		return fmt.Errorf("failed to fetch token catalog: %w", err)
	}

	bar := progressbar.NewOptions(len(cat.Tokens),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan]Checking tokens...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)

	holdings, err := c.balances.AllHoldings(ctx, cat, balance.WithProgress(func(done, total int) {
		_ = bar.Set(done)
	}))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("holdings sweep failed: %w", err)
	}

	if len(holdings.Entries) == 0 {
		fmt.Println("ℹ️  No token balances found")
	}
	for _, e := range holdings.Entries {
		fmt.Printf("🪙 %s: %s\n", e.Asset.Token.Symbol, color.GreenString(e.Formatted))
	}
	if holdings.Degraded {
		fmt.Printf("⚠️  %s\n", color.YellowString("%d token lookups failed; the list may be incomplete", holdings.Failed))
	}

	return nil
}
