package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [query]",
	Short: "Search the token catalog",
	Long: `Search the token catalog for the active chain.

The catalog combines the external token list with the chain's well-known
tokens. The query matches symbol and name, case-insensitively.

Examples:
  walletdash tokens          # List the full catalog
  walletdash tokens usdc     # Search for USDC`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	c, err := openCore(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	chainID := c.manager.ChainID()
	cat, err := c.catalogSvc.Fetch(ctx, chainID)
	if err != nil {
		return fmt.Errorf("failed to fetch token catalog: %w", err)
	}

	var query string
	if len(args) == 1 {
		query = args[0]
	}

	matched := cat.Search(query)
	if len(matched) == 0 {
		fmt.Printf("ℹ️  No tokens matching %q on chain %d\n", query, chainID)
		return nil
	}

	fmt.Printf("🪙 %d token(s) on chain %d", len(matched), chainID)
	if query != "" {
		fmt.Printf(" matching %q", query)
	}
	fmt.Println()
	fmt.Println()

	for _, t := range matched {
		fmt.Printf("   %s  %s (%s, %d decimals)\n",
			color.CyanString("%-10s", t.Symbol), t.Name, strings.ToLower(t.Address), t.Decimals)
	}

	return nil
}
