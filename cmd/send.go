package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bllackjack/walletdash/balance"
	"github.com/bllackjack/walletdash/transfer"
)

var sendCmd = &cobra.Command{
	Use:   "send [asset] [amount] [address]",
	Short: "Send native currency or tokens",
	Long: `Send native currency or an ERC20 token on the active chain.

The asset is either "native", a token symbol from the catalog, or a token
contract address. The transfer is validated against your cached balance
before anything is signed, then tracked until its receipt lands.

Examples:
  walletdash send native 0.1 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  walletdash send usdc 25 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6`,
	Args: cobra.ExactArgs(3),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	c, err := openCore(ctx)
	if err != nil {
		return err
	}
	defer c.close()

	assetArg := strings.ToLower(args[0])
	amountStr := args[1]
	recipient := args[2]

	chainID := c.manager.ChainID()
	chain, _ := c.reg.Lookup(chainID)

	asset, err := resolveSendAsset(ctx, c, chainID, assetArg)
	if err != nil {
		return err
	}

	symbol := chain.NativeSymbol
	if !asset.Native {
		symbol = asset.Token.Symbol
	}

	// Prime the cache: validation checks the amount against the cached
	// balance.
	entry, err := c.balances.GetBalance(ctx, asset)
	if err != nil {
		return fmt.Errorf("failed to check balance: %w", err)
	}

	fmt.Printf("🔷 Sending %s %s to %s\n", amountStr, symbol, recipient)
	fmt.Printf("   Balance: %s %s\n", entry.Formatted, symbol)
	fmt.Println()

	if !confirmSend() {
		fmt.Println("❌ Transfer cancelled by user")
		return nil
	}

	handle := c.dispatcher.Submit(ctx, chainID, transfer.Request{
		Asset:     asset,
		Recipient: recipient,
		Amount:    amountStr,
	})

	if reason := handle.RejectReason(); reason != "" {
		return fmt.Errorf("transfer rejected: %s", reason)
	}

	if hash, ok := handle.TxHash(); ok {
		fmt.Printf("📝 Transaction: %s\n", color.CyanString(hash.Hex()))
		if chain.ExplorerURL != "" {
			fmt.Printf("🔍 Explorer: %s/tx/%s\n", chain.ExplorerURL, hash.Hex())
		}
		fmt.Println("⏳ Waiting for confirmation...")
	}

	status, err := handle.Wait(ctx)
	if err != nil {
		return fmt.Errorf("gave up waiting for confirmation: %w", err)
	}

	switch status {
	case transfer.StatusSucceeded:
		fmt.Printf("✅ Transfer confirmed (%s)\n", formatHistory(handle))
	case transfer.StatusFailed:
		kind, detail := handle.Failure()
		return fmt.Errorf("transfer failed (%s): %s", kind, detail)
	default:
		return fmt.Errorf("transfer ended in unexpected state %s", status)
	}

	return nil
}

// resolveSendAsset maps the asset argument to a native or token selector.
// Symbols and addresses both resolve through the catalog.
func resolveSendAsset(ctx context.Context, c *core, chainID uint64, arg string) (balance.Asset, error) {
	if arg == "native" {
		return balance.NativeAsset(), nil
	}

	cat, err := c.catalogSvc.Fetch(ctx, chainID)
	if err != nil {
		return balance.Asset{}, fmt.Errorf("failed to fetch token catalog: %w", err)
	}

	if token, ok := cat.ByAddress(arg); ok {
		return balance.TokenAsset(token), nil
	}
	for _, t := range cat.Tokens {
		if strings.EqualFold(t.Symbol, arg) {
			return balance.TokenAsset(t), nil
		}
	}
	return balance.Asset{}, fmt.Errorf("unknown asset %q on chain %d. Try 'walletdash tokens %s'", arg, chainID, arg)
}

func confirmSend() bool {
	fmt.Print("Proceed with this transfer? (y/N): ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func formatHistory(h *transfer.Handle) string {
	history := h.History()
	parts := make([]string, 0, len(history))
	for _, s := range history {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, " → ")
}
