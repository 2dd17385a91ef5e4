package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "walletdash",
	Aliases: []string{"wd"},
	Short:   "A wallet dashboard for EVM chains",
	Long: `Walletdash is a wallet dashboard for EVM chains. It holds an encrypted
local wallet, tracks native and ERC20 balances across chains, and sends
transfers with full lifecycle tracking from validation to receipt.

Features:
  • Multi-chain support (Ethereum, Goerli, Sepolia, Gnosis)
  • BIP-39 mnemonic generation
  • BIP-44 hierarchical deterministic wallets
  • AES-256-GCM encrypted vault storage
  • Token catalog with search
  • Native and ERC20 transfers with receipt tracking
  • JSON API for a browser front end

Security:
  • All keys generated locally
  • Encrypted vault storage
  • No keys transmitted over network

Examples:
  walletdash init                      # Create new wallet
  walletdash unlock                    # Unlock wallet
  walletdash balance                   # Native + well-known token balances
  walletdash balance --all             # Sweep the full token catalog
  walletdash send native 0.1 0x1234... # Send 0.1 ETH
  walletdash chain 100                 # Switch to Gnosis
  walletdash serve                     # Start the dashboard API`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(recoveryPhraseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Walletdash v%s\n", version)
	},
}
