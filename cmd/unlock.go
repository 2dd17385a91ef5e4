package cmd

import (
	"fmt"
	"syscall"

	"github.com/bllackjack/walletdash/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock your wallet",
	Long: `Unlock your wallet for this session.

The unlocked session stays valid for 30 minutes, after which you need to
unlock again.`,
	RunE: runUnlock,
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock your wallet",
	Long:  `Lock your wallet and end the current session immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := wallet.NewManager()
		manager.Lock()
		fmt.Println("🔒 Wallet locked")
		return nil
	},
}

func runUnlock(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()

	if !manager.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'walletdash init' first")
	}

	if manager.IsUnlocked() {
		fmt.Println("✅ Wallet is already unlocked")
		return nil
	}

	fmt.Print("Enter your wallet password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if err := manager.Unlock(string(password)); err != nil {
		return fmt.Errorf("failed to unlock wallet: %w", err)
	}

	address, err := manager.Address()
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	fmt.Println("✅ Wallet unlocked successfully!")
	fmt.Printf("📬 Address: %s\n", address.Hex())
	fmt.Println("⏱️  Session valid for 30 minutes")

	return nil
}
