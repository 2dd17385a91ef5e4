package cmd

import (
	"fmt"
	"syscall"

	"github.com/bllackjack/walletdash/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new wallet",
	Long: `Initialize a new Walletdash wallet with a secure recovery phrase.

This command will:
  - Generate a new 24-word recovery phrase
  - Create an encrypted vault
  - Set up your wallet for all supported EVM chains`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()

	if manager.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove ~/.walletdash/wallet.vault to create a new wallet")
	}

	fmt.Println("🚀 Initializing Walletdash")
	fmt.Println()

	fmt.Print("Enter a password for your wallet: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	fmt.Print("Confirm password: ")
	confirmPassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	fmt.Println()

	if string(password) != string(confirmPassword) {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("Generating wallet...")
	mnemonic, err := manager.Initialize(string(password))
	if err != nil {
		return fmt.Errorf("failed to initialize wallet: %w", err)
	}

	address, err := manager.Address()
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	fmt.Println("✅ Wallet initialized successfully!")
	fmt.Println()
	fmt.Printf("📬 Address: %s\n", address.Hex())
	fmt.Println()
	fmt.Println("🔐 Recovery Phrase (24 words):")
	fmt.Println()
	fmt.Printf("   %s\n", mnemonic)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT:")
	fmt.Println("   - Write down this recovery phrase and store it securely")
	fmt.Println("   - Anyone with this phrase can access your funds")
	fmt.Println("   - Keep it offline and never share it with anyone")
	fmt.Println("   - This is the only way to recover your wallet")
	fmt.Println()
	fmt.Println("🔑 Next steps:")
	fmt.Println("   - Run 'walletdash balance' to check your balances")
	fmt.Println("   - Run 'walletdash serve' to start the dashboard API")

	return nil
}
