package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/bllackjack/walletdash/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var recoveryPhraseCmd = &cobra.Command{
	Use:   "recovery-phrase [show|import]",
	Short: "Manage recovery phrase",
	Long: `Manage your wallet's recovery phrase (mnemonic).

Commands:
  show    - Display the recovery phrase (requires unlocked wallet)
  import  - Import wallet from existing recovery phrase`,
	Args: cobra.ExactArgs(1),
	RunE: runRecoveryPhrase,
}

func runRecoveryPhrase(cmd *cobra.Command, args []string) error {
	manager := wallet.NewManager()
	action := strings.ToLower(args[0])

	switch action {
	case "show":
		return showRecoveryPhrase(manager)
	case "import":
		return importRecoveryPhrase(manager)
	default:
		return fmt.Errorf("invalid action: %s. Use 'show' or 'import'", action)
	}
}

func showRecoveryPhrase(manager *wallet.Manager) error {
	if !manager.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'walletdash init' first")
	}
	if !manager.IsUnlocked() {
		return fmt.Errorf("wallet is locked. Run 'walletdash unlock' first")
	}

	mnemonic, err := manager.Mnemonic()
	if err != nil {
		return fmt.Errorf("failed to get recovery phrase: %w", err)
	}

	fmt.Println("🔐 Recovery Phrase (24 words):")
	fmt.Println()
	fmt.Printf("   %s\n", mnemonic)
	fmt.Println()
	fmt.Println("⚠️  Anyone with this phrase can access your funds. Keep it offline.")

	return nil
}

func importRecoveryPhrase(manager *wallet.Manager) error {
	if manager.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove ~/.walletdash/wallet.vault to import a different one")
	}

	fmt.Println("📥 Import wallet from recovery phrase")
	fmt.Println()
	fmt.Print("Enter your recovery phrase: ")

	reader := bufio.NewReader(os.Stdin)
	mnemonic, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read recovery phrase: %w", err)
	}
	mnemonic = strings.TrimSpace(mnemonic)

	fmt.Print("Enter a password for your wallet: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	if err := manager.ImportFromMnemonic(mnemonic, string(password)); err != nil {
		return fmt.Errorf("failed to import wallet: %w", err)
	}

	address, err := manager.Address()
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	fmt.Println("✅ Wallet imported successfully!")
	fmt.Printf("📬 Address: %s\n", address.Hex())

	return nil
}
