package wallet

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	walletcrypto "github.com/bllackjack/walletdash/crypto"
)

const (
	// Single EVM account; chain switching keeps the same address, like a
	// browser wallet.
	derivationPath = "m/44'/60'/0'/0/0"

	// DefaultChainID is the chain selected before the user picks one.
	DefaultChainID = uint64(1)

	sessionDuration = 30 * time.Minute
)

// Account is the wallet identity the dashboard core reads. Connected is
// false while the vault is locked.
type Account struct {
	Address   common.Address
	Connected bool
}

// Event notifies subscribers of an account or chain change.
type Event struct {
	Account Account
	ChainID uint64
}

// sessionData keeps an unlocked wallet usable across CLI invocations for a
// limited time, the way a browser session would.
type sessionData struct {
	Token      string    `json:"token"`
	Mnemonic   string    `json:"mnemonic"`
	Expiration time.Time `json:"expiration"`
	ChainID    uint64    `json:"chainId"`
}

// Manager is the wallet/account provider: it holds the key custody the core
// is explicitly not allowed to have, and notifies the core of account and
// chain changes.
type Manager struct {
	vaultPath   string
	sessionPath string
	chainPath   string

	mu       sync.RWMutex
	vault    *walletcrypto.Vault
	mnemonic string
	unlocked bool
	chainID  uint64
	subs     []func(Event)
}

// NewManager creates a manager rooted at ~/.walletdash.
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
	dir := filepath.Join(homeDir, ".walletdash")

	m := &Manager{
		vaultPath:   filepath.Join(dir, "wallet.vault"),
		sessionPath: filepath.Join(dir, "session.json"),
		chainPath:   filepath.Join(dir, "chain.txt"),
		chainID:     DefaultChainID,
	}

	if data, err := os.ReadFile(m.chainPath); err == nil {
		if id, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64); err == nil && id != 0 {
			m.chainID = id
		}
	}

	return m
}

// Subscribe registers a callback for account/chain changes. Callbacks run
// synchronously on the goroutine performing the change.
func (m *Manager) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) notifyLocked() {
	ev := Event{Account: m.accountLocked(), ChainID: m.chainID}
	for _, fn := range m.subs {
		fn(ev)
	}
}

// Initialize creates a brand new wallet with a fresh 24-word mnemonic and
// returns the mnemonic for the user to back up.
func (m *Manager) Initialize(passphrase string) (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	if err := m.ImportFromMnemonic(mnemonic, passphrase); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// ImportFromMnemonic creates the vault from an existing mnemonic.
func (m *Manager) ImportFromMnemonic(mnemonic, passphrase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}

	vault, err := walletcrypto.NewVault(mnemonic, passphrase)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.vaultPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := m.saveVault(vault); err != nil {
		return err
	}

	m.vault = vault
	m.mnemonic = mnemonic
	m.unlocked = true

	if err := m.createSession(); err != nil {
		return err
	}

	m.notifyLocked()
	return nil
}

// Unlock decrypts the vault for this session.
func (m *Manager) Unlock(passphrase string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadSession() {
		m.notifyLocked()
		return nil
	}

	if m.vault == nil {
		vault, err := m.loadVault()
		if err != nil {
			return err
		}
		m.vault = vault
	}

	mnemonic, err := m.vault.Decrypt(passphrase)
	if err != nil {
		return fmt.Errorf("invalid passphrase")
	}

	m.mnemonic = mnemonic
	m.unlocked = true

	if err := m.createSession(); err != nil {
		return err
	}

	m.notifyLocked()
	return nil
}

// Lock clears the key material and the session; the dashboard sees a
// disconnected account.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unlocked = false
	m.mnemonic = ""
	os.Remove(m.sessionPath)

	m.notifyLocked()
}

// IsUnlocked reports whether keys are available, reviving a still-valid
// session if one exists.
func (m *Manager) IsUnlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unlocked && m.mnemonic != "" {
		return true
	}
	return m.loadSession()
}

// Mnemonic returns the recovery phrase of an unlocked wallet.
func (m *Manager) Mnemonic() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked && !m.loadSession() {
		return "", fmt.Errorf("wallet is locked")
	}
	return m.mnemonic, nil
}

// EthereumKey derives the signing key. Implements the chain client's
// KeyProvider.
func (m *Manager) EthereumKey() (*ecdsa.PrivateKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked && !m.loadSession() {
		return nil, fmt.Errorf("wallet is locked")
	}

	seed := bip39.NewSeed(m.mnemonic, "")
	path, err := accounts.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse derivation path: %w", err)
	}
	return deriveEthereumKey(seed, path)
}

// Address returns the wallet's EVM address.
func (m *Manager) Address() (common.Address, error) {
	key, err := m.EthereumKey()
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(key.PublicKey), nil
}

// Account returns the provider view the dashboard core consumes.
func (m *Manager) Account() Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountLocked()
}

func (m *Manager) accountLocked() Account {
	if !m.unlocked && !m.loadSession() {
		return Account{}
	}

	seed := bip39.NewSeed(m.mnemonic, "")
	path, err := accounts.ParseDerivationPath(derivationPath)
	if err != nil {
		return Account{}
	}
	key, err := deriveEthereumKey(seed, path)
	if err != nil {
		return Account{}
	}
	return Account{Address: ethcrypto.PubkeyToAddress(key.PublicKey), Connected: true}
}

// ChainID returns the active chain selection.
func (m *Manager) ChainID() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chainID
}

// SwitchChain changes the active chain, persists the selection and notifies
// subscribers. Balances and catalogs for the old chain are invalid from here
// on.
func (m *Manager) SwitchChain(chainID uint64) error {
	if chainID == 0 {
		return fmt.Errorf("invalid chain id 0")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if chainID == m.chainID {
		return nil
	}
	m.chainID = chainID

	if err := os.MkdirAll(filepath.Dir(m.chainPath), 0700); err == nil {
		_ = os.WriteFile(m.chainPath, []byte(strconv.FormatUint(chainID, 10)), 0600)
	}

	m.notifyLocked()
	return nil
}

// VaultExists reports whether a wallet has been initialized.
func (m *Manager) VaultExists() bool {
	_, err := os.Stat(m.vaultPath)
	return err == nil
}

func (m *Manager) saveVault(vault *walletcrypto.Vault) error {
	data, err := json.Marshal(vault)
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}
	if err := os.WriteFile(m.vaultPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}
	return nil
}

func (m *Manager) loadVault() (*walletcrypto.Vault, error) {
	data, err := os.ReadFile(m.vaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}
	var vault walletcrypto.Vault
	if err := json.Unmarshal(data, &vault); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault: %w", err)
	}
	return &vault, nil
}

func (m *Manager) createSession() error {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	session := sessionData{
		Token:      hex.EncodeToString(tokenBytes),
		Mnemonic:   m.mnemonic,
		Expiration: time.Now().Add(sessionDuration),
		ChainID:    m.chainID,
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(m.sessionPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// loadSession revives a saved session if it has not expired. Callers hold
// m.mu.
func (m *Manager) loadSession() bool {
	data, err := os.ReadFile(m.sessionPath)
	if err != nil {
		return false
	}

	var session sessionData
	if err := json.Unmarshal(data, &session); err != nil {
		os.Remove(m.sessionPath)
		return false
	}
	if time.Now().After(session.Expiration) {
		os.Remove(m.sessionPath)
		return false
	}

	m.mnemonic = session.Mnemonic
	m.unlocked = true
	return true
}
