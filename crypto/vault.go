package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN = 32768 // 2^15
	scryptR = 8
	scryptP = 1
	keyLen  = 32 // AES-256
)

// Vault is the encrypted at-rest form of the wallet secret. The GCM tag is
// carried inside Data.
type Vault struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// NewVault encrypts the mnemonic under a key derived from the passphrase.
func NewVault(mnemonic, passphrase string) (*Vault, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &Vault{
		Salt:  salt,
		Nonce: nonce,
		Data:  gcm.Seal(nil, nonce, []byte(mnemonic), nil),
	}, nil
}

// Decrypt recovers the mnemonic. A wrong passphrase fails the GCM open.
func (v *Vault) Decrypt(passphrase string) (string, error) {
	key, err := deriveKey(passphrase, v.Salt)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plain, err := gcm.Open(nil, v.Nonce, v.Data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt vault: %w", err)
	}
	return string(plain), nil
}

// ValidatePassphrase reports whether the passphrase opens the vault.
func (v *Vault) ValidatePassphrase(passphrase string) bool {
	_, err := v.Decrypt(passphrase)
	return err == nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
