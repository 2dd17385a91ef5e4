package wallet

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// BIP-32 key derivation over secp256k1, enough for the single EVM account
// path the dashboard uses. Hardened and normal derivation both supported;
// public-parent derivation is not.

type hdKey struct {
	privateKey []byte
	chainCode  []byte
}

// deriveEthereumKey derives the private key for the given BIP-44 path from a
// BIP-39 seed.
func deriveEthereumKey(seed []byte, path accounts.DerivationPath) (*ecdsa.PrivateKey, error) {
	key, err := newMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	for _, index := range path {
		key, err = key.child(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child key: %w", err)
		}
	}

	priv, err := crypto.ToECDSA(key.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to ECDSA key: %w", err)
	}
	return priv, nil
}

func newMasterKey(seed []byte) (*hdKey, error) {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)

	key := &hdKey{privateKey: sum[:32], chainCode: sum[32:]}
	if err := validatePrivateKey(key.privateKey); err != nil {
		return nil, err
	}
	return key, nil
}

const hardenedOffset = 0x80000000

func (k *hdKey) child(index uint32) (*hdKey, error) {
	var data []byte
	if index >= hardenedOffset {
		// Hardened: HMAC over 0x00 || ser256(parent key) || index.
		data = append([]byte{0x00}, k.privateKey...)
	} else {
		pub, err := crypto.ToECDSA(k.privateKey)
		if err != nil {
			return nil, err
		}
		data = crypto.CompressPubkey(&pub.PublicKey)
	}

	var indexBytes [4]byte
	binary.BigEndian.PutUint32(indexBytes[:], index)
	data = append(data, indexBytes[:]...)

	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	// child = (IL + parent) mod N
	n := crypto.S256().Params().N
	childInt := new(big.Int).SetBytes(sum[:32])
	if childInt.Cmp(n) >= 0 {
		return nil, fmt.Errorf("derived key out of range, try next index")
	}
	childInt.Add(childInt, new(big.Int).SetBytes(k.privateKey))
	childInt.Mod(childInt, n)

	childKey := make([]byte, 32)
	childInt.FillBytes(childKey)
	if err := validatePrivateKey(childKey); err != nil {
		return nil, err
	}

	return &hdKey{privateKey: childKey, chainCode: sum[32:]}, nil
}

func validatePrivateKey(key []byte) error {
	i := new(big.Int).SetBytes(key)
	if i.Sign() == 0 || i.Cmp(crypto.S256().Params().N) >= 0 {
		return fmt.Errorf("invalid private key")
	}
	return nil
}
