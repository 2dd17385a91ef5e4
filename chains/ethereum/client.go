package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	nativeTransferGas  = 21000
	fallbackTokenGas   = 100000
	defaultPollEvery   = 3 * time.Second
	gasEstimateBufferP = 20 // percent
)

// KeyProvider supplies the signing key for outgoing transactions. The wallet
// collaborator owns the key; the client only borrows it per send.
type KeyProvider interface {
	EthereumKey() (*ecdsa.PrivateKey, error)
}

// Client adapts go-ethereum's ethclient to the balance-reader and
// transaction-primitive contracts the core consumes.
type Client struct {
	eth       *ethclient.Client
	chainID   *big.Int
	keys      KeyProvider
	pollEvery time.Duration
}

// Dial connects to the chain's RPC endpoint and confirms its chain ID
// matches the one the dashboard selected.
func Dial(ctx context.Context, chainID uint64, keys KeyProvider) (*Client, error) {
	url, err := RPCEndpoint(chainID)
	if err != nil {
		return nil, err
	}

	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	reported, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to fetch chain ID: %w", err)
	}
	if reported.Uint64() != chainID {
		eth.Close()
		return nil, fmt.Errorf("endpoint %s serves chain %d, expected %d", url, reported.Uint64(), chainID)
	}

	return &Client{
		eth:       eth,
		chainID:   reported,
		keys:      keys,
		pollEvery: defaultPollEvery,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// NativeBalance returns the account's native balance in wei at the latest
// block.
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return bal, nil
}

// TokenBalance calls balanceOf(account) on the token contract.
func (c *Client) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	input, err := balanceOfABI.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf: %w", err)
	}

	out, err := c.eth.CallContract(ctx, geth.CallMsg{To: &token, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("balanceOf call failed: %w", err)
	}

	results, err := balanceOfABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}
	bal, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", results[0])
	}
	return bal, nil
}

// SendNative submits a plain value transfer.
func (c *Client) SendNative(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	return c.send(ctx, &to, amount, nil, nativeTransferGas)
}

// SendToken submits transfer(to, amount) against the token contract.
func (c *Client) SendToken(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	input, err := transferABI.Pack("transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack transfer: %w", err)
	}

	key, err := c.keys.EthereumKey()
	if err != nil {
		return common.Hash{}, err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	gas, err := c.eth.EstimateGas(ctx, geth.CallMsg{From: from, To: &token, Data: input})
	if err != nil {
		gas = fallbackTokenGas
	} else {
		gas += gas * gasEstimateBufferP / 100
	}

	return c.send(ctx, &token, big.NewInt(0), input, gas)
}

// send builds, signs and broadcasts an EIP-1559 transaction.
func (c *Client) send(ctx context.Context, to *common.Address, value *big.Int, data []byte, gas uint64) (common.Hash, error) {
	key, err := c.keys.EthereumKey()
	if err != nil {
		return common.Hash{}, err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas tip: %w", err)
	}

	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch head block: %w", err)
	}

	// Fee cap rides out base fee growth for a few blocks.
	feeCap := new(big.Int).Add(
		new(big.Int).Mul(header.BaseFee, big.NewInt(2)),
		tip,
	)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        to,
		Value:     value,
		Data:      data,
	})

	signer := types.NewLondonSigner(c.chainID)
	signedTx, err := types.SignTx(tx, signer, key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx.Hash(), nil
}

// WaitReceipt polls for the transaction receipt until it lands or the
// context expires. A mined-but-reverted transaction comes back as an error so
// the caller can classify it.
func (c *Client) WaitReceipt(ctx context.Context, hash common.Hash) error {
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return fmt.Errorf("execution reverted: transaction %s failed on chain", hash.Hex())
			}
			return nil
		case errors.Is(err, geth.NotFound):
			// Not mined yet; keep polling.
		default:
			return fmt.Errorf("failed to fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("receipt wait aborted: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
