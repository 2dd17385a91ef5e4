package ethereum

import (
	"fmt"
	"os"
)

// Default public RPC endpoints per chain. Override with
// WALLETDASH_RPC_<chainID> when a chain needs a private or paid endpoint.
var defaultRPCs = map[uint64]string{
	1:        "https://ethereum-rpc.publicnode.com",
	5:        "https://ethereum-goerli-rpc.publicnode.com",
	11155111: "https://ethereum-sepolia.publicnode.com",
	100:      "https://gnosis-rpc.publicnode.com",
}

// RPCEndpoint resolves the RPC URL for a chain.
func RPCEndpoint(chainID uint64) (string, error) {
	if url := os.Getenv(fmt.Sprintf("WALLETDASH_RPC_%d", chainID)); url != "" {
		return url, nil
	}
	if url, ok := defaultRPCs[chainID]; ok {
		return url, nil
	}
	return "", fmt.Errorf("no RPC endpoint known for chain %d", chainID)
}
