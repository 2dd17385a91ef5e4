package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ERC20 fragments. Dispatch uses an ABI declaring only the transfer
// method; balance reads use only balanceOf. Nothing else of the standard is
// needed here.
const (
	transferABIJSON = `[{
		"name": "transfer",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}]`

	balanceOfABIJSON = `[{
		"name": "balanceOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}]`
)

var (
	transferABI  abi.ABI
	balanceOfABI abi.ABI
)

func init() {
	var err error
	transferABI, err = abi.JSON(strings.NewReader(transferABIJSON))
	if err != nil {
		panic("invalid transfer ABI fragment: " + err.Error())
	}
	balanceOfABI, err = abi.JSON(strings.NewReader(balanceOfABIJSON))
	if err != nil {
		panic("invalid balanceOf ABI fragment: " + err.Error())
	}
}
