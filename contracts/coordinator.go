package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	CoordinatorMockName = "VRFCoordinatorV2Mock"
	RaffleName          = "Raffle"
)

// CoordinatorABI is the slice of the VRF v2 coordinator interface the
// deployer calls. The mock and the live coordinator share it.
const CoordinatorABI = `[
	{
		"inputs": [
			{"internalType": "uint96", "name": "_baseFee", "type": "uint96"},
			{"internalType": "uint96", "name": "_gasPriceLink", "type": "uint96"}
		],
		"stateMutability": "nonpayable",
		"type": "constructor"
	},
	{
		"inputs": [],
		"name": "createSubscription",
		"outputs": [{"internalType": "uint64", "name": "_subId", "type": "uint64"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "uint64", "name": "_subId", "type": "uint64"},
			{"internalType": "uint96", "name": "_amount", "type": "uint96"}
		],
		"name": "fundSubscription",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "uint64", "name": "subId", "type": "uint64"},
			{"indexed": false, "internalType": "address", "name": "owner", "type": "address"}
		],
		"name": "SubscriptionCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "uint64", "name": "subId", "type": "uint64"},
			{"indexed": false, "internalType": "uint256", "name": "oldBalance", "type": "uint256"},
			{"indexed": false, "internalType": "uint256", "name": "newBalance", "type": "uint256"}
		],
		"name": "SubscriptionFunded",
		"type": "event"
	}
]`

var coordinatorABI = mustParseABI(CoordinatorABI)

// ParsedCoordinatorABI returns the parsed coordinator interface.
func ParsedCoordinatorABI() abi.ABI {
	return coordinatorABI
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
