// Package raffle holds the two deployment stages of the lottery: the mock
// coordinator provisioner and the Raffle deployer.
package raffle

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
)

var (
	ErrUnknownVariant      = errors.New("unknown raffle variant")
	ErrConstructorMismatch = errors.New("constructor does not match variant")
)

// ArgSpec is one constructor parameter: its logical name and ABI type.
type ArgSpec struct {
	Name string
	Type string
}

// Variant is a build of the Raffle contract. Its Inputs are the constructor
// parameters in declaration order.
type Variant struct {
	Name         string
	Contract     string
	Inputs       []ArgSpec
	Subscription bool
	Verify       bool
}

const (
	ArgCoordinator      = "vrfCoordinatorV2"
	ArgSubscriptionID   = "subscriptionId"
	ArgEntranceFee      = "entranceFee"
	ArgGasLane          = "gasLane"
	ArgCallbackGasLimit = "callbackGasLimit"
	ArgInterval         = "interval"
)

// VRFVariant is the canonical Raffle: a funded VRF subscription and
// keeper interval, verified on public networks.
var VRFVariant = Variant{
	Name:     "vrf",
	Contract: contracts.RaffleName,
	Inputs: []ArgSpec{
		{Name: ArgCoordinator, Type: "address"},
		{Name: ArgSubscriptionID, Type: "uint64"},
		{Name: ArgEntranceFee, Type: "uint256"},
		{Name: ArgGasLane, Type: "bytes32"},
		{Name: ArgCallbackGasLimit, Type: "uint32"},
		{Name: ArgInterval, Type: "uint256"},
	},
	Subscription: true,
	Verify:       true,
}

// BasicVariant only takes the coordinator and the entrance fee. It needs no
// subscription and is never verified.
var BasicVariant = Variant{
	Name:     "basic",
	Contract: contracts.RaffleName,
	Inputs: []ArgSpec{
		{Name: ArgCoordinator, Type: "address"},
		{Name: ArgEntranceFee, Type: "uint256"},
	},
}

var variants = map[string]Variant{
	VRFVariant.Name:   VRFVariant,
	BasicVariant.Name: BasicVariant,
}

func VariantByName(name string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q (want vrf or basic)", ErrUnknownVariant, name)
	}
	return v, nil
}

// Params are the resolved constructor inputs before ordering.
type Params struct {
	Coordinator      common.Address
	SubscriptionID   uint64
	EntranceFee      *big.Int
	GasLane          common.Hash
	CallbackGasLimit uint32
	Interval         *big.Int
}

// Args returns the constructor arguments in the variant's declared order,
// typed for ABI encoding.
func (v Variant) Args(p Params) ([]interface{}, error) {
	args := make([]interface{}, 0, len(v.Inputs))
	for _, spec := range v.Inputs {
		switch spec.Name {
		case ArgCoordinator:
			args = append(args, p.Coordinator)
		case ArgSubscriptionID:
			args = append(args, p.SubscriptionID)
		case ArgEntranceFee:
			if p.EntranceFee == nil {
				return nil, fmt.Errorf("entrance fee is not set")
			}
			args = append(args, new(big.Int).Set(p.EntranceFee))
		case ArgGasLane:
			args = append(args, [32]byte(p.GasLane))
		case ArgCallbackGasLimit:
			args = append(args, p.CallbackGasLimit)
		case ArgInterval:
			if p.Interval == nil {
				return nil, fmt.Errorf("interval is not set")
			}
			args = append(args, new(big.Int).Set(p.Interval))
		default:
			return nil, fmt.Errorf("variant %s declares unknown argument %s", v.Name, spec.Name)
		}
	}
	return args, nil
}

// ArgNames lists the declared argument names in order.
func (v Variant) ArgNames() []string {
	names := make([]string, len(v.Inputs))
	for i, spec := range v.Inputs {
		names[i] = spec.Name
	}
	return names
}

// CheckConstructor compares the declared argument types with the artifact's
// constructor. A reordered or resized constructor fails here instead of
// deploying with shifted arguments.
func (v Variant) CheckConstructor(artifact *contracts.Artifact) error {
	inputs := artifact.ABI.Constructor.Inputs
	if len(inputs) != len(v.Inputs) {
		return fmt.Errorf("%w: %s constructor takes %d arguments, variant %s declares %d",
			ErrConstructorMismatch, artifact.ContractName, len(inputs), v.Name, len(v.Inputs))
	}
	for i, in := range inputs {
		if got := in.Type.String(); got != v.Inputs[i].Type {
			return fmt.Errorf("%w: %s argument %d (%s) is %s, variant %s expects %s %s",
				ErrConstructorMismatch, artifact.ContractName, i, in.Name, got, v.Name, v.Inputs[i].Type, v.Inputs[i].Name)
		}
	}
	return nil
}
