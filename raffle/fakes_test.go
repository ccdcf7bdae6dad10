package raffle

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
	"github.com/Thirumurugan7/Web3-Lottery-app/orchestrator"
)

const testNetworksYAML = `
developmentChains: [hardhat, localhost]
networks:
  hardhat:
    chainId: 31337
    url: http://127.0.0.1:8545
  localhost:
    chainId: 31337
    url: http://127.0.0.1:8545
  sepolia:
    chainId: 11155111
    url: https://sepolia.example
    blockConfirmations: 6
  goerli:
    chainId: 5
    url: https://goerli.example
chains:
  31337:
    name: hardhat
    entranceFee: 0.01 ether
    gasLane: "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"
    callbackGasLimit: 500000
    interval: 30
  11155111:
    name: sepolia
    vrfCoordinator: "0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"
    subscriptionId: 42
    entranceFee: 0.01 ether
    gasLane: "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"
    callbackGasLimit: 500000
    interval: 30
`

var (
	sepoliaCoordinator = common.HexToAddress("0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625")
	testGasLane        = common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c")
	testOwner          = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

const vrfRaffleArtifact = `{
	"contractName": "Raffle",
	"sourceName": "contracts/Raffle.sol",
	"abi": [{
		"type": "constructor",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "vrfCoordinatorV2", "type": "address", "internalType": "address"},
			{"name": "subscriptionId", "type": "uint64", "internalType": "uint64"},
			{"name": "entranceFee", "type": "uint256", "internalType": "uint256"},
			{"name": "gasLane", "type": "bytes32", "internalType": "bytes32"},
			{"name": "callbackGasLimit", "type": "uint32", "internalType": "uint32"},
			{"name": "interval", "type": "uint256", "internalType": "uint256"}
		]
	}],
	"bytecode": "0x6080604052"
}`

const basicRaffleArtifact = `{
	"contractName": "Raffle",
	"sourceName": "contracts/Raffle.sol",
	"abi": [{
		"type": "constructor",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "vrfCoordinatorV2", "type": "address", "internalType": "address"},
			{"name": "entranceFee", "type": "uint256", "internalType": "uint256"}
		]
	}],
	"bytecode": "0x6080604052"
}`

func coordinatorArtifact() string {
	return fmt.Sprintf(`{"contractName": %q, "sourceName": "contracts/test/VRFCoordinatorV2Mock.sol", "abi": %s, "bytecode": "0x6080"}`,
		contracts.CoordinatorMockName, contracts.CoordinatorABI)
}

// memArtifacts serves artifacts parsed from inline JSON.
type memArtifacts map[string]string

func (m memArtifacts) Artifact(name string) (*contracts.Artifact, error) {
	raw, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrArtifactNotFound, name)
	}
	return contracts.ParseArtifact([]byte(raw))
}

func testArtifacts(raffleJSON string) memArtifacts {
	return memArtifacts{
		contracts.CoordinatorMockName: coordinatorArtifact(),
		contracts.RaffleName:          raffleJSON,
	}
}

type deployCall struct {
	Name          string
	Confirmations uint64
	Args          []interface{}
}

type transactCall struct {
	To            common.Address
	Method        string
	Confirmations uint64
	Args          []interface{}
}

// fakeChain records every transaction it is asked to send.
type fakeChain struct {
	chainID uint64
	subID   uint64

	deploys   []deployCall
	transacts []transactCall

	deployErr   error
	transactErr map[string]error
	// receiptLogs overrides the logs returned by createSubscription.
	receiptLogs []*types.Log
}

func newFakeChain(chainID uint64) *fakeChain {
	return &fakeChain{chainID: chainID, subID: 1, transactErr: make(map[string]error)}
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).SetUint64(f.chainID), nil
}

func (f *fakeChain) Deploy(_ context.Context, artifact *contracts.Artifact, confirmations uint64, args ...interface{}) (*contracts.Deployment, error) {
	f.deploys = append(f.deploys, deployCall{Name: artifact.ContractName, Confirmations: confirmations, Args: args})
	if f.deployErr != nil {
		return nil, f.deployErr
	}
	n := int64(len(f.deploys))
	return &contracts.Deployment{
		Name:    artifact.ContractName,
		Address: common.BigToAddress(big.NewInt(0x1000 + n)),
		TxHash:  common.BigToHash(big.NewInt(n)),
		Receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
		Args:    args,
	}, nil
}

func (f *fakeChain) Transact(_ context.Context, to common.Address, _ abi.ABI, confirmations uint64, method string, args ...interface{}) (*types.Receipt, error) {
	f.transacts = append(f.transacts, transactCall{To: to, Method: method, Confirmations: confirmations, Args: args})
	if err := f.transactErr[method]; err != nil {
		return nil, err
	}

	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful}
	if method == "createSubscription" {
		if f.receiptLogs != nil {
			receipt.Logs = f.receiptLogs
		} else {
			receipt.Logs = []*types.Log{subscriptionCreatedLog(to, f.subID, testOwner)}
		}
	}
	return receipt, nil
}

func (f *fakeChain) txCount() int {
	return len(f.deploys) + len(f.transacts)
}

func subscriptionCreatedLog(coordinator common.Address, subID uint64, owner common.Address) *types.Log {
	return &types.Log{
		Address: coordinator,
		Topics: []common.Hash{
			SubscriptionCreatedTopic,
			common.BigToHash(new(big.Int).SetUint64(subID)),
		},
		Data: common.LeftPadBytes(owner.Bytes(), 32),
	}
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, req orchestrator.VerifyRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func newRuntime(t *testing.T, network string, chain orchestrator.Chain, artifacts orchestrator.ArtifactSource) *orchestrator.Runtime {
	t.Helper()
	return newRuntimeFrom(t, testNetworksYAML, network, chain, artifacts)
}
