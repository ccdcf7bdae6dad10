package orchestrator

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
)

// Chain sends transactions and waits for them. Every call blocks until the
// transaction has the requested number of confirmations.
type Chain interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Deploy(ctx context.Context, artifact *contracts.Artifact, confirmations uint64, args ...interface{}) (*contracts.Deployment, error)
	Transact(ctx context.Context, to common.Address, contractABI abi.ABI, confirmations uint64, method string, args ...interface{}) (*types.Receipt, error)
}

// ArtifactSource resolves a contract name to its compiled artifact.
type ArtifactSource interface {
	Artifact(name string) (*contracts.Artifact, error)
}

// VerifyRequest is everything a block explorer needs to match source to
// deployed bytecode.
type VerifyRequest struct {
	ChainID  uint64
	Address  common.Address
	Artifact *contracts.Artifact
	Args     []interface{}
}

// Verifier publishes contract source to a block explorer.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) error
}

// Runtime is the state shared by the stages of one run.
type Runtime struct {
	RunID         string
	Network       config.Network
	Networks      *config.NetworkConfig
	Chain         Chain
	Artifacts     ArtifactSource
	Registry      *Registry
	Verifier      Verifier
	VerifyEnabled bool
	Deployer      common.Address
	Logger        zerolog.Logger
}

// Stage is one step of a deployment. Produces and Consumes name registry
// entries and may depend on the network, since development networks need
// contracts that public networks already have.
type Stage interface {
	Name() string
	Tags() []string
	Produces(net config.Network) []string
	Consumes(net config.Network) []string
	Run(ctx context.Context, rt *Runtime) error
}

type StageResult struct {
	Stage    string
	Produced []string
	Duration time.Duration
}
