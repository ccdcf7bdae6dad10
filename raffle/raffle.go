package raffle

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
	"github.com/Thirumurugan7/Web3-Lottery-app/orchestrator"
)

var ErrChainIDMismatch = errors.New("chain id mismatch")

// FundAmount is what a new development subscription is funded with.
var FundAmount = config.MustParseAmount("2 ether")

// Subscription is the VRF subscription the Raffle is wired to.
type Subscription struct {
	ID      uint64
	Fund    *big.Int
	Created bool
}

// RaffleStage resolves the coordinator and subscription for the active
// network, deploys the Raffle and, on public networks, verifies it.
type RaffleStage struct {
	Variant    Variant
	FundAmount *big.Int
}

func NewRaffleStage(v Variant) *RaffleStage {
	return &RaffleStage{Variant: v, FundAmount: new(big.Int).Set(FundAmount)}
}

func (s *RaffleStage) Name() string { return "raffle" }

func (s *RaffleStage) Tags() []string { return []string{"all", "raffle"} }

func (s *RaffleStage) Produces(config.Network) []string {
	return []string{s.Variant.Contract}
}

func (s *RaffleStage) Consumes(net config.Network) []string {
	if net.Development {
		return []string{contracts.CoordinatorMockName}
	}
	return nil
}

func (s *RaffleStage) Run(ctx context.Context, rt *orchestrator.Runtime) error {
	net := rt.Network
	log := rt.Logger.With().
		Str("stage", s.Name()).
		Str("network", net.Name).
		Str("variant", s.Variant.Name).
		Logger()

	if err := checkChainID(ctx, rt); err != nil {
		return err
	}

	params, err := rt.Networks.ParamsFor(net)
	if err != nil {
		return err
	}

	coordinator, err := resolveCoordinator(rt, params)
	if err != nil {
		return err
	}
	log.Debug().Str("coordinator", coordinator.Hex()).Msg("coordinator resolved")

	artifact, err := rt.Artifacts.Artifact(s.Variant.Contract)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", s.Variant.Contract, err)
	}
	if err := s.Variant.CheckConstructor(artifact); err != nil {
		return err
	}

	var sub Subscription
	if s.Variant.Subscription {
		sub, err = s.resolveSubscription(ctx, rt, log, coordinator, params)
		if err != nil {
			return err
		}
	}

	args, err := s.Variant.Args(Params{
		Coordinator:      coordinator,
		SubscriptionID:   sub.ID,
		EntranceFee:      params.EntranceFee,
		GasLane:          params.GasLane,
		CallbackGasLimit: params.CallbackGasLimit,
		Interval:         params.Interval,
	})
	if err != nil {
		return err
	}
	config.AssertAlways(len(args) == len(artifact.ABI.Constructor.Inputs),
		"Raffle constructor arguments match the declared order", map[string]interface{}{
			"variant": s.Variant.Name,
			"args":    s.Variant.ArgNames(),
		})

	deployment, err := rt.Chain.Deploy(ctx, artifact, net.Confirmations(), args...)
	if err != nil {
		return fmt.Errorf("failed to deploy %s: %w", s.Variant.Contract, err)
	}
	deployment.Name = s.Variant.Contract
	if err := rt.Registry.Save(deployment); err != nil {
		return err
	}

	log.Info().
		Str("address", deployment.Address.Hex()).
		Str("tx", deployment.TxHash.Hex()).
		Uint64("subscription_id", sub.ID).
		Msg("raffle deployed")

	verify := ShouldVerify(net, rt.VerifyEnabled, s.Variant)
	config.AssertAlways(!verify || !net.Development, "Verification never runs on development networks", map[string]interface{}{
		"network": net.Name,
	})
	if !verify {
		log.Debug().Bool("verify_enabled", rt.VerifyEnabled).Msg("skipping verification")
		return nil
	}
	deployment.Verified = s.verify(ctx, rt, log, artifact, deployment.Address, args)
	config.AssertSometimes(deployment.Verified, "Public Raffle deployments get verified", config.Details{
		"network": net.Name,
		"address": deployment.Address.Hex(),
	})
	return nil
}

// ShouldVerify is true only for a verifying variant on a public network with
// a verification credential configured.
func ShouldVerify(net config.Network, verifyEnabled bool, v Variant) bool {
	return v.Verify && verifyEnabled && !net.Development
}

func checkChainID(ctx context.Context, rt *orchestrator.Runtime) error {
	chainID, err := rt.Chain.ChainID(ctx)
	if err != nil {
		return err
	}
	if !chainID.IsUint64() || chainID.Uint64() != rt.Network.ChainID {
		return fmt.Errorf("%w: network %s is configured for chain %d, node reports %s",
			ErrChainIDMismatch, rt.Network.Name, rt.Network.ChainID, chainID)
	}
	return nil
}

// resolveCoordinator reads the mock from the registry on development
// networks and the table otherwise.
func resolveCoordinator(rt *orchestrator.Runtime, params config.ChainParams) (common.Address, error) {
	if rt.Network.Development {
		mock, err := rt.Registry.Get(contracts.CoordinatorMockName)
		if err != nil {
			return common.Address{}, fmt.Errorf("coordinator mock must be deployed first (run the mocks stage): %w", err)
		}
		config.AssertReachable("Development coordinator resolved from the mock deployment", map[string]interface{}{
			"network": rt.Network.Name,
			"mock":    mock.Address.Hex(),
		})
		return mock.Address, nil
	}

	if params.VRFCoordinator == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: chain %d has no vrfCoordinator", config.ErrMissingNetworkConfig, rt.Network.ChainID)
	}
	return params.VRFCoordinator, nil
}

func (s *RaffleStage) resolveSubscription(ctx context.Context, rt *orchestrator.Runtime, log zerolog.Logger,
	coordinator common.Address, params config.ChainParams) (Subscription, error) {
	if !rt.Network.Development {
		if params.SubscriptionID == 0 {
			return Subscription{}, fmt.Errorf("%w: chain %d has no subscriptionId", config.ErrMissingNetworkConfig, rt.Network.ChainID)
		}
		return Subscription{ID: params.SubscriptionID}, nil
	}

	coordinatorABI := contracts.ParsedCoordinatorABI()
	confirmations := rt.Network.Confirmations()

	receipt, err := rt.Chain.Transact(ctx, coordinator, coordinatorABI, confirmations, "createSubscription")
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to create subscription: %w", err)
	}
	created, err := DecodeSubscriptionCreated(receipt, coordinator)
	if err != nil {
		return Subscription{}, err
	}
	log.Info().Uint64("subscription_id", created.SubID).Str("owner", created.Owner.Hex()).Msg("subscription created")

	if _, err := rt.Chain.Transact(ctx, coordinator, coordinatorABI, confirmations, "fundSubscription", created.SubID, s.FundAmount); err != nil {
		return Subscription{}, fmt.Errorf("failed to fund subscription %d: %w", created.SubID, err)
	}
	log.Info().Uint64("subscription_id", created.SubID).Str("amount", s.FundAmount.String()).Msg("subscription funded")

	return Subscription{ID: created.SubID, Fund: new(big.Int).Set(s.FundAmount), Created: true}, nil
}

func (s *RaffleStage) verify(ctx context.Context, rt *orchestrator.Runtime, log zerolog.Logger,
	artifact *contracts.Artifact, address common.Address, args []interface{}) bool {
	if rt.Verifier == nil {
		log.Warn().Msg("verification enabled but no verifier configured")
		return false
	}

	log.Info().Str("address", address.Hex()).Msg("verifying contract")
	err := rt.Verifier.Verify(ctx, orchestrator.VerifyRequest{
		ChainID:  rt.Network.ChainID,
		Address:  address,
		Artifact: artifact,
		Args:     args,
	})
	if err != nil {
		log.Warn().Err(err).Str("address", address.Hex()).Msg("verification failed, contract is deployed")
		return false
	}
	log.Info().Str("address", address.Hex()).Msg("contract verified")
	return true
}

// NewPipeline returns the mocks and raffle stages in execution order.
func NewPipeline(v Variant) *orchestrator.Orchestrator {
	return orchestrator.New(NewMocksStage(), NewRaffleStage(v))
}
