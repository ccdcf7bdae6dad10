package raffle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
	"github.com/Thirumurugan7/Web3-Lottery-app/orchestrator"
)

var (
	// BaseFee is the premium charged per randomness request.
	BaseFee = config.MustParseAmount("0.25 ether")
	// GasPriceLink converts gas price to LINK for the mock's fee calculation.
	GasPriceLink = big.NewInt(1e9)
)

// MocksStage deploys a mock VRF coordinator on development networks and
// does nothing anywhere else.
type MocksStage struct {
	BaseFee      *big.Int
	GasPriceLink *big.Int
}

func NewMocksStage() *MocksStage {
	return &MocksStage{
		BaseFee:      new(big.Int).Set(BaseFee),
		GasPriceLink: new(big.Int).Set(GasPriceLink),
	}
}

func (s *MocksStage) Name() string { return "mocks" }

func (s *MocksStage) Tags() []string { return []string{"all", "mocks"} }

func (s *MocksStage) Produces(net config.Network) []string {
	if net.Development {
		return []string{contracts.CoordinatorMockName}
	}
	return nil
}

func (s *MocksStage) Consumes(config.Network) []string { return nil }

func (s *MocksStage) Run(ctx context.Context, rt *orchestrator.Runtime) error {
	log := rt.Logger.With().Str("stage", s.Name()).Logger()

	if !rt.Network.Development {
		log.Debug().Str("network", rt.Network.Name).Msg("public network, skipping mocks")
		return nil
	}

	log.Info().Str("network", rt.Network.Name).Msg("local network detected, deploying mocks")

	artifact, err := rt.Artifacts.Artifact(contracts.CoordinatorMockName)
	if err != nil {
		return fmt.Errorf("failed to load coordinator mock: %w", err)
	}

	deployment, err := rt.Chain.Deploy(ctx, artifact, rt.Network.Confirmations(), s.BaseFee, s.GasPriceLink)
	if err != nil {
		return fmt.Errorf("failed to deploy %s: %w", contracts.CoordinatorMockName, err)
	}
	deployment.Name = contracts.CoordinatorMockName

	if err := rt.Registry.Save(deployment); err != nil {
		return err
	}

	config.AssertReachable("Coordinator mock deployed on development network", map[string]interface{}{
		"network": rt.Network.Name,
		"address": deployment.Address.Hex(),
	})

	log.Info().
		Str("address", deployment.Address.Hex()).
		Str("base_fee", s.BaseFee.String()).
		Str("gas_price_link", s.GasPriceLink.String()).
		Msg("mocks deployed")
	return nil
}
