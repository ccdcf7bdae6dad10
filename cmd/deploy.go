package cmd

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/Thirumurugan7/Web3-Lottery-app/client"
	"github.com/Thirumurugan7/Web3-Lottery-app/config"
	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
	"github.com/Thirumurugan7/Web3-Lottery-app/orchestrator"
	"github.com/Thirumurugan7/Web3-Lottery-app/raffle"
	"github.com/Thirumurugan7/Web3-Lottery-app/verify"
)

var DeployCmd = &cli.Command{
	Name:  "deploy",
	Usage: "Deploy the coordinator mock (development networks) and the Raffle",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "tags",
			Usage: "Stage tags to run: all, mocks, raffle",
			Value: cli.NewStringSlice("all"),
		},
		&cli.BoolFlag{
			Name:  "no-record",
			Usage: "Do not append the run to deployments.json",
		},
	},
	Action: runDeploy,
}

func runDeploy(c *cli.Context) error {
	ctx := c.Context

	networks, err := config.LoadNetworkConfig(cfg.NetworksFile)
	if err != nil {
		return err
	}
	net, err := networks.Network(cfg.Network)
	if err != nil {
		return err
	}
	rpcURL := cfg.RPC
	if rpcURL == "" {
		rpcURL = net.URL
	}
	if rpcURL == "" {
		return fmt.Errorf("no RPC URL for network %s: set --rpc or ETH_RPC_URL", net.Name)
	}

	variant, err := raffle.VariantByName(cfg.Variant)
	if err != nil {
		return err
	}

	accounts, err := config.LoadAccounts(cfg.Workspace, cfg.PrivateKey, net.Development)
	if err != nil {
		return err
	}
	key, err := accounts.Key(config.DeployerAccount)
	if err != nil {
		return fmt.Errorf("no deployer account: set PRIVATE_KEY or create one with 'accounts create --role deployer': %w", err)
	}

	runID := uuid.NewString()
	log := logger.With().Str("run", runID).Logger()

	chain, err := client.New(ctx, cfg, rpcURL, key, log)
	if err != nil {
		return err
	}
	defer chain.Close()

	rt := &orchestrator.Runtime{
		RunID:         runID,
		Network:       net,
		Networks:      networks,
		Chain:         chain,
		Artifacts:     contracts.NewDirSource(cfg.ArtifactsDir),
		Registry:      orchestrator.NewRegistry(),
		VerifyEnabled: cfg.VerifyEnabled,
		Deployer:      chain.From(),
		Logger:        log,
	}
	if cfg.VerifyEnabled {
		rt.Verifier = verify.NewEtherscan(cfg.EtherscanAPIURL, cfg.EtherscanAPIKey, cfg.ArtifactsDir, log)
	}

	log.Info().
		Str("network", net.Name).
		Uint64("chain_id", net.ChainID).
		Bool("development", net.Development).
		Str("deployer", rt.Deployer.Hex()).
		Str("variant", variant.Name).
		Msg("starting deployment")

	results, err := raffle.NewPipeline(variant).Run(ctx, rt, c.StringSlice("tags")...)
	if err != nil {
		return err
	}

	deployed := rt.Registry.All()
	if !c.Bool("no-record") && len(deployed) > 0 {
		records := make([]config.DeploymentRecord, 0, len(deployed))
		now := time.Now().UTC()
		for _, d := range deployed {
			records = append(records, deploymentRecord(runID, net, rt.Deployer, d, now))
		}
		if err := config.AppendDeploymentRecords(config.DeploymentsPath(cfg.Workspace), records...); err != nil {
			return err
		}
	}

	for _, r := range results {
		fmt.Printf("%-8s %s\n", r.Stage, r.Duration.Round(time.Millisecond))
	}
	for _, d := range deployed {
		fmt.Printf("%s: %s\n", d.Name, d.Address.Hex())
	}
	return nil
}

func deploymentRecord(runID string, net config.Network, deployer common.Address, d *contracts.Deployment, at time.Time) config.DeploymentRecord {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = formatArg(a)
	}
	return config.DeploymentRecord{
		RunID:           runID,
		Name:            d.Name,
		Network:         net.Name,
		ChainID:         net.ChainID,
		Address:         d.Address.Hex(),
		DeployerAddress: deployer.Hex(),
		TxHash:          d.TxHash.Hex(),
		ConstructorArgs: args,
		Verified:        d.Verified,
		DeployedAt:      at,
	}
}

func formatArg(a interface{}) string {
	switch v := a.(type) {
	case common.Address:
		return v.Hex()
	case [32]byte:
		return hexutil.Encode(v[:])
	case *big.Int:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
