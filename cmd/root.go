package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

// NewApp creates a new CLI app
func NewApp() *cli.App {
	app := &cli.App{
		Name:  "raffle-deploy",
		Usage: "Deploy the Raffle contract and its VRF coordinator subscription",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "network",
				Usage:   "Target network name (env: NETWORK)",
				EnvVars: []string{"NETWORK"},
			},
			&cli.StringFlag{
				Name:    "rpc",
				Usage:   "RPC URL, overrides the network table (env: ETH_RPC_URL)",
				EnvVars: []string{"ETH_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Deployer private key (env: PRIVATE_KEY)",
				EnvVars: []string{"PRIVATE_KEY"},
			},
			&cli.StringFlag{
				Name:    "variant",
				Usage:   "Raffle variant: vrf or basic (env: RAFFLE_VARIANT)",
				EnvVars: []string{"RAFFLE_VARIANT"},
			},
			&cli.StringFlag{
				Name:    "artifacts",
				Usage:   "Compiled artifacts directory (env: ARTIFACTS_DIR)",
				EnvVars: []string{"ARTIFACTS_DIR"},
			},
			&cli.StringFlag{
				Name:    "networks-file",
				Usage:   "YAML network table, defaults to the built-in one (env: NETWORKS_FILE)",
				EnvVars: []string{"NETWORKS_FILE"},
			},
			&cli.StringFlag{
				Name:    "workspace",
				Usage:   "Directory for accounts and deployment records (env: WORKSPACE)",
				EnvVars: []string{"WORKSPACE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: trace, debug, info, warn, error (env: LOG_LEVEL)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Verbose output (env: VERBOSE)",
				EnvVars: []string{"VERBOSE"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg = config.Load()

			if c.IsSet("network") {
				cfg.Network = c.String("network")
			}
			if c.IsSet("rpc") {
				cfg.RPC = c.String("rpc")
			}
			if c.IsSet("private-key") {
				cfg.PrivateKey = c.String("private-key")
			}
			if c.IsSet("variant") {
				cfg.Variant = c.String("variant")
			}
			if c.IsSet("artifacts") {
				cfg.ArtifactsDir = c.String("artifacts")
			}
			if c.IsSet("networks-file") {
				cfg.NetworksFile = c.String("networks-file")
			}
			if c.IsSet("workspace") {
				cfg.Workspace = c.String("workspace")
			}
			if c.IsSet("log-level") {
				cfg.LogLevel = c.String("log-level")
			}
			if c.IsSet("verbose") {
				cfg.Verbose = c.Bool("verbose")
			}
			cfg.Finalize()

			var err error
			logger, err = newLogger(cfg.LogLevel)
			return err
		},
		Commands: []*cli.Command{
			DeployCmd,
			NetworksCmd,
			DeploymentsCmd,
			AccountsCmd,
		},
	}
	return app
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().
		Logger().
		Level(lvl), nil
}

func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
