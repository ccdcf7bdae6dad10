package cmd

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/Thirumurugan7/Web3-Lottery-app/client"
	"github.com/Thirumurugan7/Web3-Lottery-app/config"
)

var AccountsCmd = &cli.Command{
	Name:  "accounts",
	Usage: "Manage named accounts in the workspace",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create accounts with roles",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:     "role",
					Usage:    "Role names (can specify multiple)",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "fund",
					Usage: "Fund each new account from the deployer, e.g. \"10 ether\"",
				},
			},
			Action: createAccounts,
		},
		{
			Name:   "list",
			Usage:  "List all accounts",
			Action: listAccounts,
		},
	},
}

// fundFunc sends amount wei from the deployer to a new account.
type fundFunc func(ctx context.Context, to common.Address, amount *big.Int) error

func createAccounts(c *cli.Context) error {
	net, err := activeNetwork()
	if err != nil {
		return err
	}

	var amount *big.Int
	var fund fundFunc
	if s := c.String("fund"); s != "" {
		amount, err = config.ParseAmount(s)
		if err != nil {
			return fmt.Errorf("invalid --fund amount: %w", err)
		}

		funder, err := dialFunder(c, net)
		if err != nil {
			return err
		}
		defer funder.Close()

		fund = func(ctx context.Context, to common.Address, amount *big.Int) error {
			_, err := funder.Transfer(ctx, to, amount, net.Confirmations())
			return err
		}
	}

	return createRoleAccounts(c.Context, config.AccountsPath(cfg.Workspace), net.ChainID, c.StringSlice("role"), amount, fund)
}

// createRoleAccounts writes each new key to accountsPath before funding it,
// so a failed or timed out transfer never loses a key that may hold funds.
// fund may be nil.
func createRoleAccounts(ctx context.Context, accountsPath string, chainID uint64, roles []string, amount *big.Int, fund fundFunc) error {
	existing, err := config.ReadAccountsFile(accountsPath)
	if err != nil {
		return err
	}

	for _, role := range roles {
		if _, exists := existing.Accounts[role]; exists {
			fmt.Printf("Account '%s' already exists, skipping\n", role)
			continue
		}

		info, err := config.NewAccount(chainID)
		if err != nil {
			return fmt.Errorf("failed to create account for role '%s': %w", role, err)
		}
		if err := config.SaveAccount(accountsPath, role, info); err != nil {
			return err
		}
		existing.Accounts[role] = info
		fmt.Printf("Created '%s': %s (Filecoin: %s)\n", role, info.EthAddress, info.Address)

		if fund == nil {
			continue
		}
		if err := fund(ctx, common.HexToAddress(info.EthAddress), amount); err != nil {
			return fmt.Errorf("account '%s' is saved in %s but funding failed: %w", role, accountsPath, err)
		}
		fmt.Printf("Funded '%s' with %s wei\n", role, amount)
	}

	fmt.Printf("\nAccounts saved to %s\n", accountsPath)
	return nil
}

func activeNetwork() (config.Network, error) {
	networks, err := config.LoadNetworkConfig(cfg.NetworksFile)
	if err != nil {
		return config.Network{}, err
	}
	return networks.Network(cfg.Network)
}

// dialFunder connects the deployer account to net.
func dialFunder(c *cli.Context, net config.Network) (*client.Client, error) {
	rpcURL := cfg.RPC
	if rpcURL == "" {
		rpcURL = net.URL
	}

	accounts, err := config.LoadAccounts(cfg.Workspace, cfg.PrivateKey, net.Development)
	if err != nil {
		return nil, err
	}
	key, err := accounts.Key(config.DeployerAccount)
	if err != nil {
		return nil, err
	}

	return client.New(c.Context, cfg, rpcURL, key, logger)
}

func listAccounts(c *cli.Context) error {
	file, err := config.ReadAccountsFile(config.AccountsPath(cfg.Workspace))
	if err != nil {
		return err
	}

	roles := make([]string, 0, len(file.Accounts))
	for role := range file.Accounts {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		info := file.Accounts[role]
		fmt.Printf("%s:\n", role)
		fmt.Printf("  Ethereum: %s\n", info.EthAddress)
		if info.Address != "" {
			fmt.Printf("  Filecoin: %s\n", info.Address)
		}
		fmt.Printf("  PrivKey:  %s\n\n", info.PrivateKey)
	}
	if len(roles) == 0 {
		fmt.Println("No accounts found")
	}
	return nil
}
