package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
)

var DeploymentsCmd = &cli.Command{
	Name:  "deployments",
	Usage: "Inspect recorded deployments",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List recorded deployments",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "filter-network",
					Usage: "Only show deployments on this network",
				},
			},
			Action: listDeployments,
		},
		{
			Name:  "info",
			Usage: "Show the latest deployment of a contract",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "contract",
					Usage:    "Contract name",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "filter-network",
					Usage: "Network name",
				},
			},
			Action: getDeploymentInfo,
		},
	},
}

func listDeployments(c *cli.Context) error {
	path := config.DeploymentsPath(cfg.Workspace)
	deployments, err := config.LoadDeploymentRecords(path)
	if err != nil {
		return err
	}

	network := c.String("filter-network")
	shown := 0
	for _, d := range deployments {
		if network != "" && !strings.EqualFold(d.Network, network) {
			continue
		}
		fmt.Printf("%-22s %-12s %s  %s\n", d.Name, d.Network, d.Address, d.DeployedAt.Format("2006-01-02 15:04:05"))
		shown++
	}
	if shown == 0 {
		fmt.Printf("No deployments recorded in %s\n", path)
	}
	return nil
}

func getDeploymentInfo(c *cli.Context) error {
	deployments, err := config.LoadDeploymentRecords(config.DeploymentsPath(cfg.Workspace))
	if err != nil {
		return err
	}

	d, ok := config.FindDeployment(deployments, c.String("contract"), c.String("filter-network"))
	if !ok {
		return fmt.Errorf("no deployment recorded for %s", c.String("contract"))
	}

	fmt.Printf("Contract: %s\n", d.Name)
	fmt.Printf("Network: %s (chain %d)\n", d.Network, d.ChainID)
	fmt.Printf("Address: %s\n", d.Address)
	fmt.Printf("Transaction Hash: %s\n", d.TxHash)
	fmt.Printf("Deployer Address: %s\n", d.DeployerAddress)
	fmt.Printf("Run: %s\n", d.RunID)
	fmt.Printf("Verified: %t\n", d.Verified)
	if len(d.ConstructorArgs) > 0 {
		fmt.Printf("Constructor Args: %s\n", strings.Join(d.ConstructorArgs, ", "))
	}
	return nil
}
