package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
)

var NetworksCmd = &cli.Command{
	Name:   "networks",
	Usage:  "Show the network table and raffle parameters",
	Action: listNetworks,
}

func listNetworks(c *cli.Context) error {
	networks, err := config.LoadNetworkConfig(cfg.NetworksFile)
	if err != nil {
		return err
	}

	for _, n := range networks.Networks() {
		kind := "public"
		if n.Development {
			kind = "development"
		}
		fmt.Printf("%s:\n", n.Name)
		fmt.Printf("  Chain ID:      %d (%s)\n", n.ChainID, kind)
		fmt.Printf("  URL:           %s\n", n.URL)
		fmt.Printf("  Confirmations: %d\n", n.Confirmations())

		params, err := networks.ParamsFor(n)
		if err != nil {
			fmt.Printf("  Raffle:        not configured\n\n")
			continue
		}
		fmt.Printf("  Entrance fee:  %s wei\n", params.EntranceFee)
		fmt.Printf("  Gas lane:      %s\n", params.GasLane.Hex())
		fmt.Printf("  Callback gas:  %d\n", params.CallbackGasLimit)
		fmt.Printf("  Interval:      %ss\n", params.Interval)
		if n.Development {
			fmt.Printf("  Coordinator:   mock\n\n")
			continue
		}
		fmt.Printf("  Coordinator:   %s\n", params.VRFCoordinator.Hex())
		fmt.Printf("  Subscription:  %d\n\n", params.SubscriptionID)
	}
	return nil
}
