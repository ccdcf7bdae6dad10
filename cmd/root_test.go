package cmd

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thirumurugan7/Web3-Lottery-app/config"
	"github.com/Thirumurugan7/Web3-Lottery-app/contracts"
)

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, l.GetLevel())

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestDeploymentRecord(t *testing.T) {
	lane := common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c")
	d := &contracts.Deployment{
		Name:     "Raffle",
		Address:  common.HexToAddress("0x02"),
		TxHash:   common.HexToHash("0x03"),
		Args:     []interface{}{common.HexToAddress("0xc0"), uint64(42), big.NewInt(10), [32]byte(lane), uint32(500000)},
		Verified: true,
	}
	net := config.Network{Name: "sepolia", ChainID: 11155111}
	at := time.Now()

	r := deploymentRecord("run-1", net, common.HexToAddress("0x01"), d, at)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, "sepolia", r.Network)
	assert.Equal(t, uint64(11155111), r.ChainID)
	assert.Equal(t, d.Address.Hex(), r.Address)
	assert.True(t, r.Verified)
	assert.Equal(t, []string{
		common.HexToAddress("0xc0").Hex(),
		"42",
		"10",
		lane.Hex(),
		"500000",
	}, r.ConstructorArgs)
}

func TestAppRunsOfflineCommands(t *testing.T) {
	workspace := t.TempDir()
	t.Setenv("WORKSPACE", workspace)
	t.Setenv("NETWORKS_FILE", "")

	run := func(args ...string) error {
		return NewApp().Run(append([]string{"raffle-deploy"}, args...))
	}
	require.NoError(t, run("networks"))
	require.NoError(t, run("deployments", "list"))

	require.NoError(t, config.AppendDeploymentRecords(config.DeploymentsPath(workspace),
		config.DeploymentRecord{Name: "Raffle", Network: "hardhat", Address: "0x02"}))
	require.NoError(t, run("deployments", "info", "--contract", "Raffle"))
	assert.Error(t, run("deployments", "info", "--contract", "Lottery"))

	require.NoError(t, run("accounts", "create", "--role", "player"))
	file, err := config.ReadAccountsFile(filepath.Join(workspace, "accounts.json"))
	require.NoError(t, err)
	assert.Contains(t, file.Accounts, "player")
	require.NoError(t, run("accounts", "list"))

	assert.Error(t, run("--log-level", "loud", "networks"))
}
