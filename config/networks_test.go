package config

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNetworkConfig(t *testing.T) {
	nc, err := LoadNetworkConfig("")
	require.NoError(t, err)

	for _, name := range []string{"hardhat", "localhost", "anvil"} {
		assert.True(t, nc.IsDevelopment(name), name)
	}
	assert.False(t, nc.IsDevelopment("sepolia"))
	assert.Equal(t, []string{"anvil", "hardhat", "localhost"}, nc.Development.Names())

	hardhat, err := nc.Network("HardHat")
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), hardhat.ChainID)
	assert.True(t, hardhat.Development)
	assert.Equal(t, uint64(1), hardhat.Confirmations())

	sepolia, err := nc.Network("sepolia")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), sepolia.Confirmations())

	// The default table ships without a sepolia subscription.
	_, err = nc.ParamsFor(sepolia)
	assert.True(t, errors.Is(err, ErrMissingNetworkConfig))

	params, err := nc.ParamsFor(hardhat)
	require.NoError(t, err)
	assert.Equal(t, 0, params.EntranceFee.Cmp(MustParseAmount("0.01 ether")))
	assert.Equal(t, uint32(500000), params.CallbackGasLimit)

	_, err = nc.Network("mainnet-fork")
	assert.True(t, errors.Is(err, ErrUnknownNetwork))

	names := make([]string, 0)
	for _, n := range nc.Networks() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"anvil", "calibration", "hardhat", "localhost", "sepolia"}, names)
}

func TestConfirmationsDefaultToOne(t *testing.T) {
	assert.Equal(t, uint64(1), Network{}.Confirmations())
	assert.Equal(t, uint64(3), Network{BlockConfirmations: 3}.Confirmations())
}

const publicChainYAML = `
developmentChains: [hardhat]
networks:
  hardhat:
    chainId: 31337
  sepolia:
    chainId: 11155111
chains:
  11155111:
    name: sepolia
    vrfCoordinator: "0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"
    subscriptionId: 42
    entranceFee: 0.01 ether
    gasLane: "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"
    callbackGasLimit: 500000
    interval: 30
`

func TestParsePublicChain(t *testing.T) {
	nc, err := ParseNetworkConfig([]byte(publicChainYAML))
	require.NoError(t, err)

	params, err := nc.Params(11155111)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", params.Name)
	assert.Equal(t, common.HexToAddress("0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"), params.VRFCoordinator)
	assert.Equal(t, uint64(42), params.SubscriptionID)
	assert.Equal(t, "10000000000000000", params.EntranceFee.String())
	assert.Equal(t, common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"), params.GasLane)
	assert.Equal(t, 0, params.Interval.Cmp(big.NewInt(30)))

	// hardhat has no record and falls back to the built-in defaults.
	hardhat, err := nc.Network("hardhat")
	require.NoError(t, err)
	dev, err := nc.ParamsFor(hardhat)
	require.NoError(t, err)
	assert.Equal(t, DevelopmentDefaults("hardhat"), dev)
}

func TestParseNetworkConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
	}{
		{"missing coordinator", [2]string{`    vrfCoordinator: "0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"` + "\n", ""}},
		{"bad coordinator", [2]string{`"0x8103B0A8A00be2DDC778e6e7eaa21791Cd364625"`, `"0x1234"`}},
		{"missing subscription", [2]string{"    subscriptionId: 42\n", ""}},
		{"bad entrance fee", [2]string{"0.01 ether", "0.01 doge"}},
		{"fractional wei", [2]string{"0.01 ether", "0.5"}},
		{"short gas lane", [2]string{"0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c", "0x474e"}},
		{"missing callback gas", [2]string{"    callbackGasLimit: 500000\n", ""}},
		{"missing interval", [2]string{"    interval: 30\n", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := strings.Replace(publicChainYAML, tt.replace[0], tt.replace[1], 1)
			require.NotEqual(t, publicChainYAML, yaml)

			_, err := ParseNetworkConfig([]byte(yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidNetworkConfig), err.Error())
		})
	}

	t.Run("network without chain id", func(t *testing.T) {
		_, err := ParseNetworkConfig([]byte("networks:\n  broken:\n    url: http://x\n"))
		assert.True(t, errors.Is(err, ErrInvalidNetworkConfig))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseNetworkConfig([]byte("networks: [\n"))
		assert.Error(t, err)
	})
}

func TestDevelopmentRecordNeedsNoCoordinator(t *testing.T) {
	yaml := `
developmentChains: [anvil]
networks:
  anvil:
    chainId: 31337
chains:
  31337:
    entranceFee: 1 gwei
    gasLane: "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"
    callbackGasLimit: 100000
    interval: 60
`
	nc, err := ParseNetworkConfig([]byte(yaml))
	require.NoError(t, err)
	params, err := nc.Params(31337)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", params.EntranceFee.String())
	assert.Equal(t, common.Address{}, params.VRFCoordinator)
}

func TestLoadNetworkConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(publicChainYAML), 0644))

	nc, err := LoadNetworkConfig(path)
	require.NoError(t, err)
	_, err = nc.Params(11155111)
	assert.NoError(t, err)

	_, err = LoadNetworkConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0.25 ether", want: "250000000000000000"},
		{in: "2 ether", want: "2000000000000000000"},
		{in: "2 ETH", want: "2000000000000000000"},
		{in: "25 gwei", want: "25000000000"},
		{in: "1000", want: "1000"},
		{in: "1000 wei", want: "1000"},
		{in: "", wantErr: true},
		{in: "1 2 3", wantErr: true},
		{in: "-1 ether", wantErr: true},
		{in: "0.5 wei", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1 finney", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	assert.Panics(t, func() { MustParseAmount("lots") })
}
