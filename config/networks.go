package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var defaultNetworksYAML []byte

var (
	ErrUnknownNetwork       = errors.New("unknown network")
	ErrMissingNetworkConfig = errors.New("missing network configuration")
	ErrInvalidNetworkConfig = errors.New("invalid network configuration")
)

// Network is the active network handle: a name bound to a chain id.
type Network struct {
	Name               string
	ChainID            uint64
	URL                string
	BlockConfirmations uint64
	Development        bool
}

// Confirmations returns the number of blocks to wait for, at least one.
func (n Network) Confirmations() uint64 {
	if n.BlockConfirmations == 0 {
		return 1
	}
	return n.BlockConfirmations
}

// ChainParams are the raffle parameters configured for one chain id.
type ChainParams struct {
	Name             string
	EntranceFee      *big.Int
	GasLane          common.Hash
	CallbackGasLimit uint32
	Interval         *big.Int

	// Only set for public chains; development chains get these from the mock.
	VRFCoordinator common.Address
	SubscriptionID uint64
}

// DevelopmentChains is the set of network names treated as ephemeral.
type DevelopmentChains map[string]struct{}

func NewDevelopmentChains(names ...string) DevelopmentChains {
	set := make(DevelopmentChains, len(names))
	for _, name := range names {
		set[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return set
}

func (d DevelopmentChains) Contains(name string) bool {
	_, ok := d[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (d DevelopmentChains) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NetworkConfig is the validated, immutable network table for a run.
type NetworkConfig struct {
	Development DevelopmentChains
	networks    map[string]Network
	chains      map[uint64]ChainParams
}

type rawNetwork struct {
	ChainID            uint64 `yaml:"chainId"`
	URL                string `yaml:"url"`
	BlockConfirmations uint64 `yaml:"blockConfirmations"`
}

type rawChain struct {
	Name             string `yaml:"name"`
	EntranceFee      string `yaml:"entranceFee"`
	GasLane          string `yaml:"gasLane"`
	CallbackGasLimit uint32 `yaml:"callbackGasLimit"`
	Interval         uint64 `yaml:"interval"`
	VRFCoordinator   string `yaml:"vrfCoordinator"`
	SubscriptionID   uint64 `yaml:"subscriptionId"`
}

type rawNetworkConfig struct {
	DevelopmentChains []string              `yaml:"developmentChains"`
	Networks          map[string]rawNetwork `yaml:"networks"`
	Chains            map[uint64]rawChain   `yaml:"chains"`
}

// LoadNetworkConfig reads the network table from path, or the built-in table
// when path is empty.
func LoadNetworkConfig(path string) (*NetworkConfig, error) {
	if path == "" {
		return ParseNetworkConfig(defaultNetworksYAML)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}
	return ParseNetworkConfig(data)
}

// ParseNetworkConfig decodes and validates a network table. Every chain
// record is checked here so that a bad value never reaches a transaction.
func ParseNetworkConfig(data []byte) (*NetworkConfig, error) {
	var raw rawNetworkConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse networks file: %w", err)
	}

	nc := &NetworkConfig{
		Development: NewDevelopmentChains(raw.DevelopmentChains...),
		networks:    make(map[string]Network, len(raw.Networks)),
		chains:      make(map[uint64]ChainParams, len(raw.Chains)),
	}

	for name, rn := range raw.Networks {
		if rn.ChainID == 0 {
			return nil, fmt.Errorf("%w: network %s has no chainId", ErrInvalidNetworkConfig, name)
		}
		key := strings.ToLower(name)
		nc.networks[key] = Network{
			Name:               key,
			ChainID:            rn.ChainID,
			URL:                rn.URL,
			BlockConfirmations: rn.BlockConfirmations,
			Development:        nc.Development.Contains(key),
		}
	}

	for chainID, rc := range raw.Chains {
		params, err := parseChain(chainID, rc, nc.isDevelopmentChainID(chainID))
		if err != nil {
			return nil, err
		}
		nc.chains[chainID] = params
	}

	return nc, nil
}

func parseChain(chainID uint64, rc rawChain, development bool) (ChainParams, error) {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: chain %d: %s", ErrInvalidNetworkConfig, chainID, fmt.Sprintf(format, args...))
	}

	entranceFee, err := ParseAmount(rc.EntranceFee)
	if err != nil {
		return ChainParams{}, invalid("entranceFee: %v", err)
	}

	laneBytes, err := hexutil.Decode(rc.GasLane)
	if err != nil || len(laneBytes) != common.HashLength {
		return ChainParams{}, invalid("gasLane must be a 32-byte hex key, got %q", rc.GasLane)
	}

	if rc.CallbackGasLimit == 0 {
		return ChainParams{}, invalid("callbackGasLimit is required")
	}
	if rc.Interval == 0 {
		return ChainParams{}, invalid("interval is required")
	}

	params := ChainParams{
		Name:             rc.Name,
		EntranceFee:      entranceFee,
		GasLane:          common.BytesToHash(laneBytes),
		CallbackGasLimit: rc.CallbackGasLimit,
		Interval:         new(big.Int).SetUint64(rc.Interval),
		SubscriptionID:   rc.SubscriptionID,
	}

	if rc.VRFCoordinator != "" {
		if !common.IsHexAddress(rc.VRFCoordinator) {
			return ChainParams{}, invalid("vrfCoordinator %q is not an address", rc.VRFCoordinator)
		}
		params.VRFCoordinator = common.HexToAddress(rc.VRFCoordinator)
	}

	if !development {
		if params.VRFCoordinator == (common.Address{}) {
			return ChainParams{}, invalid("vrfCoordinator is required on public chains")
		}
		if params.SubscriptionID == 0 {
			return ChainParams{}, invalid("subscriptionId is required on public chains")
		}
	}

	return params, nil
}

// isDevelopmentChainID reports whether any development network uses chainID.
func (nc *NetworkConfig) isDevelopmentChainID(chainID uint64) bool {
	for _, n := range nc.networks {
		if n.ChainID == chainID && n.Development {
			return true
		}
	}
	return false
}

// Network returns the handle for a network name.
func (nc *NetworkConfig) Network(name string) (Network, error) {
	n, ok := nc.networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Network{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	return n, nil
}

// Networks returns all known networks sorted by name.
func (nc *NetworkConfig) Networks() []Network {
	out := make([]Network, 0, len(nc.networks))
	for _, n := range nc.networks {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsDevelopment reports whether name is an ephemeral network.
func (nc *NetworkConfig) IsDevelopment(name string) bool {
	return nc.Development.Contains(name)
}

// Params returns the raffle parameters for chainID.
func (nc *NetworkConfig) Params(chainID uint64) (ChainParams, error) {
	params, ok := nc.chains[chainID]
	if !ok {
		return ChainParams{}, fmt.Errorf("%w: no entry for chain id %d", ErrMissingNetworkConfig, chainID)
	}
	return params, nil
}

// ParamsFor resolves the parameters for an active network. Development
// networks without an entry fall back to DevelopmentDefaults.
func (nc *NetworkConfig) ParamsFor(n Network) (ChainParams, error) {
	params, err := nc.Params(n.ChainID)
	if err == nil {
		return params, nil
	}
	if n.Development {
		return DevelopmentDefaults(n.Name), nil
	}
	return ChainParams{}, err
}

// DevelopmentDefaults are the raffle parameters used on a development
// network that has no table entry.
func DevelopmentDefaults(name string) ChainParams {
	fee, _ := ParseAmount("0.01 ether")
	return ChainParams{
		Name:             name,
		EntranceFee:      fee,
		GasLane:          common.HexToHash("0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"),
		CallbackGasLimit: 500000,
		Interval:         big.NewInt(30),
	}
}

var unitExponents = map[string]int32{
	"":      0,
	"wei":   0,
	"gwei":  9,
	"ether": 18,
	"eth":   18,
}

// ParseAmount converts "0.01 ether", "25 gwei" or "1000" (wei) into wei.
func ParseAmount(s string) (*big.Int, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	unit := ""
	if len(fields) == 2 {
		unit = strings.ToLower(fields[1])
	}
	exp, ok := unitExponents[unit]
	if !ok {
		return nil, fmt.Errorf("unknown unit %q in amount %q", unit, s)
	}

	value, err := decimal.NewFromString(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", s)
	}

	wei := value.Shift(exp)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %q is not a whole number of wei", s)
	}
	return wei.BigInt(), nil
}

// MustParseAmount is ParseAmount for constants.
func MustParseAmount(s string) *big.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}
