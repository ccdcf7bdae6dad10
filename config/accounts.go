package config

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/filecoin-project/go-address"
)

// DeployerAccount is the named account every stage sends from.
const DeployerAccount = "deployer"

// DevelopmentKey is the first prefunded account of hardhat and anvil nodes.
// Never use it on a public network.
const DevelopmentKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var ErrUnknownAccount = errors.New("unknown account")

// AccountInfo holds account details for JSON serialization
type AccountInfo struct {
	Address    string `json:"address,omitempty"`
	EthAddress string `json:"ethAddress"`
	PrivateKey string `json:"privateKey"`
}

// AccountsFile holds the structure of accounts.json
type AccountsFile struct {
	Accounts map[string]AccountInfo `json:"accounts"`
}

// Accounts resolves named accounts to signing keys.
type Accounts struct {
	keys map[string]*ecdsa.PrivateKey
}

func NewAccounts() *Accounts {
	return &Accounts{keys: make(map[string]*ecdsa.PrivateKey)}
}

// Add registers a hex private key under name.
func (a *Accounts) Add(name, privateKey string) error {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to parse key for account %s: %w", name, err)
	}
	a.keys[name] = key
	return nil
}

// Key returns the private key of a named account.
func (a *Accounts) Key(name string) (*ecdsa.PrivateKey, error) {
	key, ok := a.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
	}
	return key, nil
}

// Address returns the address of a named account.
func (a *Accounts) Address(name string) (common.Address, error) {
	key, err := a.Key(name)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// LoadAccounts builds the named accounts for a run. An explicit private key
// becomes the deployer; otherwise workspace/accounts.json is read. On
// development networks the prefunded node key is used as a last resort.
func LoadAccounts(workspace, privateKey string, development bool) (*Accounts, error) {
	accounts := NewAccounts()

	if privateKey != "" {
		if err := accounts.Add(DeployerAccount, privateKey); err != nil {
			return nil, err
		}
		return accounts, nil
	}

	file, err := ReadAccountsFile(AccountsPath(workspace))
	if err != nil {
		return nil, err
	}
	for name, info := range file.Accounts {
		if err := accounts.Add(name, info.PrivateKey); err != nil {
			return nil, err
		}
	}

	if _, ok := accounts.keys[DeployerAccount]; !ok && development {
		if err := accounts.Add(DeployerAccount, DevelopmentKey); err != nil {
			return nil, err
		}
	}

	return accounts, nil
}

func AccountsPath(workspace string) string {
	return filepath.Join(workspace, "accounts.json")
}

// ReadAccountsFile returns an empty file when path does not exist.
func ReadAccountsFile(path string) (*AccountsFile, error) {
	file := &AccountsFile{Accounts: make(map[string]AccountInfo)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	if file.Accounts == nil {
		file.Accounts = make(map[string]AccountInfo)
	}
	return file, nil
}

// SaveAccount appends a named account to the accounts file.
func SaveAccount(path, name string, info AccountInfo) error {
	file, err := ReadAccountsFile(path)
	if err != nil {
		return err
	}

	if _, exists := file.Accounts[name]; exists {
		return fmt.Errorf("account with name '%s' already exists", name)
	}
	file.Accounts[name] = info

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	return nil
}

// FilecoinMainnetChainID is the EVM chain id of Filecoin mainnet. Every other
// chain id gets testnet ("t") addresses.
const FilecoinMainnetChainID = 314

// NewAccount generates a secp256k1 key. The Filecoin delegated (f410/t410)
// address of the same key is included, encoded for chainID, so FEVM networks
// can fund it.
func NewAccount(chainID uint64) (AccountInfo, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return AccountInfo{}, fmt.Errorf("failed to generate key: %w", err)
	}

	ethAddr := crypto.PubkeyToAddress(key.PublicKey)
	filAddr, err := DelegatedAddress(ethAddr)
	if err != nil {
		return AccountInfo{}, err
	}

	return AccountInfo{
		Address:    FilecoinAddress(filAddr, chainID),
		EthAddress: ethAddr.Hex(),
		PrivateKey: fmt.Sprintf("0x%x", crypto.FromECDSA(key)),
	}, nil
}

// DelegatedAddress maps an Ethereum address into the EAM (actor 10) namespace.
func DelegatedAddress(ethAddr common.Address) (address.Address, error) {
	filAddr, err := address.NewDelegatedAddress(10, ethAddr.Bytes())
	if err != nil {
		return address.Undef, fmt.Errorf("failed to create delegated address: %w", err)
	}
	return filAddr, nil
}

// FilecoinAddress encodes addr with the network prefix of chainID. The
// checksum does not cover the prefix, so only the first character changes.
func FilecoinAddress(addr address.Address, chainID uint64) string {
	prefix := address.TestnetPrefix
	if chainID == FilecoinMainnetChainID {
		prefix = address.MainnetPrefix
	}
	return prefix + addr.String()[1:]
}

func ParsePrivateKey(privateKeyStr string) (*ecdsa.PrivateKey, error) {
	privateKeyStr = strings.TrimPrefix(strings.TrimSpace(privateKeyStr), "0x")

	privateKeyBytes, err := hex.DecodeString(privateKeyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid hex format: %w", err)
	}

	if len(privateKeyBytes) != 32 {
		return nil, fmt.Errorf("invalid private key length: got %d bytes, want 32 bytes", len(privateKeyBytes))
	}

	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return privateKey, nil
}
