// Package contracts loads compiled contract artifacts and describes the
// on-chain interfaces the deployer talks to.
package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrArtifactNotFound = errors.New("artifact not found")

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	ContractName string
	SourceName   string
	ABI          abi.ABI
	Bytecode     []byte
}

// Deployment is what the chain returns for a contract-creation transaction.
type Deployment struct {
	Name    string
	Address common.Address
	TxHash  common.Hash
	Receipt *types.Receipt
	Args    []interface{}

	Verified bool
}

// rawArtifact covers both hardhat ("bytecode": "0x...") and foundry
// ("bytecode": {"object": "0x..."}) artifact layouts.
type rawArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     *struct {
		Settings struct {
			CompilationTarget map[string]string `json:"compilationTarget"`
		} `json:"settings"`
	} `json:"metadata"`
}

// ParseArtifact decodes a hardhat or foundry artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact abi: %w", err)
	}

	code, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{
		ContractName: raw.ContractName,
		SourceName:   raw.SourceName,
		ABI:          parsed,
		Bytecode:     code,
	}
	if raw.Metadata != nil {
		for source, name := range raw.Metadata.Settings.CompilationTarget {
			if artifact.SourceName == "" {
				artifact.SourceName = source
			}
			if artifact.ContractName == "" {
				artifact.ContractName = name
			}
		}
	}
	return artifact, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	var hexCode string
	if err := json.Unmarshal(raw, &hexCode); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("unrecognised bytecode field: %w", err)
		}
		hexCode = obj.Object
	}

	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	code, err := hexutil.Decode(hexCode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("artifact has empty bytecode (abstract contract or interface?)")
	}
	return code, nil
}

// LoadArtifact finds <name>.json below dir and parses it. Debug files and
// build-info are skipped.
func LoadArtifact(dir, name string) (*Artifact, error) {
	path, err := findArtifact(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	artifact, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if artifact.ContractName == "" {
		artifact.ContractName = name
	}
	return artifact, nil
}

func findArtifact(dir, name string) (string, error) {
	want := name + ".json"
	var found string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == want {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan artifacts in %s: %w", dir, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrArtifactNotFound, name, dir)
	}
	return found, nil
}

// DeployData is the creation bytecode followed by the ABI-encoded
// constructor arguments.
func (a *Artifact) DeployData(args ...interface{}) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s constructor args: %w", a.ContractName, err)
	}
	data := make([]byte, 0, len(a.Bytecode)+len(packed))
	data = append(data, a.Bytecode...)
	return append(data, packed...), nil
}

// EncodeConstructorArgs returns only the ABI-encoded constructor arguments.
func (a *Artifact) EncodeConstructorArgs(args ...interface{}) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s constructor args: %w", a.ContractName, err)
	}
	return packed, nil
}

// FullyQualifiedName is "<source>:<contract>", as block explorers expect.
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.ContractName
	}
	return a.SourceName + ":" + a.ContractName
}
