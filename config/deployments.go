package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type DeploymentRecord struct {
	RunID           string    `json:"run_id"`
	Name            string    `json:"name"`
	Network         string    `json:"network"`
	ChainID         uint64    `json:"chain_id"`
	Address         string    `json:"address"`
	DeployerAddress string    `json:"deployer_address"`
	TxHash          string    `json:"txhash"`
	ConstructorArgs []string  `json:"constructor_args,omitempty"`
	Verified        bool      `json:"verified"`
	DeployedAt      time.Time `json:"deployed_at"`
}

func DeploymentsPath(workspace string) string {
	return filepath.Join(workspace, "deployments.json")
}

// LoadDeploymentRecords reads deployment records from deployments.json
func LoadDeploymentRecords(deploymentsPath string) ([]DeploymentRecord, error) {
	if _, err := os.Stat(deploymentsPath); os.IsNotExist(err) {
		return []DeploymentRecord{}, nil
	}

	data, err := os.ReadFile(deploymentsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployments: %w", err)
	}

	var deployments []DeploymentRecord
	if err := json.Unmarshal(data, &deployments); err != nil {
		return nil, fmt.Errorf("failed to parse deployments: %w", err)
	}

	return deployments, nil
}

// AppendDeploymentRecords adds records to deployments.json, creating it if needed.
func AppendDeploymentRecords(deploymentsPath string, records ...DeploymentRecord) error {
	deployments, err := LoadDeploymentRecords(deploymentsPath)
	if err != nil {
		return err
	}
	deployments = append(deployments, records...)

	data, err := json.MarshalIndent(deployments, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployments: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(deploymentsPath), 0755); err != nil {
		return fmt.Errorf("failed to ensure deployments dir: %w", err)
	}

	if err := os.WriteFile(deploymentsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write deployments file: %w", err)
	}
	return nil
}

// FindDeployment returns the most recent record for name, optionally limited
// to one network.
func FindDeployment(deployments []DeploymentRecord, name, network string) (DeploymentRecord, bool) {
	for i := len(deployments) - 1; i >= 0; i-- {
		d := deployments[i]
		if !strings.EqualFold(d.Name, name) {
			continue
		}
		if network != "" && !strings.EqualFold(d.Network, network) {
			continue
		}
		return d, true
	}
	return DeploymentRecord{}, false
}
