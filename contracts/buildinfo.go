package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BuildInfo is the compiler input that produced an artifact. Block explorers
// re-run it to match the deployed bytecode.
type BuildInfo struct {
	SolcLongVersion string          `json:"solcLongVersion"`
	Input           json.RawMessage `json:"input"`
}

// CompilerVersion is the version string in explorer format ("v0.8.7+commit...").
func (b *BuildInfo) CompilerVersion() string {
	return "v" + b.SolcLongVersion
}

// FindBuildInfo searches <dir>/build-info for the compilation that contains
// sourceName.
func FindBuildInfo(dir, sourceName string) (*BuildInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "build-info", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list build-info: %w", err)
	}

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read build-info %s: %w", path, err)
		}

		var info BuildInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("failed to parse build-info %s: %w", path, err)
		}

		var input struct {
			Sources map[string]json.RawMessage `json:"sources"`
		}
		if err := json.Unmarshal(info.Input, &input); err != nil {
			continue
		}
		if _, ok := input.Sources[sourceName]; ok {
			return &info, nil
		}
	}

	return nil, fmt.Errorf("no build-info in %s contains %s", dir, sourceName)
}
