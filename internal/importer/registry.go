package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Registry is the assistant's project registry document: a JSON mapping of
// project path to last-known metadata.
type Registry struct {
	Projects map[string]ProjectMeta `json:"projects"`
}

// ProjectMeta is the per-project metadata snapshot from the registry.
type ProjectMeta struct {
	LastCost       *float64        `json:"lastCost"`
	LastSessionID  string          `json:"lastSessionId"`
	LastModelUsage json.RawMessage `json:"lastModelUsage"`
}

// LoadRegistry reads the registry file. A missing file returns (nil, nil):
// the import pass is then a no-op.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}
