package engines

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Gate decides whether an engine may run at all. The ledger core neither
// implements nor depends on the gating policy; it only honors the answer
// before the execution contract starts.
type Gate interface {
	Enabled(engineID string) bool
}

// StaticGate is a file-backed gate: a YAML registry of known engine ids and
// their enabled flags. Unknown engine ids are disabled. Dynamic toggling is
// out of scope; operators edit the file and restart.
type StaticGate struct {
	enabled map[string]bool
}

type gateFile struct {
	Engines []struct {
		ID      string `yaml:"id"`
		Enabled bool   `yaml:"enabled"`
	} `yaml:"engines"`
}

// LoadStaticGate reads the engine registry from a YAML file.
func LoadStaticGate(path string) (*StaticGate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine registry: %w", err)
	}

	var file gateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse engine registry: %w", err)
	}

	gate := &StaticGate{enabled: make(map[string]bool, len(file.Engines))}
	for _, entry := range file.Engines {
		if entry.ID == "" {
			return nil, fmt.Errorf("engine registry entry with empty id")
		}
		gate.enabled[entry.ID] = entry.Enabled
	}
	return gate, nil
}

// Enabled reports whether the engine id is known and switched on.
func (g *StaticGate) Enabled(engineID string) bool {
	return g.enabled[engineID]
}

var _ Gate = (*StaticGate)(nil)
