package engines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGateFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engines.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStaticGate(t *testing.T) {
	path := writeGateFile(t, `
engines:
  - id: csrd
    enabled: true
  - id: forensics
    enabled: false
`)

	gate, err := LoadStaticGate(path)
	require.NoError(t, err)

	assert.True(t, gate.Enabled("csrd"))
	assert.False(t, gate.Enabled("forensics"))
}

func TestUnknownEnginesAreDisabled(t *testing.T) {
	path := writeGateFile(t, "engines:\n  - id: csrd\n    enabled: true\n")

	gate, err := LoadStaticGate(path)
	require.NoError(t, err)

	assert.False(t, gate.Enabled("litigation"))
	assert.False(t, gate.Enabled(""))
}

func TestLoadStaticGateRejectsBadInput(t *testing.T) {
	_, err := LoadStaticGate(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeGateFile(t, "engines:\n  - enabled: true\n")
	_, err = LoadStaticGate(path)
	assert.Error(t, err, "entries without an id are rejected")

	path = writeGateFile(t, "engines: [not, a, mapping")
	_, err = LoadStaticGate(path)
	assert.Error(t, err)
}
