package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://chess.example:8080/json-rpc
timeout: 5s
strict: true
pass_dir: /fixtures/pass
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://chess.example:8080/json-rpc", cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Strict)
	assert.Equal(t, dir, cfg.RootDir)
	assert.Equal(t, "expFailTestDir", cfg.FailDir)
	assert.Equal(t, "/fixtures/pass", cfg.Path(cfg.PassDir))
	assert.Equal(t, filepath.Join(dir, "expFailTestDir"), cfg.Path(cfg.FailDir))
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"yaml":      "endpoint: [",
		"endpoint":  "endpoint: ''",
		"timeout":   "timeout: -1s",
		"log level": "log_level: loud",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("strict: true\n"), 0o644))

	path, err := findFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), path)
}

func TestFindReportsNotExist(t *testing.T) {
	_, err := findFrom(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.Timeout)
	assert.False(t, cfg.Strict)
}
