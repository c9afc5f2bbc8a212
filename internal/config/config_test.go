package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tampergen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.History.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
seed: 1234
format: JSON
verbose: 2
parallel: true
only:
  - original
  - base64_encode
history:
  path: /tmp/history.db
metrics:
  textfile: /tmp/tampergen.prom
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 2, cfg.Verbose)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"original", "base64_encode"}, cfg.Only)
	assert.Equal(t, "/tmp/history.db", cfg.History.Path)
	assert.Equal(t, "/tmp/tampergen.prom", cfg.Metrics.Textfile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "seed: 1\nformat: yaml\n")
	t.Setenv("TAMPERGEN_SEED", "99")
	t.Setenv("TAMPERGEN_HISTORY__PATH", "env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed, "seed from environment")
	assert.Equal(t, "yaml", cfg.Format, "format from file")
	assert.Equal(t, "env.db", cfg.History.Path)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "format: [\n"))
	assert.Error(t, err)
}

// Out-of-range values load cleanly so that flags can still replace them;
// Validate is what rejects them.
func TestLoad_DoesNotValidate(t *testing.T) {
	cases := []struct {
		body string
		fix  func(*Config)
	}{
		{"format: xml\n", func(c *Config) { c.Format = "json" }},
		{"verbose: 7\n", func(c *Config) { c.Verbose = 1 }},
		{"workers: -3\n", func(c *Config) { c.Workers = 2 }},
	}
	for _, c := range cases {
		cfg, err := Load(writeFile(t, c.body))
		require.NoError(t, err, "Load(%q)", c.body)
		assert.Error(t, cfg.Validate(), "Validate after Load(%q)", c.body)

		c.fix(&cfg)
		assert.NoError(t, cfg.Validate(), "Validate after override of %q", c.body)
	}
}

func TestLoad_EnvInvalidThenOverridden(t *testing.T) {
	t.Setenv("TAMPERGEN_FORMAT", "xml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.Format)

	cfg.Format = "yaml"
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_Workers(t *testing.T) {
	cases := []struct {
		parallel bool
		workers  int
		want     int
	}{
		{false, 0, 4},
		{false, 8, 8},
		{true, 0, 4},
		{true, 8, 8},
	}
	for _, c := range cases {
		cfg := Config{Parallel: c.parallel, Workers: c.workers}
		ApplyDefaults(&cfg)
		assert.Equal(t, c.want, cfg.Workers, "parallel=%v workers=%d", c.parallel, c.workers)
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := Config{Workers: -2}
	ApplyDefaults(&cfg)
	assert.Error(t, cfg.Validate())
}
