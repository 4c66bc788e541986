package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ".", c.OutputDir)
	assert.Equal(t, "all_cases", c.OutputName)
	assert.Equal(t, "4:1:1", c.AHAScheme)
	assert.Equal(t, "Data", c.XMLDataTag)
	assert.True(t, c.WriteExcel)
	assert.Equal(t, "info", c.LogLevel)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{
		OutputDir:   "out",
		GLSDir:      "gls",
		OutputName:  "cohort",
		TimingsFile: "avc.xlsx",
		AHAScheme:   "vendor-2:1",
		XMLDataTag:  "Data",
		LogLevel:    "debug",
		LogFormat:   "json",
	}
	require.NoError(t, Save(in, p))
	out, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEnvOverridesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("output_name: from_file\n"), 0o644))
	t.Setenv("ECHOLOOM_OUTPUT_NAME", "from_env")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from_env", c.OutputName)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("output_name: [unterminated\n"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)
}
