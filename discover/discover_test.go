package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogContents(t *testing.T) {
	specs := Catalog()
	require.Len(t, specs, 4)

	names := make(map[string]ToolSpec, len(specs))
	for _, s := range specs {
		names[s.Name] = s
	}

	require.Contains(t, names, "git")
	assert.True(t, names["git"].Required, "only git is required")

	for _, optional := range []string{"detect-secrets", "nuclei", "testssl.sh"} {
		require.Contains(t, names, optional)
		assert.False(t, names[optional].Required, optional)
		assert.NotEmpty(t, names[optional].InstallHint, optional)
	}
}

func TestProbeEmptyPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	result := Probe()
	require.Len(t, result.Tools, 4)
	assert.Equal(t, 0, result.Available())
	for _, tool := range result.Tools {
		assert.False(t, tool.Available)
		assert.Empty(t, tool.Path)
	}
}

func TestProbeFindsStubbedBinary(t *testing.T) {
	bin := t.TempDir()
	stub := filepath.Join(bin, "nuclei")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\necho 'Nuclei Engine Version: v3.0.0'\n"), 0o755))
	t.Setenv("PATH", bin)

	result := Probe()
	assert.Equal(t, 1, result.Available())

	for _, tool := range result.Tools {
		if tool.Name != "nuclei" {
			assert.False(t, tool.Available)
			continue
		}
		assert.True(t, tool.Available)
		assert.Equal(t, stub, tool.Path)
		assert.Contains(t, tool.Version, "v3.0.0")
	}
}

func TestProbeVersionMisbehavingBinary(t *testing.T) {
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "detect-secrets"), []byte("#!/bin/sh\nexit 7\n"), 0o755))
	t.Setenv("PATH", bin)

	result := Probe()
	for _, tool := range result.Tools {
		if tool.Name == "detect-secrets" {
			assert.True(t, tool.Available)
			assert.Empty(t, tool.Version, "failed probe leaves version empty")
		}
	}
}
