package configpaths_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/configpaths"
)

func TestCandidatePathsPriority(t *testing.T) {
	jsonPaths, yamlPaths, tomlPaths := configpaths.CandidatePaths("custom.yml", "/work", "/home/u/.config/nge", "")

	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "custom.yml", yamlPaths[0])
	assert.Equal(t, filepath.Join("/work", "nge.json"), jsonPaths[0])
	assert.Contains(t, tomlPaths, filepath.Join("/home/u/.config/nge", "serve.toml"))
	assert.NotContains(t, jsonPaths, filepath.Join("/etc/nge", "nge.json"))

	// working directory before config home
	assert.Less(t, indexOf(jsonPaths, "/work/config.json"), indexOf(jsonPaths, "/home/u/.config/nge/config.json"))
}

func TestCandidatePathsUnknownExtension(t *testing.T) {
	jsonPaths, _, _ := configpaths.CandidatePaths("nge.conf", "/w", "", "/etc/nge")
	assert.Equal(t, "nge.conf", jsonPaths[0])
	assert.Contains(t, jsonPaths, filepath.Join("/etc/nge", "watch.json"))
}

func TestDefaultNamedConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("AppData", "/appdata")
	p, err := configpaths.DefaultNamedConfigPath("serve", "yml")
	require.NoError(t, err)
	assert.Equal(t, "serve.yaml", filepath.Base(p))
	assert.Equal(t, "nge", filepath.Base(filepath.Dir(p)))
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
