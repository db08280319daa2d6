package orrery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	conf, err := LoadConfig(nil, "")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Scale:          DefaultDisplayScale,
		TraceSamples:   360,
		HighlightColor: DefaultHighlightColor,
		Addr:           ":8080",
		MetricsAddr:    ":9090",
		OutputDir:      ".",
	}, conf)

	// A directory without conf.toml is not an error.
	conf, err = LoadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 360, conf.TraceSamples)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(`
[catalog]
path = "/tmp/elements.toml"

[display]
scale = 2e-6
trace_samples = 90
highlight = 0x00ffff

[server]
addr = "127.0.0.1:8888"
`), 0o644))
	t.Setenv(ConfigEnv, dir)
	conf, err := LoadConfig(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elements.toml", conf.CatalogPath)
	assert.Equal(t, 2e-6, conf.Scale)
	assert.Equal(t, 90, conf.TraceSamples)
	assert.Equal(t, uint32(0x00ffff), conf.HighlightColor)
	assert.Equal(t, "127.0.0.1:8888", conf.Addr)
	assert.Equal(t, ":9090", conf.MetricsAddr)
}

func TestLoadConfigInvalid(t *testing.T) {
	for name, src := range map[string]string{
		"scale":     "[display]\nscale = -1",
		"samples":   "[display]\ntrace_samples = 0",
		"highlight": "[display]\nhighlight = 0x1000000",
		"syntax":    "[display\nscale = ",
	} {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(src), 0o644))
		_, err := LoadConfig(nil, dir)
		assert.Error(t, err, name)
	}
}
