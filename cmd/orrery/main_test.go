package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChristopherRabotin/orrery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(orrery.ConfigEnv, "")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{"--config", t.TempDir(), "--log-file", filepath.Join(t.TempDir(), "orrery.log")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestPositions(t *testing.T) {
	out, err := execute(t, "positions", "--at", "2017-03-20 14:45:00")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# 2017-03-20 14:45:00 (JD 2457833.114583)"), out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	assert.Contains(t, lines[2], "Sun")
	assert.Contains(t, lines[2], "circular")
	for _, line := range lines[3:] {
		assert.Contains(t, line, "elements")
	}
	t.Logf("[OK] %d bodies", len(lines)-2)
}

func TestPositionsBodyFilter(t *testing.T) {
	out, err := execute(t, "positions", "--jde", "2451545", "--body", "earth", "--body", "MARS")
	require.NoError(t, err)
	assert.Contains(t, out, "Earth")
	assert.Contains(t, out, "Mars")
	assert.NotContains(t, out, "Jupiter")
	assert.NotContains(t, out, "Sun")

	_, err = execute(t, "positions", "--body", "vulcan")
	assert.EqualError(t, err, "undefined body 'vulcan'")
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	out, err := execute(t, "export", "test", "--dir", dir, "--at", "2017-03-20 14:45:00")
	require.NoError(t, err)
	catalog := filepath.Join(dir, "catalog-test.json")
	assert.Equal(t, "Saving file to "+catalog+".\n", out)
	_, err = os.Stat(catalog)
	require.NoError(t, err)
	traces, err := filepath.Glob(filepath.Join(dir, "trace-test-*.xyzv"))
	require.NoError(t, err)
	assert.Len(t, traces, len(orrery.Bodies()))
}

func TestInvalidDate(t *testing.T) {
	_, err := execute(t, "positions", "--at", "yesterday")
	assert.Error(t, err)
}
