package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownToken_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEADHUNT_SHUTDOWN_TOKEN", "fixed")

	tok, err := shutdownToken(dir)
	require.NoError(t, err)
	assert.Equal(t, "fixed", tok)

	b, err := os.ReadFile(filepath.Join(dir, tokenFile))
	require.NoError(t, err)
	assert.Equal(t, "fixed", strings.TrimSpace(string(b)))
}

func TestShutdownToken_Random(t *testing.T) {
	t.Setenv("LEADHUNT_SHUTDOWN_TOKEN", "")

	a, err := shutdownToken(t.TempDir())
	require.NoError(t, err)
	b, err := shutdownToken(t.TempDir())
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "check", "add", "discover", "leads"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("data-dir"))
}
