package configuration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigurationLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))

	c := &Configuration{}
	err := c.load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, "bookline_console", c.Database.Name)
	require.Equal(t, 50, c.Assignments.HistoryDepth)
	require.Equal(t, "localhost:3200", c.SocketAddress)
	require.Contains(t, c.Database.Opts, "dbname=bookline_console")
	require.NotNil(t, c.Logger())
}

func TestConfigurationRejectsNonPositiveHistoryDepth(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("ASSIGNMENTS_HISTORY_DEPTH", "0")

	c := &Configuration{}
	err := c.load(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ASSIGNMENTS_HISTORY_DEPTH")
}
