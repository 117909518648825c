package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestLoad_RequiresUsername(t *testing.T) {
	resetViper(t)
	t.Setenv("GITHUB_USERNAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_USERNAME")
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	resetViper(t)
	t.Setenv("GITHUB_USERNAME", "alice")
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("RENDER_API_KEY", "rk")
	t.Setenv("RENDER_OWNER_ID", "own")
	t.Setenv("SERVICE_PREFIX", "mh")
	t.Setenv("AGENT_MAX_TURNS", "50")
	t.Setenv("DRY_RUN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.GitHubUsername)
	assert.Equal(t, "tok", cfg.GitHubToken)
	assert.Equal(t, "rk", cfg.RenderAPIKey)
	assert.Equal(t, "own", cfg.RenderOwnerID)
	assert.Equal(t, "mh", cfg.ServicePrefix)
	assert.Equal(t, 50, cfg.AgentMaxTurns)
	assert.True(t, cfg.DryRun)
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	t.Setenv("GITHUB_USERNAME", "alice")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.ServicePrefix)
	assert.Equal(t, "claude", cfg.AgentCommand)
	assert.Equal(t, 30, cfg.AgentMaxTurns)
	assert.True(t, cfg.SkipExisting)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "portfolio", cfg.PortfolioRepoName)
	assert.NotEmpty(t, cfg.Workspace)
}

func TestLoad_InvalidTurnsFallsBack(t *testing.T) {
	resetViper(t)
	t.Setenv("GITHUB_USERNAME", "alice")
	t.Setenv("AGENT_MAX_TURNS", "-5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.AgentMaxTurns)
}

func TestWorkspacePaths(t *testing.T) {
	cfg := &Config{Workspace: "/tmp/ws"}

	assert.Equal(t, filepath.Join("/tmp/ws", "manifest.json"), cfg.ManifestPath())
	assert.Equal(t, filepath.Join("/tmp/ws", "repos"), cfg.ReposDir())
	assert.Equal(t, filepath.Join("/tmp/ws", "gifs"), cfg.GIFsDir())
}
