package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings for a sweep, resolved once at startup.
// Components receive it (or the fields they need) explicitly; nothing
// reads the environment after Load returns.
type Config struct {
	// Source host
	GitHubUsername string
	GitHubToken    string

	// Deployment provider
	RenderAPIKey  string
	RenderOwnerID string
	ServicePrefix string

	// Completion agent
	AgentCommand  string
	AgentMaxTurns int

	// Run behavior
	Workspace    string
	SkipExisting bool
	DryRun       bool

	PortfolioRepoName string
}

// SetDefaults registers every config key with viper. Called from the cobra
// initializer so flags and env vars layer on top.
func SetDefaults() {
	home, _ := os.UserHomeDir()

	viper.SetDefault("github.username", "")
	viper.SetDefault("github.token", "")
	viper.SetDefault("render.api_key", "")
	viper.SetDefault("render.owner_id", "")
	viper.SetDefault("service_prefix", "app")
	viper.SetDefault("agent.command", "claude")
	viper.SetDefault("agent.max_turns", 30)
	viper.SetDefault("workspace", filepath.Join(home, "auto-deployer-workspace"))
	viper.SetDefault("skip_existing", true)
	viper.SetDefault("dry_run", false)
	viper.SetDefault("portfolio.repo_name", "portfolio")
}

// Load builds the immutable Config from viper state. A local .env file is
// loaded first so the tool works the same cross-platform.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// .env / raw environment variables use the flat legacy names.
	bindLegacyEnv("github.username", "GITHUB_USERNAME")
	bindLegacyEnv("github.token", "GITHUB_TOKEN")
	bindLegacyEnv("render.api_key", "RENDER_API_KEY")
	bindLegacyEnv("render.owner_id", "RENDER_OWNER_ID")
	bindLegacyEnv("agent.max_turns", "AGENT_MAX_TURNS")
	bindLegacyEnv("workspace", "WORKSPACE")
	bindLegacyEnv("skip_existing", "SKIP_EXISTING")
	bindLegacyEnv("dry_run", "DRY_RUN")
	bindLegacyEnv("service_prefix", "SERVICE_PREFIX")

	cfg := &Config{
		GitHubUsername:    viper.GetString("github.username"),
		GitHubToken:       viper.GetString("github.token"),
		RenderAPIKey:      viper.GetString("render.api_key"),
		RenderOwnerID:     viper.GetString("render.owner_id"),
		ServicePrefix:     viper.GetString("service_prefix"),
		AgentCommand:      viper.GetString("agent.command"),
		AgentMaxTurns:     viper.GetInt("agent.max_turns"),
		Workspace:         viper.GetString("workspace"),
		SkipExisting:      viper.GetBool("skip_existing"),
		DryRun:            viper.GetBool("dry_run"),
		PortfolioRepoName: viper.GetString("portfolio.repo_name"),
	}

	if cfg.GitHubUsername == "" {
		return nil, fmt.Errorf("github.username (GITHUB_USERNAME) is required")
	}
	if cfg.AgentMaxTurns <= 0 {
		cfg.AgentMaxTurns = 30
	}

	return cfg, nil
}

// ManifestPath is the ledger location inside the workspace.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Workspace, "manifest.json")
}

// ReposDir is where working copies are cloned.
func (c *Config) ReposDir() string {
	return filepath.Join(c.Workspace, "repos")
}

// GIFsDir is where the external capture step writes preview GIFs.
func (c *Config) GIFsDir() string {
	return filepath.Join(c.Workspace, "gifs")
}

func bindLegacyEnv(key, env string) {
	if v := os.Getenv(env); v != "" {
		viper.Set(key, v)
	}
}
