package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mathew-harvey/autodeploy/internal/agent"
	"github.com/mathew-harvey/autodeploy/internal/deploy"
	"github.com/mathew-harvey/autodeploy/internal/gitops"
	"github.com/mathew-harvey/autodeploy/internal/manifest"
	"github.com/mathew-harvey/autodeploy/internal/orchestrator"
	"github.com/mathew-harvey/autodeploy/internal/output"
	"github.com/mathew-harvey/autodeploy/internal/portfolio"
	"github.com/mathew-harvey/autodeploy/internal/probe"
	"github.com/mathew-harvey/autodeploy/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep every repository: classify, complete, deploy",
	Long: `Fetches all repositories of the configured account and processes each
one sequentially. Repositories that are already live are recorded and
left untouched. The rest are classified, completed by the coding agent
where needed, pushed, and deployed. Progress is checkpointed to the
manifest after every repository, so an interrupted run resumes where it
stopped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ui.Info("autodeploy %s (%s, %s)", buildVersion, buildCommit, buildDate)
		ui.Info("Account: %s | Workspace: %s", output.Cyan(cfg.GitHubUsername), cfg.Workspace)
		if cfg.DryRun {
			ui.Warning("Dry run: cataloging only, no clones, completions, or deploys")
		}

		git := gitops.NewClient(cfg.GitHubUsername, cfg.GitHubToken)
		src := source.NewGitHubClient(cfg.GitHubUsername, cfg.GitHubToken)
		worker := agent.NewCLIAgent(cfg.AgentCommand)
		renderer := deploy.NewClient(cfg.RenderAPIKey, cfg.RenderOwnerID, cfg.ServicePrefix)

		pf := portfolio.New(cfg, ui)
		pf.Source = src
		pf.Git = git
		pf.Deployer = renderer

		orch := orchestrator.New(cfg, ui)
		orch.Store = manifest.NewFileStore(cfg.ManifestPath())
		orch.Source = src
		orch.Probe = probe.New(cfg.GitHubUsername, cfg.ServicePrefix)
		orch.Git = git
		orch.Agent = worker
		orch.Retry = &deploy.Retryer{
			Deployer:      renderer,
			Agent:         worker,
			Git:           git,
			UI:            ui,
			ServicePrefix: cfg.ServicePrefix,
		}
		orch.Portfolio = pf

		sum, err := orch.Run(cmd.Context())
		if err != nil {
			return err
		}

		printSummary(sum)
		return nil
	},
}

func printSummary(sum *orchestrator.Summary) {
	ui.Info("Sweep complete: %d repositories processed", sum.Processed)

	table := ui.Table([]string{"Outcome", "Count"})
	_ = table.Append([]string{output.Green("deployed"), strconv.Itoa(sum.Deployed)})
	_ = table.Append([]string{output.Green("already-live"), strconv.Itoa(sum.AlreadyLive)})
	_ = table.Append([]string{output.Cyan("skipped"), strconv.Itoa(sum.Skipped)})
	_ = table.Append([]string{output.Red("failed"), strconv.Itoa(sum.Failed)})
	_ = table.Render()

	if sum.PortfolioURL != "" {
		ui.Success("Portfolio: %s", sum.PortfolioURL)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
