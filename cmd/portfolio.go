package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mathew-harvey/autodeploy/internal/deploy"
	"github.com/mathew-harvey/autodeploy/internal/gitops"
	"github.com/mathew-harvey/autodeploy/internal/manifest"
	"github.com/mathew-harvey/autodeploy/internal/portfolio"
	"github.com/mathew-harvey/autodeploy/internal/source"
)

var portfolioPublish bool

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Regenerate the portfolio site from the manifest",
	Long: `Rebuild the portfolio index from the current manifest without running a
sweep. By default the site is only generated into the workspace; pass
--publish to also push it to its repository and deploy it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store := manifest.NewFileStore(cfg.ManifestPath())
		m, err := store.Load()
		if err != nil {
			return err
		}

		pf := portfolio.New(cfg, ui)

		if !portfolioPublish {
			dir, err := pf.Generate(m)
			if err != nil {
				return err
			}
			ui.Success("Portfolio generated at %s (not published)", dir)
			return nil
		}

		git := gitops.NewClient(cfg.GitHubUsername, cfg.GitHubToken)
		pf.Source = source.NewGitHubClient(cfg.GitHubUsername, cfg.GitHubToken)
		pf.Git = git
		pf.Deployer = deploy.NewClient(cfg.RenderAPIKey, cfg.RenderOwnerID, cfg.ServicePrefix)

		url, err := pf.Publish(cmd.Context(), m)
		if err != nil {
			return err
		}
		if url != "" {
			m.PortfolioURL = url
			if err := store.Save(m); err != nil {
				ui.Warning("Manifest save failed: %v", err)
			}
			ui.Success("Portfolio live at %s", url)
		}
		return nil
	},
}

func init() {
	portfolioCmd.Flags().BoolVar(&portfolioPublish, "publish", false, "Push and deploy the generated site")
	rootCmd.AddCommand(portfolioCmd)
}
