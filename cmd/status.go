package cmd

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mathew-harvey/autodeploy/internal/manifest"
	"github.com/mathew-harvey/autodeploy/internal/models"
	"github.com/mathew-harvey/autodeploy/internal/output"
)

var statusFilter string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the manifest dashboard",
	Long: `Show every repository recorded in the manifest with its current status,
category, and deploy URL. Reads the manifest only; never touches the
network.`,
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

		if len(m.Projects) == 0 {
			ui.Info("No repositories tracked yet. Run 'autodeploy run' first.")
			return nil
		}

		names := make([]string, 0, len(m.Projects))
		for name := range m.Projects {
			names = append(names, name)
		}
		sort.Strings(names)

		counts := map[models.ProjectStatus]int{}
		table := ui.Table([]string{"Repository", "Status", "Category", "Detail", "URL"})

		for _, name := range names {
			rec := m.Projects[name]
			counts[rec.Status]++

			if statusFilter != "" && string(rec.Status) != statusFilter {
				continue
			}

			detail := rec.SkipReason
			if detail == "" {
				detail = rec.Error
			}
			if detail == "" {
				detail = "-"
			}

			_ = table.Append([]string{
				output.Cyan(rec.Name),
				output.StatusColor(rec.Status),
				rec.Category,
				detail,
				rec.DeployURL,
			})
		}

		_ = table.Render()

		ui.Info("%s deployed, %s already live, %s skipped, %s failed (%d total)",
			output.Green(strconv.Itoa(counts[models.StatusDeployed])),
			output.Green(strconv.Itoa(counts[models.StatusAlreadyLive])),
			output.Cyan(strconv.Itoa(counts[models.StatusSkipped])),
			output.Red(strconv.Itoa(counts[models.StatusFailed])),
			len(m.Projects))

		if m.PortfolioURL != "" {
			ui.Info("Portfolio: %s", m.PortfolioURL)
		}
		if m.LastRun != "" {
			ui.VerboseLog("Last run %s (id %s)", m.LastRun, m.LastRunID)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFilter, "filter", "", "Show only records with this status (e.g. failed)")
	rootCmd.AddCommand(statusCmd)
}
