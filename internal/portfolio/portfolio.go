// Package portfolio generates the static portfolio site from the manifest
// and publishes it like any other project.
package portfolio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mathew-harvey/autodeploy/internal/config"
	"github.com/mathew-harvey/autodeploy/internal/deploy"
	"github.com/mathew-harvey/autodeploy/internal/models"
	"github.com/mathew-harvey/autodeploy/internal/output"
)

// RepoCreator ensures the portfolio repository exists on the source host.
type RepoCreator interface {
	CreateRepo(ctx context.Context, name, description string) error
}

// DirPublisher pushes a generated directory to the source host.
type DirPublisher interface {
	PublishDir(dir, repoName string) error
}

// Generator builds and publishes the portfolio site.
type Generator struct {
	Cfg      *config.Config
	UI       *output.UI
	Source   RepoCreator
	Git      DirPublisher
	Deployer deploy.Deployer

	now func() time.Time
}

// New returns a portfolio generator.
func New(cfg *config.Config, ui *output.UI) *Generator {
	return &Generator{Cfg: cfg, UI: ui, now: time.Now}
}

// Dir is where the portfolio site is generated inside the workspace.
func (g *Generator) Dir() string {
	return filepath.Join(g.Cfg.Workspace, g.Cfg.PortfolioRepoName)
}

// Generate writes index.html and render.yaml for the portfolio into the
// workspace, copying preview GIFs alongside.
func (g *Generator) Generate(m *models.Manifest) (string, error) {
	dir := g.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create portfolio dir: %w", err)
	}

	projects := g.selectProjects(m)
	g.copyGIFs(dir)

	when := time.Now
	if g.now != nil {
		when = g.now
	}
	html, err := renderIndex(projects, g.Cfg.GitHubUsername, when().UTC())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write index.html: %w", err)
	}

	descriptor := deploy.StaticDescriptor(g.Cfg.PortfolioRepoName)
	if err := os.WriteFile(filepath.Join(dir, deploy.DescriptorFile), []byte(descriptor), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", deploy.DescriptorFile, err)
	}

	g.UI.Info("Portfolio site generated at %s (%d projects)", dir, len(projects))
	return dir, nil
}

// Publish regenerates the site, pushes it to its own repository, and
// deploys it. Dry runs stop after generation.
func (g *Generator) Publish(ctx context.Context, m *models.Manifest) (string, error) {
	dir, err := g.Generate(m)
	if err != nil {
		return "", err
	}

	if g.Cfg.DryRun {
		g.UI.DryRunMsg("Would publish and deploy portfolio from %s", dir)
		return "", nil
	}

	repoName := g.Cfg.PortfolioRepoName
	if g.Source != nil {
		if err := g.Source.CreateRepo(ctx, repoName, "Unified developer portfolio"); err != nil {
			g.UI.Warning("Portfolio repo create: %v", err)
		}
	}
	if err := g.Git.PublishDir(dir, repoName); err != nil {
		return "", err
	}

	record := &models.ProjectRecord{
		Name:      repoName,
		GitHubURL: fmt.Sprintf("https://github.com/%s/%s", g.Cfg.GitHubUsername, repoName),
		Category:  "portfolio",
	}
	url, errMsg := g.Deployer.Deploy(ctx, record, dir)
	if errMsg != "" {
		return "", fmt.Errorf("deploy portfolio: %s", errMsg)
	}
	return url, nil
}

// selectProjects picks the records worth showing, sorted by category then
// name.
func (g *Generator) selectProjects(m *models.Manifest) []*models.ProjectRecord {
	var projects []*models.ProjectRecord
	for name, rec := range m.Projects {
		switch rec.Status {
		case models.StatusDeployed, models.StatusCompleted, models.StatusAlreadyLive:
		default:
			continue
		}
		p := *rec
		if p.GIFURL == "" {
			if _, err := os.Stat(filepath.Join(g.Cfg.GIFsDir(), name+".gif")); err == nil {
				p.GIFURL = "gifs/" + name + ".gif"
			}
		}
		projects = append(projects, &p)
	}

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Category != projects[j].Category {
			return projects[i].Category < projects[j].Category
		}
		return projects[i].Name < projects[j].Name
	})
	return projects
}

// copyGIFs mirrors capture output into the portfolio directory.
func (g *Generator) copyGIFs(dir string) {
	entries, err := os.ReadDir(g.Cfg.GIFsDir())
	if err != nil {
		return
	}
	dest := filepath.Join(dir, "gifs")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".gif" {
			continue
		}
		if err := copyFile(filepath.Join(g.Cfg.GIFsDir(), e.Name()), filepath.Join(dest, e.Name())); err != nil {
			g.UI.Warning("Copy GIF %s: %v", e.Name(), err)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
