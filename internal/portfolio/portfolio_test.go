package portfolio

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathew-harvey/autodeploy/internal/config"
	"github.com/mathew-harvey/autodeploy/internal/deploy"
	"github.com/mathew-harvey/autodeploy/internal/models"
	"github.com/mathew-harvey/autodeploy/internal/output"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	cfg := &config.Config{
		GitHubUsername:    "alice",
		ServicePrefix:     "app",
		Workspace:         t.TempDir(),
		PortfolioRepoName: "portfolio",
	}
	ui := &output.UI{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	g := New(cfg, ui)
	g.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return g
}

func sampleManifest() *models.Manifest {
	m := models.NewManifest()
	m.Put(&models.ProjectRecord{
		Name: "beta", Status: models.StatusDeployed, Category: "web-app",
		GitHubURL: "https://github.com/alice/beta",
		DeployURL: "https://app-beta.onrender.com",
		TechStack: []string{"JavaScript", "React"},
	})
	m.Put(&models.ProjectRecord{
		Name: "alpha", Status: models.StatusAlreadyLive, Category: "static-site",
		GitHubURL: "https://github.com/alice/alpha",
		DeployURL: "https://alice.github.io/alpha/",
	})
	m.Put(&models.ProjectRecord{
		Name: "broken", Status: models.StatusFailed,
		GitHubURL: "https://github.com/alice/broken",
	})
	m.Put(&models.ProjectRecord{
		Name: "meh", Status: models.StatusSkipped, SkipReason: "Fork",
		GitHubURL: "https://github.com/alice/meh",
	})
	return m
}

func TestSelectProjects(t *testing.T) {
	g := testGenerator(t)
	projects := g.selectProjects(sampleManifest())

	require.Len(t, projects, 2, "failed and skipped records never show")
	// Sorted by category, then name.
	assert.Equal(t, "alpha", projects[0].Name)
	assert.Equal(t, "beta", projects[1].Name)
}

func TestSelectProjects_PicksUpGIFs(t *testing.T) {
	g := testGenerator(t)
	require.NoError(t, os.MkdirAll(g.Cfg.GIFsDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(g.Cfg.GIFsDir(), "alpha.gif"), []byte("gif"), 0o644))

	projects := g.selectProjects(sampleManifest())
	require.Len(t, projects, 2)
	assert.Equal(t, "gifs/alpha.gif", projects[0].GIFURL)
	assert.Empty(t, projects[1].GIFURL)
}

func TestGenerate_WritesSiteFiles(t *testing.T) {
	g := testGenerator(t)

	dir, err := g.Generate(sampleManifest())
	require.NoError(t, err)
	assert.Equal(t, g.Dir(), dir)

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	page := string(html)

	assert.Contains(t, page, "alpha")
	assert.Contains(t, page, "beta")
	assert.NotContains(t, page, "broken")
	assert.Contains(t, page, "https://app-beta.onrender.com")
	assert.Contains(t, page, "React")
	assert.Contains(t, page, "alice")

	desc, err := os.ReadFile(filepath.Join(dir, deploy.DescriptorFile))
	require.NoError(t, err)
	assert.Contains(t, string(desc), "name: portfolio")
	assert.Contains(t, string(desc), "runtime: static")
}

func TestGenerate_CopiesGIFs(t *testing.T) {
	g := testGenerator(t)
	require.NoError(t, os.MkdirAll(g.Cfg.GIFsDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(g.Cfg.GIFsDir(), "alpha.gif"), []byte("gif"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(g.Cfg.GIFsDir(), "notes.txt"), []byte("x"), 0o644))

	dir, err := g.Generate(sampleManifest())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "gifs", "alpha.gif"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "gifs", "notes.txt"))
	assert.True(t, os.IsNotExist(err), "only GIFs are copied")
}

func TestPublish_DryRunStopsAfterGenerate(t *testing.T) {
	g := testGenerator(t)
	g.Cfg.DryRun = true
	// No Source, Git, or Deployer wired: a dry run must not need them.

	url, err := g.Publish(context.Background(), sampleManifest())
	require.NoError(t, err)
	assert.Empty(t, url)

	_, err = os.Stat(filepath.Join(g.Dir(), "index.html"))
	assert.NoError(t, err)
}

func TestPublish_FullFlow(t *testing.T) {
	g := testGenerator(t)
	src := &stubRepoCreator{}
	git := &stubPublisher{}
	dep := &stubDeployer{url: "https://app-portfolio.onrender.com"}
	g.Source = src
	g.Git = git
	g.Deployer = dep

	url, err := g.Publish(context.Background(), sampleManifest())
	require.NoError(t, err)

	assert.Equal(t, "https://app-portfolio.onrender.com", url)
	assert.Equal(t, "portfolio", src.name)
	assert.Equal(t, "portfolio", git.repoName)
	assert.Equal(t, "portfolio", dep.project.Name)
	assert.Equal(t, "portfolio", dep.project.Category)
}

func TestPublish_DeployFailure(t *testing.T) {
	g := testGenerator(t)
	g.Git = &stubPublisher{}
	g.Deployer = &stubDeployer{errMsg: "render API 400: nope"}

	_, err := g.Publish(context.Background(), sampleManifest())
	assert.Error(t, err)
}

func TestMonogram(t *testing.T) {
	assert.Equal(t, "WA", Monogram("weather-app"))
	assert.Equal(t, "MCT", Monogram("my-cool-tool-kit"))
	assert.Equal(t, "S", Monogram("solo"))
	assert.Equal(t, "AB", Monogram("a_b"))
}

func TestRenderIndex_Stats(t *testing.T) {
	projects := []*models.ProjectRecord{
		{Name: "a", Status: models.StatusAlreadyLive, Category: "api", TechStack: []string{"Python"}},
		{Name: "b", Status: models.StatusDeployed, Category: "web-app", TechStack: []string{"Python", "React"}},
	}

	page, err := renderIndex(projects, "alice", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, page, "2025-06-01")
	assert.Contains(t, page, "https://github.com/alice")
	// One project is a fresh deploy, one was already live.
	assert.Contains(t, page, `class="status live"`)
	assert.Contains(t, page, `class="status new"`)
}

// ---- stubs ----

type stubRepoCreator struct{ name string }

func (s *stubRepoCreator) CreateRepo(_ context.Context, name, _ string) error {
	s.name = name
	return nil
}

type stubPublisher struct{ repoName string }

func (s *stubPublisher) PublishDir(_, repoName string) error {
	s.repoName = repoName
	return nil
}

type stubDeployer struct {
	url     string
	errMsg  string
	project *models.ProjectRecord
}

func (s *stubDeployer) Deploy(_ context.Context, project *models.ProjectRecord, _ string) (string, string) {
	s.project = project
	return s.url, s.errMsg
}
