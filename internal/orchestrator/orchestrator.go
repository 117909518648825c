// Package orchestrator drives the per-repository pipeline: skip checks,
// liveness, classification, completion, push, deploy, and the durable ledger
// that makes the sweep resumable.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mathew-harvey/autodeploy/internal/agent"
	"github.com/mathew-harvey/autodeploy/internal/classify"
	"github.com/mathew-harvey/autodeploy/internal/config"
	"github.com/mathew-harvey/autodeploy/internal/deploy"
	"github.com/mathew-harvey/autodeploy/internal/gitops"
	"github.com/mathew-harvey/autodeploy/internal/manifest"
	"github.com/mathew-harvey/autodeploy/internal/models"
	"github.com/mathew-harvey/autodeploy/internal/output"
	"github.com/mathew-harvey/autodeploy/internal/probe"
	"github.com/mathew-harvey/autodeploy/internal/source"
)

// Retrier runs the self-healing deployment loop.
type Retrier interface {
	DeployWithRetry(ctx context.Context, project *models.ProjectRecord, dir string) string
}

// PortfolioPublisher regenerates and deploys the portfolio site from the
// manifest, returning its public URL.
type PortfolioPublisher interface {
	Publish(ctx context.Context, m *models.Manifest) (string, error)
}

// Summary holds the final run counts.
type Summary struct {
	Processed   int
	Deployed    int
	AlreadyLive int
	Skipped     int
	Failed      int

	PortfolioURL string
}

// Orchestrator owns the in-memory manifest for the run's duration and
// processes repositories strictly sequentially.
type Orchestrator struct {
	Cfg    *config.Config
	UI     *output.UI
	Store  manifest.Store
	Source source.Client
	Probe  probe.Finder
	Git    gitops.Client
	Agent  agent.Agent
	Retry  Retrier

	// Portfolio publishes the portfolio site after the sweep; nil disables
	// the portfolio tail.
	Portfolio PortfolioPublisher

	now func() time.Time
}

// New wires an orchestrator; the zero clock defaults to time.Now.
func New(cfg *config.Config, ui *output.UI) *Orchestrator {
	return &Orchestrator{Cfg: cfg, UI: ui, now: time.Now}
}

func (o *Orchestrator) clock() time.Time {
	if o.now == nil {
		return time.Now()
	}
	return o.now()
}

// denyList returns repository names that are never processed: the profile
// README repo and dot-config repos.
func (o *Orchestrator) denyList() map[string]bool {
	return map[string]bool{
		strings.ToLower(o.Cfg.GitHubUsername): true,
		".github":                             true,
	}
}

// Run executes the full sweep and returns the summary counts. No
// per-repository failure aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	m, err := o.Store.Load()
	if err != nil {
		return nil, err
	}

	runID := ulid.MustNew(ulid.Timestamp(o.clock()), rand.New(rand.NewSource(o.clock().UnixNano()))).String()
	m.LastRunID = runID

	reset := manifest.ResetForRetry(m)
	o.UI.Info("Run %s: reset %d repos to pending for retry", runID, reset)
	if err := o.Store.Save(m); err != nil {
		return nil, err
	}

	repos, err := o.Source.ListRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch repositories: %w", err)
	}
	o.UI.Info("Found %d repositories", len(repos))

	sum := &Summary{}
	for i, repo := range repos {
		o.UI.Info("[%d/%d] %s", i+1, len(repos), output.Cyan(repo.Name))

		rec := o.processRepo(ctx, repo, m)
		m.Put(rec)

		// Save after each repo so a crash resumes here.
		if err := o.Store.Save(m); err != nil {
			o.UI.Warning("Checkpoint save failed: %v", err)
		}

		switch rec.Status {
		case models.StatusDeployed:
			sum.Deployed++
		case models.StatusAlreadyLive:
			sum.AlreadyLive++
		case models.StatusSkipped:
			sum.Skipped++
		case models.StatusFailed:
			sum.Failed++
		}
		sum.Processed++
	}

	o.refreshPreviews(m)

	if o.Portfolio != nil {
		if url, err := o.Portfolio.Publish(ctx, m); err != nil {
			o.UI.Warning("Portfolio publish failed: %v", err)
		} else if url != "" {
			m.PortfolioURL = url
			sum.PortfolioURL = url
		}
	}

	if err := o.Store.Save(m); err != nil {
		o.UI.Warning("Final manifest save failed: %v", err)
	}

	return sum, nil
}

// processRepo runs one repository through the state machine and returns its
// ledger record. Every failure is captured on the record; nothing escapes.
func (o *Orchestrator) processRepo(ctx context.Context, repo models.Repo, m *models.Manifest) *models.ProjectRecord {
	// Sticky success states from prior runs short-circuit untouched.
	if o.Cfg.SkipExisting {
		if existing := m.Get(repo.Name); existing != nil && existing.Status.Sticky() {
			o.UI.VerboseLog("Skipping %s (already %s)", repo.Name, existing.Status)
			return existing
		}
	}

	rec := &models.ProjectRecord{
		Name:        repo.Name,
		GitHubURL:   repo.HTMLURL,
		Description: repo.Description,
		Language:    repo.Language,
		IsFork:      repo.Fork,
		Status:      models.StatusAnalysing,
	}
	if existing := m.Get(repo.Name); existing != nil {
		rec.GIFURL = existing.GIFURL
	}

	// Cheapest checks first: no network work for repos we'd never touch.
	if reason := o.skipReason(repo); reason != "" {
		rec.Status = models.StatusSkipped
		rec.SkipReason = reason
		o.UI.Info("Skipping %s: %s", repo.Name, reason)
		return rec
	}

	// Phase 0: already deployed and live somewhere?
	if live, url := o.Probe.FindExisting(ctx, repo); live {
		rec.Status = models.StatusAlreadyLive
		rec.DeployURL = url
		rec.MarkCompleted(o.clock())
		o.applyClassification(ctx, rec, repo)
		o.UI.Success("%s already live at %s (no edits made)", repo.Name, url)
		return rec
	}

	// Phase 1: classify from the file tree, zero agent cost.
	cls := o.applyClassification(ctx, rec, repo)
	o.UI.VerboseLog("Tier %d | %s | %s | %d files", cls.Tier, cls.DeployType, cls.Category, cls.FileCount)

	if cls.FileCount <= 1 {
		rec.Status = models.StatusSkipped
		rec.SkipReason = "Empty or README-only repo"
		o.UI.Info("Skipping %s: %s", repo.Name, rec.SkipReason)
		return rec
	}

	// Dry run catalogs classification results without touching anything.
	if o.Cfg.DryRun {
		rec.Status = models.StatusCompleted
		rec.MarkCompleted(o.clock())
		o.UI.DryRunMsg("Cataloged %s (tier %d)", repo.Name, cls.Tier)
		return rec
	}

	// Phase 2: clone or update the working copy.
	dir := filepath.Join(o.Cfg.ReposDir(), repo.Name)
	if err := os.MkdirAll(o.Cfg.ReposDir(), 0o755); err != nil {
		rec.Status = models.StatusFailed
		rec.Error = fmt.Sprintf("Clone failed: %v", err)
		return rec
	}
	if err := o.Git.CloneOrPull(repo, dir); err != nil {
		rec.Status = models.StatusFailed
		rec.Error = fmt.Sprintf("Clone failed: %v", err)
		o.UI.Error("Clone failed for %s: %v", repo.Name, err)
		return rec
	}

	// Phase 3: remediate, scaled by tier.
	serviceName := deploy.ServiceName(o.Cfg.ServicePrefix, repo.Name)
	if cls.Tier == classify.TierStatic {
		o.UI.VerboseLog("Tier 0: template fix, no agent")
		if err := o.quickFixStatic(dir, repo.Name, serviceName); err != nil {
			o.UI.Warning("Quick fix for %s: %v", repo.Name, err)
		}
	} else {
		prompt := agent.PolishPrompt(serviceName)
		turns := agent.PolishTurns
		if cls.Tier == classify.TierFull {
			prompt = agent.CompletePrompt(serviceName)
			turns = o.Cfg.AgentMaxTurns
		}
		o.UI.VerboseLog("Tier %d: agent completion, max %d turns", cls.Tier, turns)

		ok, _ := o.Agent.Complete(ctx, dir, prompt, turns)
		if !ok {
			rec.Status = models.StatusFailed
			rec.Error = "Completion failed"
			o.UI.Warning("Completion failed for %s", repo.Name)
			return rec
		}
	}

	// Push the working copy back. A push failure here is logged but does
	// not downgrade the completion already achieved.
	if err := o.Git.Push(dir, repo.Name); err != nil {
		o.UI.Warning("Push failed for %s: %v", repo.Name, err)
	}
	rec.Status = models.StatusCompleted

	// Phase 4: deploy with the self-healing retry loop. Failure here is
	// soft: the repo stays completed, just not deployed.
	if url := o.Retry.DeployWithRetry(ctx, rec, dir); url != "" {
		rec.Status = models.StatusDeployed
		rec.DeployURL = url
		rec.ServiceID = serviceName
	} else {
		o.UI.Warning("Deployment skipped/failed for %s", repo.Name)
	}

	rec.MarkCompleted(o.clock())
	o.UI.Success("%s -> %s", repo.Name, rec.Status)
	return rec
}

// skipReason returns a non-empty reason when the repo should be skipped
// outright.
func (o *Orchestrator) skipReason(repo models.Repo) string {
	switch {
	case o.denyList()[strings.ToLower(repo.Name)]:
		return "In skip list"
	case repo.Fork:
		return "Fork"
	case repo.Archived:
		return "Archived"
	case repo.Size == 0:
		return "Empty repo"
	default:
		return ""
	}
}

// applyClassification fetches the file listing, classifies, and records the
// tags on the ledger entry.
func (o *Orchestrator) applyClassification(ctx context.Context, rec *models.ProjectRecord, repo models.Repo) classify.Classification {
	files := o.Source.ListFiles(ctx, repo)
	cls := classify.Classify(repo, files)

	rec.TechStack = cls.TechStack
	if len(rec.TechStack) == 0 && repo.Language != "" {
		rec.TechStack = []string{repo.Language}
	}
	rec.Category = cls.Category
	if rec.Description == "" {
		rec.Description = repo.Name
	}
	return cls
}

// quickFixStatic is tier-0 remediation: write the static descriptor and a
// stub README when absent, then commit. No agent involved.
func (o *Orchestrator) quickFixStatic(dir, repoName, serviceName string) error {
	wrote, err := deploy.WriteStaticDescriptor(dir, serviceName)
	if err != nil {
		return err
	}
	if wrote {
		o.UI.VerboseLog("Added %s (static)", deploy.DescriptorFile)
	}

	readme := filepath.Join(dir, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		stub := fmt.Sprintf("# %s\n\nA web project by %s.\n", repoName, o.Cfg.GitHubUsername)
		if err := os.WriteFile(readme, []byte(stub), 0o644); err != nil {
			return fmt.Errorf("write README stub: %w", err)
		}
		o.UI.VerboseLog("Added basic README.md")
	}

	return o.Git.CommitAll(dir, "auto: add render.yaml for deployment")
}

// refreshPreviews picks up preview GIFs written by the external capture
// step since the last save.
func (o *Orchestrator) refreshPreviews(m *models.Manifest) {
	for name, rec := range m.Projects {
		if rec.GIFURL != "" {
			continue
		}
		gif := filepath.Join(o.Cfg.GIFsDir(), name+".gif")
		if _, err := os.Stat(gif); err == nil {
			rec.GIFURL = "gifs/" + name + ".gif"
		}
	}
}
