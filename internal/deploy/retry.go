package deploy

import (
	"context"

	"github.com/mathew-harvey/autodeploy/internal/agent"
	"github.com/mathew-harvey/autodeploy/internal/models"
	"github.com/mathew-harvey/autodeploy/internal/output"
)

// DefaultMaxRetries bounds deployment attempts per repository, including the
// first one.
const DefaultMaxRetries = 2

// Pusher is the subset of the git client the self-healing loop needs.
type Pusher interface {
	Push(dir, repoName string) error
}

// Retryer drives the self-healing deploy loop: deploy, feed the error back
// to the completion agent, push the fix, deploy again, bounded.
type Retryer struct {
	Deployer      Deployer
	Agent         agent.Agent
	Git           Pusher
	UI            *output.UI
	ServicePrefix string
	MaxRetries    int
}

// DeployWithRetry attempts deployment up to MaxRetries times, engaging the
// agent between attempts on fixable errors. Returns the deploy URL, or ""
// when every attempt failed. Rate-limit errors stop the loop without
// spending agent turns: the agent cannot fix a 429.
func (r *Retryer) DeployWithRetry(ctx context.Context, project *models.ProjectRecord, dir string) string {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		url, errMsg := r.Deployer.Deploy(ctx, project, dir)
		if url != "" {
			return url
		}

		if errMsg == "" || attempt >= maxRetries {
			break
		}

		if IsRateLimited(errMsg) {
			r.UI.Warning("Rate limit: skipping self-healing retry")
			break
		}

		r.UI.Info("Retry %d/%d: asking the agent to fix deployment config", attempt, maxRetries)

		serviceName := ServiceName(r.ServicePrefix, project.Name)
		ok, _ := r.Agent.Complete(ctx, dir, agent.FixPrompt(serviceName, errMsg), agent.FixTurns)
		if !ok {
			r.UI.Warning("Agent fix attempt failed")
			break
		}

		if err := r.Git.Push(dir, project.Name); err != nil {
			r.UI.Warning("Push after fix failed: %v", err)
		}
	}

	return ""
}
