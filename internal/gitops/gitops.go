// Package gitops wraps the git CLI for the few operations the sweep needs:
// bringing a working copy up to date and landing agent edits back on the
// source host.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

// Client defines the source-control operations used by the orchestrator.
// All methods take explicit paths; the sweep operates on many repos.
type Client interface {
	CloneOrPull(repo models.Repo, dest string) error
	CommitAll(dir, message string) error
	Push(dir, repoName string) error
}

// RealClient implements Client using real git commands.
type RealClient struct {
	Username string
	Token    string
}

// NewClient returns a RealClient for the given account.
func NewClient(username, token string) *RealClient {
	return &RealClient{Username: username, Token: token}
}

func gitCmd(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CloneOrPull makes dest an up-to-date shallow working copy. An existing
// copy gets a fast-forward pull, best effort; a fresh clone failing is a
// hard error.
func (c *RealClient) CloneOrPull(repo models.Repo, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		_, _ = gitCmd(dest, "pull", "--ff-only")
		return nil
	}

	cloneURL := repo.CloneURL
	if c.Token != "" {
		cloneURL = strings.Replace(cloneURL, "https://", "https://"+c.Token+"@", 1)
	}

	out, err := exec.Command("git", "clone", "--depth", "1", cloneURL, dest).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone %s: %s", repo.Name, strings.TrimSpace(string(out)))
	}
	return nil
}

// CommitAll stages everything and commits. A commit with nothing staged is
// not an error.
func (c *RealClient) CommitAll(dir, message string) error {
	if _, err := gitCmd(dir, "add", "-A"); err != nil {
		return err
	}
	_, _ = gitCmd(dir, "commit", "-m", message)
	return nil
}

// PublishDir turns a generated directory into a repository on the source
// host: init if needed, commit everything, force-push main. Requires a
// token.
func (c *RealClient) PublishDir(dir, repoName string) error {
	if c.Token == "" {
		return fmt.Errorf("publish %s: no token configured", repoName)
	}

	if _, err := os.Stat(dir + "/.git"); os.IsNotExist(err) {
		_, _ = gitCmd(dir, "init", "-b", "main")
	}
	_, _ = gitCmd(dir, "add", "-A")
	_, _ = gitCmd(dir, "commit", "-m", "auto: portfolio site")

	remote := fmt.Sprintf("https://%s@github.com/%s/%s.git", c.Token, c.Username, repoName)
	if _, err := gitCmd(dir, "remote", "set-url", "origin", remote); err != nil {
		_, _ = gitCmd(dir, "remote", "add", "origin", remote)
	}

	if _, err := gitCmd(dir, "push", "-u", "origin", "main", "--force"); err != nil {
		return fmt.Errorf("publish %s: %w", repoName, err)
	}
	return nil
}

// Push lands local commits on the source host, rewriting the remote with
// the auth token when one is configured.
func (c *RealClient) Push(dir, repoName string) error {
	if c.Token != "" {
		remote := fmt.Sprintf("https://%s@github.com/%s/%s.git", c.Token, c.Username, repoName)
		_, _ = gitCmd(dir, "remote", "set-url", "origin", remote)
	}
	if _, err := gitCmd(dir, "push"); err != nil {
		return fmt.Errorf("push %s: %w", repoName, err)
	}
	return nil
}
