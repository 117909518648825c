// Package source lists an account's repositories and file trees on the
// source host.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

// Client is the source-host capability the orchestrator depends on.
type Client interface {
	// ListRepos returns every repository of the account, most recently
	// updated first.
	ListRepos(ctx context.Context) ([]models.Repo, error)
	// ListFiles returns the blob paths of the repository's primary branch.
	// A transient failure yields an empty listing, not an error.
	ListFiles(ctx context.Context, repo models.Repo) []string
}

// GitHubClient implements Client over the GitHub REST API.
type GitHubClient struct {
	api      *github.Client
	username string

	// pagePause keeps the listing polite to the API between pages.
	pagePause time.Duration
}

// NewGitHubClient creates a client for the account. The token is optional;
// without one the API still serves public repositories at lower rate
// limits.
func NewGitHubClient(username, token string) *GitHubClient {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	return &GitHubClient{
		api:       github.NewClient(hc),
		username:  username,
		pagePause: 500 * time.Millisecond,
	}
}

// ListRepos pages through the account's repositories until an empty page.
func (c *GitHubClient) ListRepos(ctx context.Context) ([]models.Repo, error) {
	var all []models.Repo
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		repos, resp, err := c.api.Repositories.List(ctx, c.username, opts)
		if err != nil {
			return nil, fmt.Errorf("list repositories for %s: %w", c.username, err)
		}

		for _, r := range repos {
			all = append(all, models.Repo{
				Name:          r.GetName(),
				HTMLURL:       r.GetHTMLURL(),
				CloneURL:      r.GetCloneURL(),
				Description:   r.GetDescription(),
				Language:      r.GetLanguage(),
				Homepage:      r.GetHomepage(),
				DefaultBranch: r.GetDefaultBranch(),
				Fork:          r.GetFork(),
				Archived:      r.GetArchived(),
				Size:          r.GetSize(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		time.Sleep(c.pagePause)
	}

	return all, nil
}

// ListFiles fetches the recursive tree of the primary branch, falling back
// to "master" when the first branch 404s. Only blob entries count.
func (c *GitHubClient) ListFiles(ctx context.Context, repo models.Repo) []string {
	branch := repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	tree, err := c.getTree(ctx, repo.Name, branch)
	if err != nil && branch != "master" {
		tree, err = c.getTree(ctx, repo.Name, "master")
	}
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			files = append(files, strings.ToLower(entry.GetPath()))
		}
	}
	return files
}

func (c *GitHubClient) getTree(ctx context.Context, repo, branch string) (*github.Tree, error) {
	tree, _, err := c.api.Git.GetTree(ctx, c.username, repo, branch, true)
	return tree, err
}

// CreateRepo ensures a repository exists under the account. Already-exists
// responses are not an error.
func (c *GitHubClient) CreateRepo(ctx context.Context, name, description string) error {
	_, resp, err := c.api.Repositories.Create(ctx, "", &github.Repository{
		Name:        github.String(name),
		Description: github.String(description),
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return nil // name already taken by us
		}
		return fmt.Errorf("create repo %s: %w", name, err)
	}
	return nil
}
