// Package probe determines whether a repository already serves a live public
// page, so the sweep never redeploys something that works.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mathew-harvey/autodeploy/internal/deploy"
	"github.com/mathew-harvey/autodeploy/internal/models"
)

// urlRe finds absolute URLs embedded in repository descriptions.
var urlRe = regexp.MustCompile(`https?://[^\s<>"]+`)

// errorSignals mark bodies that technically return 200 but are really
// error or placeholder pages.
var errorSignals = []string{
	"404", "not found", "page not found", "site not found",
	"suspended", "there isn't a github pages site",
	"this page could not be found", "404.html",
}

// Finder checks candidate URLs for an existing deployment.
type Finder interface {
	FindExisting(ctx context.Context, repo models.Repo) (bool, string)
}

// Prober implements Finder over plain HTTP GETs.
type Prober struct {
	Client        *http.Client
	Username      string
	ServicePrefix string
}

// New returns a Prober with a bounded per-request timeout.
func New(username, servicePrefix string) *Prober {
	return &Prober{
		Client:        &http.Client{Timeout: 12 * time.Second},
		Username:      username,
		ServicePrefix: servicePrefix,
	}
}

// CandidateURLs generates the places a repo might already be deployed, in
// check order, deduplicated with first occurrence preserved: pages-style
// URLs, provider name-pattern guesses, the homepage field, and any URLs
// found in the description.
func CandidateURLs(repo models.Repo, username, servicePrefix string) []string {
	name := repo.Name
	user := strings.ToLower(username)

	urls := []string{
		fmt.Sprintf("https://%s.github.io/%s/", user, name),
		fmt.Sprintf("https://%s.github.io/%s", user, name),
		fmt.Sprintf("https://%s.onrender.com", deploy.ServiceName(servicePrefix, name)),
		fmt.Sprintf("https://%s.onrender.com", name),
	}

	if strings.HasPrefix(repo.Homepage, "http") {
		urls = append(urls, repo.Homepage)
	}
	urls = append(urls, urlRe.FindAllString(repo.Description, -1)...)

	return dedupe(urls)
}

// FindExisting probes candidates in order and short-circuits on the first
// live one. A network failure on a candidate just means that candidate is
// not live.
func (p *Prober) FindExisting(ctx context.Context, repo models.Repo) (bool, string) {
	for _, url := range CandidateURLs(repo, p.Username, p.ServicePrefix) {
		if p.isLive(ctx, url) {
			return true, url
		}
	}
	return false, ""
}

// isLive fetches a URL and decides whether it serves a real page: status
// below 400, a body with some substance, and none of the known error
// signals in the first 2000 characters.
func (p *Prober) isLive(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Auto-Deployer/1.0)")

	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, 2000))
	if err != nil {
		return false
	}
	body := strings.ToLower(string(head))
	if len(strings.TrimSpace(body)) < 100 {
		return false
	}
	for _, sig := range errorSignals {
		if strings.Contains(body, sig) {
			return false
		}
	}
	return true
}

// dedupe removes duplicates preserving first-occurrence order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
