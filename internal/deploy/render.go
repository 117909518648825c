// Package deploy builds and submits Render service deployments and drives
// the bounded self-healing retry loop around them.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

// rateLimitAttempts bounds how many times a single Deploy call retries a 429
// before giving up.
const rateLimitAttempts = 3

// Deployer submits one deployment request. Returns the public URL on
// success, or a diagnostic error message on failure (never both).
type Deployer interface {
	Deploy(ctx context.Context, project *models.ProjectRecord, dir string) (url string, errMsg string)
}

// Client talks to the Render services API.
type Client struct {
	APIKey        string
	OwnerID       string
	ServicePrefix string
	BaseURL       string
	HTTP          *http.Client

	// sleep is swapped out in tests so backoff doesn't wall-clock.
	sleep func(time.Duration)
}

// NewClient returns a Render API client.
func NewClient(apiKey, ownerID, servicePrefix string) *Client {
	return &Client{
		APIKey:        apiKey,
		OwnerID:       ownerID,
		ServicePrefix: servicePrefix,
		BaseURL:       "https://api.render.com",
		HTTP:          &http.Client{Timeout: 30 * time.Second},
		sleep:         time.Sleep,
	}
}

// ServiceName derives the deterministic provider service name for a repo:
// prefix-joined and truncated so retries always target the same service.
func ServiceName(prefix, repoName string) string {
	if len(repoName) > 30 {
		repoName = repoName[:30]
	}
	return prefix + "-" + repoName
}

// ServiceURL is the public URL Render serves a named service at.
func ServiceURL(serviceName string) string {
	return fmt.Sprintf("https://%s.onrender.com", serviceName)
}

// IsRateLimited reports whether a deploy error message came from provider
// rate limiting. Rate-limit errors must never trigger self-healing.
func IsRateLimited(errMsg string) bool {
	return strings.Contains(strings.ToLower(errMsg), "rate limit")
}

type staticSiteDetails struct {
	BuildCommand string `json:"buildCommand"`
	PublishPath  string `json:"publishPath"`
}

type envSpecificDetails struct {
	BuildCommand string `json:"buildCommand"`
	StartCommand string `json:"startCommand"`
}

type webServiceDetails struct {
	EnvSpecificDetails envSpecificDetails `json:"envSpecificDetails"`
	Plan               string             `json:"plan"`
	Runtime            string             `json:"runtime"`
}

type servicePayload struct {
	Type           string `json:"type"`
	Name           string `json:"name"`
	OwnerID        string `json:"ownerId"`
	Repo           string `json:"repo"`
	AutoDeploy     string `json:"autoDeploy"`
	Branch         string `json:"branch"`
	ServiceDetails any    `json:"serviceDetails"`
}

// buildPayload constructs the provider request from the working copy's
// descriptor, falling back to static-site defaults when none exists.
func (c *Client) buildPayload(project *models.ProjectRecord, dir string) (*servicePayload, error) {
	desc, err := LoadDescriptor(dir)
	if err != nil {
		return nil, err
	}

	p := &servicePayload{
		Type:       "static_site",
		Name:       ServiceName(c.ServicePrefix, project.Name),
		OwnerID:    c.OwnerID,
		Repo:       project.GitHubURL,
		AutoDeploy: "yes",
		Branch:     "main",
	}

	var svc ServiceSpec
	if desc != nil && len(desc.Services) > 0 {
		svc = desc.Services[0]
	}

	if desc != nil && len(desc.Services) > 0 && !svc.IsStatic() {
		p.Type = "web_service"
		p.ServiceDetails = webServiceDetails{
			EnvSpecificDetails: envSpecificDetails{
				BuildCommand: orDefault(svc.BuildCommand, "npm install"),
				StartCommand: orDefault(svc.StartCommand, "npm start"),
			},
			Plan:    orDefault(svc.Plan, "free"),
			Runtime: orDefault(svc.Runtime, "node"),
		}
	} else {
		p.ServiceDetails = staticSiteDetails{
			BuildCommand: svc.BuildCommand,
			PublishPath:  orDefault(svc.StaticPublishPath, "./"),
		}
	}

	return p, nil
}

// Deploy submits the service to Render. 2xx responses succeed with the
// deterministic URL; 429s back off 30s per attempt number for a bounded
// count; any other response returns the status and truncated body as the
// error message.
func (c *Client) Deploy(ctx context.Context, project *models.ProjectRecord, dir string) (string, string) {
	payload, err := c.buildPayload(project, dir)
	if err != nil {
		return "", err.Error()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Sprintf("encode deploy payload: %v", err)
	}

	for attempt := 1; attempt <= rateLimitAttempts; attempt++ {
		status, respBody, err := c.post(ctx, bytes.NewReader(body))
		if err != nil {
			return "", err.Error()
		}

		switch {
		case status >= 200 && status < 300:
			return ServiceURL(payload.Name), ""
		case status == http.StatusTooManyRequests:
			c.sleep(time.Duration(30*attempt) * time.Second)
		default:
			return "", fmt.Sprintf("render API %d: %s", status, truncate(respBody, 500))
		}
	}

	return "", "rate limit exceeded after retries"
}

func (c *Client) post(ctx context.Context, body io.Reader) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/services", body)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, string(respBody), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
