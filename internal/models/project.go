package models

import "time"

// ProjectStatus represents a repository's position in the sweep state machine.
type ProjectStatus string

const (
	StatusPending     ProjectStatus = "pending"
	StatusAnalysing   ProjectStatus = "analysing"
	StatusSkipped     ProjectStatus = "skipped"
	StatusCompleted   ProjectStatus = "completed"
	StatusDeployed    ProjectStatus = "deployed"
	StatusAlreadyLive ProjectStatus = "already-live" // was already deployed and working, don't touch
	StatusFailed      ProjectStatus = "failed"
)

// Sticky reports whether the status survives the run-start reset pass.
// Deployed and already-live records are never reprocessed.
func (s ProjectStatus) Sticky() bool {
	return s == StatusDeployed || s == StatusAlreadyLive
}

// IsFinal reports whether the status is a terminal outcome for a run.
// Pending and analysing records are still in flight.
func (s ProjectStatus) IsFinal() bool {
	switch s {
	case StatusSkipped, StatusCompleted, StatusDeployed, StatusAlreadyLive, StatusFailed:
		return true
	default:
		return false
	}
}

// ProjectRecord is the durable ledger entry for one repository, keyed by name.
// JSON tags are the manifest file contract; the capture step and the portfolio
// generator read these fields, so renames are breaking changes.
type ProjectRecord struct {
	Name        string        `json:"name"`
	GitHubURL   string        `json:"github_url"`
	Description string        `json:"description,omitempty"`
	Language    string        `json:"language,omitempty"`
	IsFork      bool          `json:"is_fork,omitempty"`
	Status      ProjectStatus `json:"status"`
	DeployURL   string        `json:"deploy_url,omitempty"`
	ServiceID   string        `json:"service_id,omitempty"`
	TechStack   []string      `json:"tech_stack,omitempty"`
	Category    string        `json:"category,omitempty"`
	SkipReason  string        `json:"skip_reason,omitempty"`
	Error       string        `json:"error,omitempty"`
	CompletedAt string        `json:"completed_at,omitempty"`
	GIFURL      string        `json:"gif_url,omitempty"` // relative path to the screen capture GIF
}

// MarkCompleted stamps the record with the terminal timestamp.
func (p *ProjectRecord) MarkCompleted(now time.Time) {
	p.CompletedAt = now.UTC().Format(time.RFC3339)
}

// Manifest is the durable, resumable ledger for the whole sweep.
type Manifest struct {
	Projects     map[string]*ProjectRecord `json:"projects"`
	PortfolioURL string                    `json:"portfolio_url,omitempty"`
	LastRun      string                    `json:"last_run,omitempty"`
	LastRunID    string                    `json:"last_run_id,omitempty"`
}

// NewManifest returns an empty manifest ready for use.
func NewManifest() *Manifest {
	return &Manifest{Projects: make(map[string]*ProjectRecord)}
}

// Get returns the record for a repository, or nil.
func (m *Manifest) Get(name string) *ProjectRecord {
	return m.Projects[name]
}

// Put stores a record under its own name.
func (m *Manifest) Put(p *ProjectRecord) {
	if m.Projects == nil {
		m.Projects = make(map[string]*ProjectRecord)
	}
	m.Projects[p.Name] = p
}
