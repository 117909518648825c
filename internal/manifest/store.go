package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mathew-harvey/autodeploy/internal/models"
)

// Store defines the persistence interface for the sweep ledger.
type Store interface {
	Load() (*models.Manifest, error)
	Save(m *models.Manifest) error
	Path() string
}

// FileStore persists the manifest as a single JSON file, rewritten wholesale
// on every save. Saving after each repository is the crash-resume checkpoint.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the manifest file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the manifest, returning an empty one when the file is absent.
func (s *FileStore) Load() (*models.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewManifest(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m := models.NewManifest()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Projects == nil {
		m.Projects = make(map[string]*models.ProjectRecord)
	}
	return m, nil
}

// Save stamps last_run and rewrites the manifest file.
func (s *FileStore) Save(m *models.Manifest) error {
	m.LastRun = s.now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ResetForRetry flips every non-sticky record back to pending so the next
// sweep retries it. Deployed and already-live records are left untouched.
// Returns the number of records reset.
func ResetForRetry(m *models.Manifest) int {
	reset := 0
	for _, p := range m.Projects {
		if p.Status.Sticky() {
			continue
		}
		p.Status = models.StatusPending
		p.Error = ""
		p.SkipReason = ""
		reset++
	}
	return reset
}
