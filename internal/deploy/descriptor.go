package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DescriptorFile is the declarative deployment descriptor checked into each
// working copy. Tier-0 remediation and self-healing fixes also produce it.
const DescriptorFile = "render.yaml"

// Descriptor models the render.yaml file. Only the first service entry is
// consulted.
type Descriptor struct {
	Services []ServiceSpec `yaml:"services"`
}

// ServiceSpec declares how one service builds and runs.
type ServiceSpec struct {
	Type              string `yaml:"type"`
	Name              string `yaml:"name"`
	Runtime           string `yaml:"runtime,omitempty"`
	BuildCommand      string `yaml:"buildCommand,omitempty"`
	StartCommand      string `yaml:"startCommand,omitempty"`
	StaticPublishPath string `yaml:"staticPublishPath,omitempty"`
	Plan              string `yaml:"plan,omitempty"`
}

// IsStatic reports whether the service deploys as a static site. An absent
// or "static" runtime means static.
func (s ServiceSpec) IsStatic() bool {
	return s.Type != "web" || s.Runtime == "" || s.Runtime == "static"
}

// LoadDescriptor reads render.yaml from a working copy. A missing file
// returns (nil, nil): defaults apply.
func LoadDescriptor(dir string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, DescriptorFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", DescriptorFile, err)
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", DescriptorFile, err)
	}
	return &d, nil
}

// StaticDescriptor renders the canonical static-site descriptor for a
// service. Used by tier-0 remediation and embedded in agent prompts so the
// agent and the template path produce identical files.
func StaticDescriptor(serviceName string) string {
	return fmt.Sprintf(`services:
  - type: web
    name: %s
    runtime: static
    staticPublishPath: ./
`, serviceName)
}

// WriteStaticDescriptor writes render.yaml into a working copy if absent.
// Returns true when a file was written.
func WriteStaticDescriptor(dir, serviceName string) (bool, error) {
	path := filepath.Join(dir, DescriptorFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(StaticDescriptor(serviceName)), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", DescriptorFile, err)
	}
	return true, nil
}
