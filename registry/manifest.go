package registry

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nohros/nohrosruby/protocol"
)

// Manifest lists services to register at startup.
//
//	services:
//	  - name: weblog
//	    runtime: net
//	    working_dir: /srv/weblog
//	    arguments: "-config weblog.yaml"
//	    facts: ["service=weblog", "env=prod"]
type Manifest struct {
	Services []ManifestService `yaml:"services"`
}

// ManifestService is one manifest entry.
type ManifestService struct {
	Name       string   `yaml:"name"`
	Runtime    string   `yaml:"runtime"`
	WorkingDir string   `yaml:"working_dir"`
	Arguments  string   `yaml:"arguments"`
	Facts      []string `yaml:"facts"`
}

// LoadManifest reads a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	for i, s := range m.Services {
		if s.Name == "" {
			return nil, fmt.Errorf("manifest service %d: name is required", i)
		}
		if len(s.Facts) == 0 {
			return nil, fmt.Errorf("manifest service %q: %w", s.Name, ErrNoFacts)
		}
		if _, err := protocol.ParseFacts(s.Facts); err != nil {
			return nil, fmt.Errorf("manifest service %q: %w", s.Name, err)
		}
		if _, err := ParseLanguageRuntime(s.Runtime); err != nil {
			return nil, fmt.Errorf("manifest service %q: %w", s.Name, err)
		}
	}
	return &m, nil
}

// Seed registers every manifest service whose facts are not matched by an
// existing service. It returns the number of services added.
func (d *Database) Seed(ctx context.Context, m *Manifest) (int, error) {
	added := 0
	for _, s := range m.Services {
		facts, err := protocol.ParseFacts(s.Facts)
		if err != nil {
			return added, err
		}
		runtime, err := ParseLanguageRuntime(s.Runtime)
		if err != nil {
			return added, err
		}

		created, err := d.Ensure(ctx, facts, NewServiceMetadata(s.Name, runtime, s.WorkingDir, s.Arguments))
		if err != nil {
			return added, fmt.Errorf("failed to seed %q: %w", s.Name, err)
		}
		if created {
			added++
		}
	}
	return added, nil
}

// Ensure registers metadata under facts unless a service already matches
// them. It reports whether a new service was added.
func (d *Database) Ensure(ctx context.Context, facts protocol.FactSet, metadata *ServiceMetadata) (bool, error) {
	exists, err := d.Exists(ctx, facts)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := d.Add(ctx, facts, metadata); err != nil {
		return false, err
	}
	return true, nil
}
