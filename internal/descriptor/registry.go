package descriptor

import (
	"path/filepath"
	"sync"

	"ideadep/internal/resolve"
)

// Registration describes a file-system-backed repository exposing a resolved
// dependency: one pattern resolving the descriptor by module/revision and one
// or more patterns resolving raw artifact files under the extracted roots.
type Registration struct {
	Name             string
	IvyPatterns      []string
	ArtifactPatterns []string
}

// Registrar is the host build graph's repository registration hook.
type Registrar interface {
	Register(reg Registration) error
}

// Register builds the repository registration for a dependency and its
// descriptor, handing it to the registrar. The ivy pattern bakes in the
// sanitized revision: local dependencies carry a directory path as their
// version, and a raw [revision] token would resolve to a file name the
// synthesizer never writes.
func Register(registrar Registrar, dep resolve.ResolvedDependency, descriptorPath string) (Registration, error) {
	reg := Registration{
		Name: "ideadep-" + dep.Name,
		IvyPatterns: []string{
			filepath.Join(filepath.Dir(descriptorPath), "[module]-"+sanitizeRevision(dep.Version)+"-ivy.xml"),
		},
	}
	for _, root := range dep.Roots() {
		reg.ArtifactPatterns = append(reg.ArtifactPatterns, filepath.Join(root, "[artifact].[ext]"))
	}
	if dep.HasSources() {
		reg.ArtifactPatterns = append(reg.ArtifactPatterns,
			filepath.Join(filepath.Dir(dep.SourcesFile), "[artifact]-[revision]-[classifier].[ext]"))
	}

	if err := registrar.Register(reg); err != nil {
		return Registration{}, err
	}
	return reg, nil
}

// MemoryRegistrar records registrations in memory. It stands in for the host
// build tool's repository machinery in tests and CLI output.
type MemoryRegistrar struct {
	mu   sync.Mutex
	regs []Registration
}

// Register implements Registrar.
func (m *MemoryRegistrar) Register(reg Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs = append(m.regs, reg)
	return nil
}

// Registrations returns a copy of everything registered so far.
func (m *MemoryRegistrar) Registrations() []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Registration, len(m.regs))
	copy(out, m.regs)
	return out
}
