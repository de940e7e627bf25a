package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ideadep/internal/coords"
	"ideadep/internal/plugins"
)

// Layout discriminates how an extracted distribution is rooted on disk. The
// set is closed; layout-specific behaviour dispatches on this tag instead of
// a type hierarchy.
type Layout string

const (
	// LayoutSingleRoot is a plain distribution: one extracted root.
	LayoutSingleRoot Layout = "single-root"
	// LayoutSplitRoot is a JPS-style distribution: a core root plus a
	// separate test-framework root.
	LayoutSplitRoot Layout = "split-root"
)

// ResolvedDependency is the externally consumable result of a resolution. Its
// file-system paths live in the shared cache; the in-memory plugin registry
// and extras belong to this value.
type ResolvedDependency struct {
	Name        string
	Type        coords.PlatformType
	Version     string
	BuildNumber string
	Layout      Layout

	// ClassesDir is the extracted root (the core root for split layouts).
	ClassesDir string
	// TestFrameworkDir is set only for split-root layouts.
	TestFrameworkDir string
	// SourcesFile is empty when sources were unavailable or not requested.
	SourcesFile string

	JarFiles []string
	Plugins  plugins.Registry
	Extras   []ExtraDependency
}

// HasSources reports whether a sources artifact was resolved.
func (d ResolvedDependency) HasSources() bool {
	return d.SourcesFile != ""
}

// Roots returns the directories making up the dependency's classpath roots.
func (d ResolvedDependency) Roots() []string {
	if d.Layout == LayoutSplitRoot && d.TestFrameworkDir != "" {
		return []string{d.ClassesDir, d.TestFrameworkDir}
	}
	return []string{d.ClassesDir}
}

// IsPyCharm reports whether the dependency is a PyCharm-family product; the
// descriptor synthesizer names its sources artifact accordingly.
func (d ResolvedDependency) IsPyCharm() bool {
	return coords.IsPyCharmFamily(d.Type)
}

// ExtraDependency is an optional supplementary artifact resolved alongside
// the main distribution at the same version. Immutable once built.
type ExtraDependency struct {
	Name     string
	Version  string
	Path     string
	JarFiles []string
}

// newDependency assembles a ResolvedDependency from an extracted tree,
// enumerating jars across all classpath roots.
func newDependency(name string, typ coords.PlatformType, version, buildNumber, root, sourcesFile string, registry plugins.Registry, extras []ExtraDependency) ResolvedDependency {
	dep := ResolvedDependency{
		Name:        name,
		Type:        typ,
		Version:     version,
		BuildNumber: buildNumber,
		Layout:      LayoutSingleRoot,
		ClassesDir:  root,
		SourcesFile: sourcesFile,
		Plugins:     registry,
		Extras:      extras,
	}
	if coords.IsSplitRoot(typ) {
		testFramework := filepath.Join(root, "test-framework")
		if info, err := os.Stat(testFramework); err == nil && info.IsDir() {
			dep.Layout = LayoutSplitRoot
			dep.TestFrameworkDir = testFramework
		}
	}

	var jars []string
	for _, dir := range dep.Roots() {
		jars = append(jars, jarsIn(dir)...)
	}
	sort.Strings(jars)
	dep.JarFiles = jars
	return dep
}

// jarsIn enumerates the library jars belonging to one root: the lib
// subdirectory plus any jars at the root itself.
func jarsIn(root string) []string {
	var jars []string
	for _, dir := range []string{filepath.Join(root, "lib"), root} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jar") {
				continue
			}
			jars = append(jars, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(jars)
	return jars
}

// String renders the identity used in log lines.
func (d ResolvedDependency) String() string {
	return fmt.Sprintf("%s:%s (build %s)", d.Name, d.Version, d.BuildNumber)
}
