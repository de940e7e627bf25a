package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ideadep/internal/resolve"
)

// dependencyView is the machine-readable projection of a resolved dependency.
type dependencyView struct {
	Name             string      `json:"name"`
	Type             string      `json:"type,omitempty"`
	Version          string      `json:"version"`
	BuildNumber      string      `json:"buildNumber"`
	Layout           string      `json:"layout"`
	ClassesDir       string      `json:"classesDir"`
	TestFrameworkDir string      `json:"testFrameworkDir,omitempty"`
	SourcesFile      string      `json:"sourcesFile,omitempty"`
	Jars             []string    `json:"jars"`
	Plugins          []string    `json:"plugins"`
	Extras           []extraView `json:"extras,omitempty"`
	Descriptor       string      `json:"descriptor,omitempty"`
}

type extraView struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Path    string   `json:"path"`
	Jars    []string `json:"jars"`
}

func newDependencyView(dep resolve.ResolvedDependency, descriptorPath string) dependencyView {
	view := dependencyView{
		Name:             dep.Name,
		Type:             string(dep.Type),
		Version:          dep.Version,
		BuildNumber:      dep.BuildNumber,
		Layout:           string(dep.Layout),
		ClassesDir:       dep.ClassesDir,
		TestFrameworkDir: dep.TestFrameworkDir,
		SourcesFile:      dep.SourcesFile,
		Jars:             dep.JarFiles,
		Plugins:          dep.Plugins.Names(),
		Descriptor:       descriptorPath,
	}
	for _, extra := range dep.Extras {
		view.Extras = append(view.Extras, extraView{
			Name:    extra.Name,
			Version: extra.Version,
			Path:    extra.Path,
			Jars:    extra.JarFiles,
		})
	}
	return view
}

// printDependency renders a resolved dependency as JSON or a plain summary.
func printDependency(cmd *cobra.Command, dep resolve.ResolvedDependency, descriptorPath string) error {
	view := newDependencyView(dep, descriptorPath)
	if outputJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}

	cmd.Printf("%s %s (build %s)\n", view.Name, view.Version, view.BuildNumber)
	cmd.Printf("  classes: %s\n", view.ClassesDir)
	if view.TestFrameworkDir != "" {
		cmd.Printf("  test framework: %s\n", view.TestFrameworkDir)
	}
	if view.SourcesFile != "" {
		cmd.Printf("  sources: %s\n", view.SourcesFile)
	}
	cmd.Printf("  jars: %d, plugins: %d\n", len(view.Jars), len(view.Plugins))
	for _, extra := range view.Extras {
		cmd.Printf("  extra %s: %s (%d jars)\n", extra.Name, extra.Path, len(extra.Jars))
	}
	if view.Descriptor != "" {
		cmd.Printf("  descriptor: %s\n", view.Descriptor)
	}
	return nil
}

// summarize renders the one-line form used by cache list.
func summarize(artifact, version, marker string) string {
	return fmt.Sprintf("%-20s %-16s %s", artifact, version, marker)
}
