package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"ideadep/internal/resolve"
)

// organisation is the fixed descriptor organisation for platform
// distributions.
const organisation = "com.jetbrains"

// descriptorTemplate renders the ivy-style module descriptor: three
// configurations, one artifact per library jar bound to compile, and an
// optional classifier-tagged sources artifact.
var descriptorTemplate = template.Must(template.New("ivy").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<ivy-module version="2.0" xmlns:m="http://ant.apache.org/ivy/maven">
  <info organisation="{{.Organisation}}" module="{{.Module}}" revision="{{.Revision}}"/>
  <configurations>
    <conf name="default"/>
    <conf name="compile"/>
    <conf name="sources"/>
  </configurations>
  <publications>
{{- range .CompileArtifacts}}
    <artifact name="{{.}}" type="jar" ext="jar" conf="compile"/>
{{- end}}
{{- if .SourcesArtifact}}
    <artifact name="{{.SourcesArtifact}}" type="jar" ext="jar" conf="sources" m:classifier="sources"/>
{{- end}}
  </publications>
</ivy-module>
`))

type templateData struct {
	Organisation     string
	Module           string
	Revision         string
	CompileArtifacts []string
	SourcesArtifact  string
}

// GetOrCreate returns the descriptor file for a resolved dependency. With a
// descriptors directory configured the path is deterministic per
// (name, version) and an existing file is trusted as-is; without one the
// descriptor is written to a disposable temporary file.
func GetOrCreate(dep resolve.ResolvedDependency, descriptorsDir string) (string, error) {
	if descriptorsDir != "" {
		path := filepath.Join(descriptorsDir, fileName(dep))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("inspect descriptor %s: %w", path, err)
		}
		if err := os.MkdirAll(descriptorsDir, 0o755); err != nil {
			return "", fmt.Errorf("prepare descriptors dir: %w", err)
		}
		if err := write(dep, path); err != nil {
			return "", err
		}
		return path, nil
	}

	tmp, err := os.CreateTemp("", "ideadep-ivy-*.xml")
	if err != nil {
		return "", fmt.Errorf("create temp descriptor: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp descriptor: %w", err)
	}
	if err := write(dep, path); err != nil {
		return "", err
	}
	return path, nil
}

func fileName(dep resolve.ResolvedDependency) string {
	return fmt.Sprintf("%s-%s-ivy.xml", dep.Name, sanitizeRevision(dep.Version))
}

var revisionSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeRevision makes a version usable as a file name component; local
// dependencies use their directory path as version.
func sanitizeRevision(version string) string {
	return strings.Trim(revisionSanitizer.ReplaceAllString(version, "-"), "-")
}

// write synthesizes the descriptor content. Concurrent first-time writers for
// the same (name, version) produce identical content, so the rename race is
// benign.
func write(dep resolve.ResolvedDependency, path string) error {
	data := templateData{
		Organisation:     organisation,
		Module:           dep.Name,
		Revision:         dep.Version,
		CompileArtifacts: compileArtifactNames(dep),
	}
	if dep.HasSources() {
		data.SourcesArtifact = sourcesArtifactName(dep)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "ivy-*.xml")
	if err != nil {
		return fmt.Errorf("create descriptor temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := descriptorTemplate.Execute(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("render descriptor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close descriptor temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize descriptor: %w", err)
	}
	return nil
}

// compileArtifactNames lists each library jar as an artifact name relative to
// its classpath root, without the .jar extension, so the registered artifact
// pattern resolves it directly under the extracted tree.
func compileArtifactNames(dep resolve.ResolvedDependency) []string {
	var names []string
	for _, jar := range dep.JarFiles {
		name := jar
		for _, root := range dep.Roots() {
			if rel, err := filepath.Rel(root, jar); err == nil && !strings.HasPrefix(rel, "..") {
				name = rel
				break
			}
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(name, ".jar")))
	}
	return names
}

// sourcesArtifactName preserves the historical naming quirk: downstream
// repository pattern matching expects pycharmPC for PyCharm-family products
// and ideaIC for everything else.
func sourcesArtifactName(dep resolve.ResolvedDependency) string {
	if dep.IsPyCharm() {
		return "pycharmPC"
	}
	return "ideaIC"
}
