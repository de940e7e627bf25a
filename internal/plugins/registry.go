package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Plugin describes one bundled plugin discovered under an extracted tree.
type Plugin struct {
	Name string
	Path string
	Jars []string
}

// Registry indexes the bundled plugins of an extracted distribution.
type Registry struct {
	Dir     string
	plugins map[string]Plugin
}

// Scan builds a registry from the plugins subdirectory of an extracted tree.
// A distribution without a plugins directory yields an empty registry.
func Scan(root string) (Registry, error) {
	dir := filepath.Join(root, "plugins")
	reg := Registry{Dir: dir, plugins: map[string]Plugin{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return Registry{}, fmt.Errorf("scan plugins dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginDir := filepath.Join(dir, entry.Name())
		jars, err := collectJars(filepath.Join(pluginDir, "lib"))
		if err != nil {
			return Registry{}, err
		}
		reg.plugins[entry.Name()] = Plugin{
			Name: entry.Name(),
			Path: pluginDir,
			Jars: jars,
		}
	}
	return reg, nil
}

// Find returns the plugin with the given directory name.
func (r Registry) Find(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the sorted plugin names.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of discovered plugins.
func (r Registry) Len() int {
	return len(r.plugins)
}

func collectJars(libDir string) ([]string, error) {
	entries, err := os.ReadDir(libDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plugin lib dir: %w", err)
	}

	var jars []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jar") {
			continue
		}
		jars = append(jars, filepath.Join(libDir, entry.Name()))
	}
	sort.Strings(jars)
	return jars, nil
}
