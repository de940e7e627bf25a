package descriptor

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ideadep/internal/coords"
	"ideadep/internal/resolve"
)

type parsedDescriptor struct {
	XMLName xml.Name `xml:"ivy-module"`
	Info    struct {
		Organisation string `xml:"organisation,attr"`
		Module       string `xml:"module,attr"`
		Revision     string `xml:"revision,attr"`
	} `xml:"info"`
	Confs []struct {
		Name string `xml:"name,attr"`
	} `xml:"configurations>conf"`
	Artifacts []struct {
		Name       string `xml:"name,attr"`
		Conf       string `xml:"conf,attr"`
		Classifier string `xml:"classifier,attr"`
	} `xml:"publications>artifact"`
}

func testDependency(t *testing.T, typ coords.PlatformType, name string, withSources bool) resolve.ResolvedDependency {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	jars := []string{
		filepath.Join(root, "lib", "app.jar"),
		filepath.Join(root, "lib", "util.jar"),
	}
	for _, jar := range jars {
		if err := os.WriteFile(jar, []byte("j"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dep := resolve.ResolvedDependency{
		Name:        name,
		Type:        typ,
		Version:     "2023.2",
		BuildNumber: "232.1",
		Layout:      resolve.LayoutSingleRoot,
		ClassesDir:  root,
		JarFiles:    jars,
	}
	if withSources {
		sources := filepath.Join(t.TempDir(), name+"-2023.2-sources.jar")
		if err := os.WriteFile(sources, []byte("s"), 0o644); err != nil {
			t.Fatal(err)
		}
		dep.SourcesFile = sources
	}
	return dep
}

func parse(t *testing.T, path string) parsedDescriptor {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var parsed parsedDescriptor
	if err := xml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("descriptor is not well-formed XML: %v\n%s", err, data)
	}
	return parsed
}

func TestGetOrCreateSynthesizesDescriptor(t *testing.T) {
	dep := testDependency(t, coords.TypeIdeaCommunity, "ideaIC", true)
	dir := t.TempDir()

	path, err := GetOrCreate(dep, dir)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	parsed := parse(t, path)
	if parsed.Info.Organisation != "com.jetbrains" || parsed.Info.Module != "ideaIC" || parsed.Info.Revision != "2023.2" {
		t.Fatalf("info = %+v", parsed.Info)
	}

	var confNames []string
	for _, conf := range parsed.Confs {
		confNames = append(confNames, conf.Name)
	}
	if strings.Join(confNames, ",") != "default,compile,sources" {
		t.Fatalf("configurations = %v", confNames)
	}

	var compile, sources int
	for _, artifact := range parsed.Artifacts {
		switch artifact.Conf {
		case "compile":
			compile++
		case "sources":
			sources++
			if artifact.Classifier != "sources" {
				t.Fatalf("sources artifact classifier = %q", artifact.Classifier)
			}
			if artifact.Name != "ideaIC" {
				t.Fatalf("sources artifact name = %q", artifact.Name)
			}
		}
	}
	if compile != 2 || sources != 1 {
		t.Fatalf("artifact counts: compile=%d sources=%d", compile, sources)
	}
}

func TestGetOrCreatePyCharmSourcesNaming(t *testing.T) {
	dep := testDependency(t, coords.TypePyCharmCE, "pycharmPC", true)

	path, err := GetOrCreate(dep, t.TempDir())
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	parsed := parse(t, path)
	found := false
	for _, artifact := range parsed.Artifacts {
		if artifact.Conf == "sources" {
			found = true
			if artifact.Name != "pycharmPC" {
				t.Fatalf("sources artifact name = %q, want pycharmPC", artifact.Name)
			}
		}
	}
	if !found {
		t.Fatal("no sources artifact emitted")
	}
}

func TestGetOrCreateReusesExistingFile(t *testing.T) {
	dep := testDependency(t, coords.TypeIdeaCommunity, "ideaIC", false)
	dir := t.TempDir()

	first, err := GetOrCreate(dep, dir)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// Mark the file; a second call must trust it as-is.
	if err := os.WriteFile(first, []byte("untouched sentinel"), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := GetOrCreate(dep, dir)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if second != first {
		t.Fatalf("paths differ: %s vs %s", first, second)
	}
	data, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "untouched sentinel" {
		t.Fatal("existing descriptor was regenerated")
	}
}

func TestGetOrCreateWithoutCacheUsesTempFile(t *testing.T) {
	dep := testDependency(t, coords.TypeIdeaCommunity, "ideaIC", false)

	first, err := GetOrCreate(dep, "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(first) })
	second, err := GetOrCreate(dep, "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(second) })

	if first == second {
		t.Fatal("temp descriptors should be distinct per call")
	}
	parse(t, first)
}

func TestSanitizeRevision(t *testing.T) {
	if got := sanitizeRevision("/opt/idea build/2023.2"); strings.ContainsAny(got, "/ ") {
		t.Fatalf("sanitizeRevision left separators: %q", got)
	}
	if got := sanitizeRevision("2023.2"); got != "2023.2" {
		t.Fatalf("sanitizeRevision(2023.2) = %q", got)
	}
}

func TestRegister(t *testing.T) {
	dep := testDependency(t, coords.TypeIdeaCommunity, "ideaIC", true)
	dir := t.TempDir()
	path, err := GetOrCreate(dep, dir)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	registrar := &MemoryRegistrar{}
	reg, err := Register(registrar, dep, path)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if len(reg.IvyPatterns) != 1 || !strings.HasPrefix(reg.IvyPatterns[0], dir) {
		t.Fatalf("IvyPatterns = %v", reg.IvyPatterns)
	}
	// One pattern for the extracted root, one for the sources parent.
	if len(reg.ArtifactPatterns) != 2 {
		t.Fatalf("ArtifactPatterns = %v", reg.ArtifactPatterns)
	}
	if got := registrar.Registrations(); len(got) != 1 || got[0].Name != "ideadep-ideaIC" {
		t.Fatalf("Registrations = %+v", got)
	}

	// Substituting the module token must resolve the file GetOrCreate wrote.
	resolved := strings.ReplaceAll(reg.IvyPatterns[0], "[module]", dep.Name)
	if resolved != path {
		t.Fatalf("ivy pattern resolves to %s, descriptor is at %s", resolved, path)
	}
}

func TestRegisterResolvesPathVersionedDescriptor(t *testing.T) {
	dep := testDependency(t, coords.TypeIdeaCommunity, "ideaLocal", false)
	dep.Version = dep.ClassesDir

	dir := t.TempDir()
	path, err := GetOrCreate(dep, dir)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	reg, err := Register(&MemoryRegistrar{}, dep, path)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	resolved := strings.ReplaceAll(reg.IvyPatterns[0], "[module]", dep.Name)
	if _, err := os.Stat(resolved); err != nil {
		t.Fatalf("ivy pattern resolves to %s, which does not exist: %v", resolved, err)
	}
	if resolved != path {
		t.Fatalf("ivy pattern resolves to %s, descriptor is at %s", resolved, path)
	}
}
