package plugins

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	mkfile := func(parts ...string) {
		path := filepath.Join(append([]string{root}, parts...)...)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mkfile("plugins", "java", "lib", "java-impl.jar")
	mkfile("plugins", "java", "lib", "java-api.jar")
	mkfile("plugins", "java", "lib", "notes.txt")
	mkfile("plugins", "terminal", "lib", "terminal.jar")
	mkfile("plugins", "stray-file")

	reg, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"java", "terminal"}) {
		t.Fatalf("Names = %v", got)
	}

	java, ok := reg.Find("java")
	if !ok {
		t.Fatal("java plugin not found")
	}
	want := []string{
		filepath.Join(root, "plugins", "java", "lib", "java-api.jar"),
		filepath.Join(root, "plugins", "java", "lib", "java-impl.jar"),
	}
	if !reflect.DeepEqual(java.Jars, want) {
		t.Fatalf("Jars = %v, want %v", java.Jars, want)
	}

	if _, ok := reg.Find("stray-file"); ok {
		t.Fatal("plain files must not register as plugins")
	}
}

func TestScanWithoutPluginsDir(t *testing.T) {
	reg, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("Len = %d, want 0", reg.Len())
	}
}
