package driver

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSources writes the given name -> source pairs as .sprs files in a
// fresh temp dir and returns the dir.
func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name+".sprs")
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestImportTransitivity(t *testing.T) {
	srcDir := writeSources(t, map[string]string{
		"main": `
import a;
import b;

fn main() {
	a.fa();
	b.fb();
}
`,
		"a": `
import b;

pub fn fa() {
	b.fb();
}
`,
		"b": `
pub fn fb() {
}
`,
	})
	l := NewLoader(srcDir, func(err error) { t.Error(err) })
	if err := l.Load("main"); err != nil {
		t.Fatalf("unable to load module graph; %v", err)
	}
	// b is imported by both main and a, but compiled exactly once, before
	// its importers.
	var names []string
	for _, mod := range l.Modules() {
		names = append(names, mod.Name)
	}
	want := []string{"b", "a", "main"}
	if len(names) != len(want) {
		t.Fatalf("module count mismatch; expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("module order mismatch; expected %v, got %v", want, names)
		}
	}
}

func TestPkgNameKeysCompilation(t *testing.T) {
	// util.sprs declares pkg tools; its functions export under the declared
	// package name, which also keys the compile-once set.
	srcDir := writeSources(t, map[string]string{
		"main": `
import util;

fn main() {
	tools.noop();
}
`,
		"util": `
pkg tools;

pub fn noop() {
}
`,
	})
	l := NewLoader(srcDir, func(err error) { t.Error(err) })
	if err := l.Load("main"); err != nil {
		t.Fatalf("unable to load module graph; %v", err)
	}
	mods := l.Modules()
	if len(mods) != 2 {
		t.Fatalf("module count mismatch; expected 2, got %d", len(mods))
	}
	if mods[0].Name != "tools" {
		t.Errorf("effective module name mismatch; expected %q, got %q", "tools", mods[0].Name)
	}
}

func TestPrivatePruning(t *testing.T) {
	srcDir := writeSources(t, map[string]string{
		"main": `
enum Color {
	Red,
	pub Green,
}

fn main() {
	var c = Color.Green;
}
`,
	})
	l := NewLoader(srcDir, func(err error) { t.Error(err) })
	if err := l.Load("main"); err != nil {
		t.Fatalf("unable to load module graph; %v", err)
	}
	if l.visible["Color.Red"] {
		t.Error("private enum variant Color.Red still visible after compilation")
	}
	if !l.visible["Color.Green"] {
		t.Error("public enum variant Color.Green missing from visible scope")
	}
}

func TestDirectives(t *testing.T) {
	srcDir := writeSources(t, map[string]string{
		"main": `
#define Linux
#define Windows

fn main() {
}
`,
	})
	l := NewLoader(srcDir, func(err error) { t.Error(err) })
	if err := l.Load("main"); err != nil {
		t.Fatalf("unable to load module graph; %v", err)
	}
	target := Target{OS: OSLinux}
	for _, directive := range l.Directives() {
		target = target.applyDirective(directive)
	}
	// The last directive wins.
	if target.OS != OSWindows {
		t.Errorf("target mismatch; expected %v, got %v", OSWindows, target.OS)
	}
}

func TestMissingSourceFile(t *testing.T) {
	l := NewLoader(t.TempDir(), func(err error) {})
	if err := l.Load("main"); err == nil {
		t.Fatal("expected error for missing source file, got none")
	}
}
