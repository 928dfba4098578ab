package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sprs.toml")
	const data = `
name = "demo"
version = "0.1.0"
src_dir = "sources"
out_dir = "build"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	project, err := Load(path)
	if err != nil {
		t.Fatalf("unable to load project file; %v", err)
	}
	if project.Name != "demo" {
		t.Errorf("name mismatch; expected %q, got %q", "demo", project.Name)
	}
	if project.SrcDir != "sources" {
		t.Errorf("src_dir mismatch; expected %q, got %q", "sources", project.SrcDir)
	}
	if project.OutDir != "build" {
		t.Errorf("out_dir mismatch; expected %q, got %q", "build", project.OutDir)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sprs.toml")
	if err := os.WriteFile(path, []byte(`name = "demo"`), 0644); err != nil {
		t.Fatal(err)
	}
	project, err := Load(path)
	if err != nil {
		t.Fatalf("unable to load project file; %v", err)
	}
	if project.SrcDir != "src" || project.OutDir != "out" {
		t.Errorf("default directories mismatch; got src_dir=%q out_dir=%q", project.SrcDir, project.OutDir)
	}
}

func TestLoadMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sprs.toml")
	if err := os.WriteFile(path, []byte(`version = "0.1.0"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for project file missing name, got none")
	}
}
