package cmd

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestReadScriptInputPrefersInlineEval(t *testing.T) {
	source, file, err := readScriptInput([]string{"ignored.ts"}, "1 + 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "1 + 1" || file != "<eval>" {
		t.Fatalf("expected inline eval to win, got source=%q file=%q", source, file)
	}
}

func TestReadScriptInputReadsFileWhenNoEval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(path, []byte("let x = 1;"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	source, file, err := readScriptInput([]string{path}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "let x = 1;" || file != path {
		t.Fatalf("unexpected result source=%q file=%q", source, file)
	}
}

func TestReadScriptInputErrorsWithoutFileOrEval(t *testing.T) {
	if _, _, err := readScriptInput(nil, ""); err == nil {
		t.Fatalf("expected an error when neither a file nor -e is given")
	}
}

func TestLoadManifestDefaultsMain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsforge.yaml")
	if err := os.WriteFile(path, []byte("name: demo\nversion: 1.0.0\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m, err := loadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "demo" || m.Version != "1.0.0" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.Main != "index.ts" {
		t.Fatalf("expected default main of index.ts, got %q", m.Main)
	}
}

func TestLoadManifestHonorsExplicitMain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsforge.yaml")
	if err := os.WriteFile(path, []byte("name: demo\nversion: 1.0.0\nmain: src/entry.ts\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m, err := loadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Main != "src/entry.ts" {
		t.Fatalf("expected explicit main to survive, got %q", m.Main)
	}
}

func TestWriteArchiveIncludesSourcesAndManifestOnly(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("setup %s: %v", name, err)
		}
	}
	mustWrite("tsforge.yaml", "name: demo\nversion: 1.0.0\n")
	mustWrite("index.ts", "console.log('hi');")
	mustWrite("README.md", "not packaged")

	out := filepath.Join(dir, "demo.tsfpkg")
	if err := writeArchive(dir, out); err != nil {
		t.Fatalf("writeArchive: %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["tsforge.yaml"] || !names["index.ts"] {
		t.Fatalf("expected manifest and source file in archive, got %v", names)
	}
	if names["README.md"] {
		t.Fatalf("did not expect README.md in archive, got %v", names)
	}
	if names["demo.tsfpkg"] {
		t.Fatalf("archive should not include itself, got %v", names)
	}
}
