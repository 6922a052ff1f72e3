package contactbook

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbeddedHelp(t *testing.T) {
	// Verify that the embedded resources contain the help text.
	data, err := fs.ReadFile(Resources, HelpFile)
	if err != nil {
		t.Fatalf("reading embedded %s: %v", HelpFile, err)
	}
	for _, verb := range []string{"add contact", "show all", "good bye", "search"} {
		if !strings.Contains(string(data), verb) {
			t.Errorf("embedded help missing %q", verb)
		}
	}
}

func TestHelp_LocalOverride(t *testing.T) {
	// Given: a local help.txt
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, HelpFile), []byte("my commands"), 0o644); err != nil {
		t.Fatal(err)
	}

	// When: help is resolved
	got, err := Help(localDir)
	if err != nil {
		t.Fatalf("Help() error = %v", err)
	}

	// Then: the local text wins
	if got != "my commands" {
		t.Errorf("Help() = %q, want %q", got, "my commands")
	}
}

func TestHelp_EmbeddedFallback(t *testing.T) {
	got, err := Help(t.TempDir())
	if err != nil {
		t.Fatalf("Help() error = %v", err)
	}
	if !strings.HasPrefix(got, "Commands:") {
		t.Errorf("Help() = %q, want embedded text", got)
	}
}

func TestOverlayFS_EmbeddedOnly(t *testing.T) {
	// Given: an embedded FS with a file and a local dir without it
	embedded := fstest.MapFS{
		"hello.txt": &fstest.MapFile{Data: []byte("from embedded")},
	}
	localDir := t.TempDir() // empty

	// When: opening the file via overlay
	ofs := OverlayFS(localDir, embedded)
	data, err := fs.ReadFile(ofs, "hello.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Then: embedded content is returned
	if string(data) != "from embedded" {
		t.Errorf("got %q, want %q", string(data), "from embedded")
	}
}

func TestOverlayFS_LocalOverride(t *testing.T) {
	// Given: both local and embedded have the same file
	embedded := fstest.MapFS{
		"hello.txt": &fstest.MapFile{Data: []byte("from embedded")},
	}
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, "hello.txt"), []byte("from local"), 0o644); err != nil {
		t.Fatal(err)
	}

	// When: opening the file via overlay
	ofs := OverlayFS(localDir, embedded)
	data, err := fs.ReadFile(ofs, "hello.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// Then: local file takes precedence
	if string(data) != "from local" {
		t.Errorf("got %q, want %q", string(data), "from local")
	}
}

func TestOverlayFS_Mixed(t *testing.T) {
	// Given: local has one file, embedded has another
	embedded := fstest.MapFS{
		"a.txt": &fstest.MapFile{Data: []byte("embedded-a")},
		"b.txt": &fstest.MapFile{Data: []byte("embedded-b")},
	}
	localDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(localDir, "a.txt"), []byte("local-a"), 0o644); err != nil {
		t.Fatal(err)
	}

	ofs := OverlayFS(localDir, embedded)

	// When/Then: a.txt comes from local, b.txt comes from embedded
	dataA, err := fs.ReadFile(ofs, "a.txt")
	if err != nil {
		t.Fatalf("ReadFile(a.txt) error = %v", err)
	}
	if string(dataA) != "local-a" {
		t.Errorf("a.txt = %q, want %q", string(dataA), "local-a")
	}

	dataB, err := fs.ReadFile(ofs, "b.txt")
	if err != nil {
		t.Fatalf("ReadFile(b.txt) error = %v", err)
	}
	if string(dataB) != "embedded-b" {
		t.Errorf("b.txt = %q, want %q", string(dataB), "embedded-b")
	}
}

func TestOverlayFS_NotFound(t *testing.T) {
	// Given: neither local nor embedded has the file
	embedded := fstest.MapFS{}
	localDir := t.TempDir()

	ofs := OverlayFS(localDir, embedded)

	// When/Then: Open returns an error
	_, err := fs.ReadFile(ofs, "missing.txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOverlayFS_RejectsInvalidPath(t *testing.T) {
	// Given: an overlay FS
	ofs := OverlayFS(t.TempDir(), fstest.MapFS{})

	// When/Then: invalid paths are rejected per fs.ValidPath contract
	for _, name := range []string{"../escape", "/absolute", "a/../b"} {
		_, err := ofs.Open(name)
		if err == nil {
			t.Errorf("Open(%q) should return error", name)
		}
	}
}
