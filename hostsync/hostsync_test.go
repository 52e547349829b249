package hostsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blockvol/blockvol/pathfs"
	"github.com/blockvol/blockvol/volume"
)

func newTestSession(t *testing.T) *pathfs.Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.vol")
	v, err := volume.Create(path, 1<<20)
	if err != nil {
		t.Fatalf("volume.Create failed: %v", err)
	}
	if err := v.Format(volume.Params{BlockSize: 512}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	s, err := pathfs.NewSession(v, volume.SystemUID)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func writeHostTree(t *testing.T, root string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "top.txt"), []byte("top level"), 0o644); err != nil {
		t.Fatalf("WriteFile(top.txt) failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "nested.txt"), []byte("nested content"), 0o644); err != nil {
		t.Fatalf("WriteFile(nested.txt) failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".DS_Store"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile(.DS_Store) failed: %v", err)
	}
}

func TestImportRecreatesHostTreeInVolume(t *testing.T) {
	s := newTestSession(t)
	hostRoot := t.TempDir()
	writeHostTree(t, hostRoot)

	if err := Import(s, hostRoot, "/"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got, err := pathfs.ReadFile(s, "/top.txt")
	if err != nil {
		t.Fatalf("ReadFile(/top.txt) failed: %v", err)
	}
	if string(got) != "top level" {
		t.Errorf("ReadFile(/top.txt) = %q, want %q", got, "top level")
	}

	got, err = pathfs.ReadFile(s, "/sub/nested.txt")
	if err != nil {
		t.Fatalf("ReadFile(/sub/nested.txt) failed: %v", err)
	}
	if string(got) != "nested content" {
		t.Errorf("ReadFile(/sub/nested.txt) = %q, want %q", got, "nested content")
	}

	if _, err := pathfs.Stat(s, "/.DS_Store"); volume.KindOf(err) != volume.KindNotFound {
		t.Errorf(".DS_Store should have been excluded from Import, Kind = %v", volume.KindOf(err))
	}
}

func TestExportRecreatesVolumeTreeOnHost(t *testing.T) {
	s := newTestSession(t)
	if err := pathfs.Mkdir(s, "/sub"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := pathfs.WriteFile(s, "/top.txt", []byte("top level")); err != nil {
		t.Fatalf("WriteFile(/top.txt) failed: %v", err)
	}
	if err := pathfs.WriteFile(s, "/sub/nested.txt", []byte("nested content")); err != nil {
		t.Fatalf("WriteFile(/sub/nested.txt) failed: %v", err)
	}

	hostDir := filepath.Join(t.TempDir(), "export-out")
	if err := Export(s, "/", hostDir); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(hostDir, "top.txt"))
	if err != nil {
		t.Fatalf("ReadFile(top.txt) failed: %v", err)
	}
	if string(got) != "top level" {
		t.Errorf("host top.txt = %q, want %q", got, "top level")
	}

	got, err = os.ReadFile(filepath.Join(hostDir, "sub", "nested.txt"))
	if err != nil {
		t.Fatalf("ReadFile(sub/nested.txt) failed: %v", err)
	}
	if string(got) != "nested content" {
		t.Errorf("host sub/nested.txt = %q, want %q", got, "nested content")
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	s := newTestSession(t)
	hostRoot := t.TempDir()
	writeHostTree(t, hostRoot)

	if err := Import(s, hostRoot, "/"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	exportDir := filepath.Join(t.TempDir(), "roundtrip-out")
	if err := Export(s, "/", exportDir); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(exportDir, "sub", "nested.txt"))
	if err != nil {
		t.Fatalf("ReadFile(sub/nested.txt) failed: %v", err)
	}
	if string(got) != "nested content" {
		t.Errorf("round-tripped sub/nested.txt = %q, want %q", got, "nested content")
	}
}
