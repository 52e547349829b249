package pathfs

import (
	"path/filepath"
	"testing"

	"github.com/blockvol/blockvol/volume"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.vol")
	v, err := volume.Create(path, 1<<20)
	if err != nil {
		t.Fatalf("volume.Create failed: %v", err)
	}
	if err := v.Format(volume.Params{BlockSize: 512}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	s, err := NewSession(v, volume.RootUID)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestTouchThenStat(t *testing.T) {
	s := newTestSession(t)
	if err := Touch(s, "/hello.txt"); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	entry, err := Stat(s, "/hello.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if entry.IsDir {
		t.Errorf("touched file should not be a directory")
	}
	if entry.Size != 0 {
		t.Errorf("freshly touched file size = %d, want 0", entry.Size)
	}
}

func TestTouchRejectsDuplicateName(t *testing.T) {
	s := newTestSession(t)
	if err := Touch(s, "/hello.txt"); err != nil {
		t.Fatalf("first Touch failed: %v", err)
	}
	if err := Touch(s, "/hello.txt"); volume.KindOf(err) != volume.KindExists {
		t.Errorf("second Touch: Kind = %v, want KindExists", volume.KindOf(err))
	}
}

func TestMkdirThenChdirThenRelativeTouch(t *testing.T) {
	s := newTestSession(t)
	if err := Mkdir(s, "/sub"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := s.Chdir("/sub"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if err := Touch(s, "inner.txt"); err != nil {
		t.Fatalf("relative Touch failed: %v", err)
	}
	entries, err := ListDir(s, "/sub")
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "inner.txt" {
		t.Errorf("ListDir(/sub) = %+v, want exactly [inner.txt]", entries)
	}
}

func TestChdirParentReturnsToRoot(t *testing.T) {
	s := newTestSession(t)
	if err := Mkdir(s, "/sub"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := s.Chdir("/sub"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if err := s.Chdir(".."); err != nil {
		t.Fatalf("Chdir(..) failed: %v", err)
	}
	root, err := s.Vol.ReadInode(s.Vol.RootLocation())
	if err != nil {
		t.Fatalf("ReadInode(root) failed: %v", err)
	}
	if s.Cwd != root.Bno {
		t.Errorf("Chdir(..) from /sub should land back on the root data block")
	}
}

func TestWriteFileThenReadFile(t *testing.T) {
	s := newTestSession(t)
	content := []byte("hello, volume")
	if err := WriteFile(s, "/hello.txt", content); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := ReadFile(s, "/hello.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("ReadFile = %q, want %q", got, content)
	}
}

func TestWriteFileOverwritesExistingContent(t *testing.T) {
	s := newTestSession(t)
	if err := WriteFile(s, "/hello.txt", []byte("first")); err != nil {
		t.Fatalf("first WriteFile failed: %v", err)
	}
	if err := WriteFile(s, "/hello.txt", []byte("second, and longer")); err != nil {
		t.Fatalf("second WriteFile failed: %v", err)
	}
	got, err := ReadFile(s, "/hello.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "second, and longer" {
		t.Errorf("ReadFile after overwrite = %q, want %q", got, "second, and longer")
	}
}

func TestRemoveDeletesFileEntry(t *testing.T) {
	s := newTestSession(t)
	if err := Touch(s, "/hello.txt"); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := Remove(s, "/hello.txt"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := Stat(s, "/hello.txt"); volume.KindOf(err) != volume.KindNotFound {
		t.Errorf("Stat after Remove: Kind = %v, want KindNotFound", volume.KindOf(err))
	}
}

func TestRemoveRefusesDirectory(t *testing.T) {
	s := newTestSession(t)
	if err := Mkdir(s, "/sub"); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if err := Remove(s, "/sub"); volume.KindOf(err) != volume.KindNotAFile {
		t.Errorf("Remove(dir): Kind = %v, want KindNotAFile", volume.KindOf(err))
	}
}

func TestRemoveDirDeletesNestedContents(t *testing.T) {
	s := newTestSession(t)
	if err := Mkdir(s, "/a"); err != nil {
		t.Fatalf("Mkdir(/a) failed: %v", err)
	}
	if err := Mkdir(s, "/a/b"); err != nil {
		t.Fatalf("Mkdir(/a/b) failed: %v", err)
	}
	if err := WriteFile(s, "/a/b/c.txt", []byte("leaf")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := RemoveDir(s, "/a"); err != nil {
		t.Fatalf("RemoveDir failed: %v", err)
	}
	if _, err := Stat(s, "/a"); volume.KindOf(err) != volume.KindNotFound {
		t.Errorf("Stat(/a) after RemoveDir: Kind = %v, want KindNotFound", volume.KindOf(err))
	}
}

func TestCopyPreservesCreationTimeAndRefusesOverwrite(t *testing.T) {
	s := newTestSession(t)
	if err := WriteFile(s, "/src.txt", []byte("payload")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	srcEntry, err := Stat(s, "/src.txt")
	if err != nil {
		t.Fatalf("Stat(src) failed: %v", err)
	}

	if err := Copy(s, "/src.txt", "/dst.txt"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	dstEntry, err := Stat(s, "/dst.txt")
	if err != nil {
		t.Fatalf("Stat(dst) failed: %v", err)
	}
	if !dstEntry.CreationTime.Equal(srcEntry.CreationTime) {
		t.Errorf("Copy should preserve creation time: got %v, want %v", dstEntry.CreationTime, srcEntry.CreationTime)
	}

	if err := Copy(s, "/src.txt", "/dst.txt"); volume.KindOf(err) != volume.KindExists {
		t.Errorf("Copy onto an existing destination: Kind = %v, want KindExists", volume.KindOf(err))
	}
}

func TestMoveRemovesSource(t *testing.T) {
	s := newTestSession(t)
	if err := WriteFile(s, "/src.txt", []byte("payload")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := Move(s, "/src.txt", "/dst.txt"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if _, err := Stat(s, "/src.txt"); volume.KindOf(err) != volume.KindNotFound {
		t.Errorf("Stat(src) after Move: Kind = %v, want KindNotFound", volume.KindOf(err))
	}
	got, err := ReadFile(s, "/dst.txt")
	if err != nil {
		t.Fatalf("ReadFile(dst) failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("ReadFile(dst) = %q, want %q", got, "payload")
	}
}

func TestChmodChangesPermissionBits(t *testing.T) {
	s := newTestSession(t)
	if err := Touch(s, "/hello.txt"); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := Chmod(s, "/hello.txt", volume.WhoOther, "rwx"); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	entry, err := Stat(s, "/hello.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if entry.Mode[7:10] != "rwx" {
		t.Errorf("Mode = %s, want other triad rwx", entry.Mode)
	}
}

func TestNonOwnerCannotReadWithoutTrustOrOtherBit(t *testing.T) {
	s := newTestSession(t)
	alice, err := s.Vol.MkUser("alice", "pw")
	if err != nil {
		t.Fatalf("MkUser failed: %v", err)
	}
	if err := Touch(s, "/hello.txt"); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := Chmod(s, "/hello.txt", volume.WhoOther, "---"); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	other := &Session{Vol: s.Vol, UID: alice, Cwd: s.Cwd}
	if _, err := ReadFile(other, "/hello.txt"); volume.KindOf(err) != volume.KindPermissionDenied {
		t.Errorf("ReadFile as untrusted user: Kind = %v, want KindPermissionDenied", volume.KindOf(err))
	}
}
