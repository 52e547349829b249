package volume

import (
	"path/filepath"
	"testing"
)

func newTestVolume(t *testing.T) *Volume {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.vol")
	v, err := Create(path, 1<<20)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := v.Format(Params{BlockSize: 512}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	return v
}

func TestFormatThenMountRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.vol")
	v, err := Create(path, 1<<20)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := v.Format(Params{BlockSize: 512}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	root := v.RootLocation()
	if err := v.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mounted, err := Mount(path)
	if err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	defer mounted.Close()
	if mounted.RootLocation() != root {
		t.Errorf("RootLocation after mount = %d, want %d", mounted.RootLocation(), root)
	}
	rootInode, err := mounted.ReadInode(mounted.RootLocation())
	if err != nil {
		t.Fatalf("ReadInode(root) failed: %v", err)
	}
	if !rootInode.IsDirectory() {
		t.Errorf("root inode is not a directory")
	}
	if rootInode.UID != SystemUID {
		t.Errorf("root inode UID = %d, want %d", rootInode.UID, SystemUID)
	}
}

func TestMountRejectsUnformattedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.vol")
	v, err := Create(path, 1<<16)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_ = v.Close()

	if _, err := Mount(path); err == nil {
		t.Fatalf("expected Mount to fail on an unformatted image")
	}
}

func TestAllocateThenFreeReturnsSameBlock(t *testing.T) {
	v := newTestVolume(t)
	bno, err := v.Allocate("test")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := v.Free(bno); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	again, err := v.Allocate("test")
	if err != nil {
		t.Fatalf("second Allocate failed: %v", err)
	}
	if again != bno {
		t.Errorf("Allocate after Free = %d, want the just-freed block %d", again, bno)
	}
}

func TestAllocateExhaustsFreeSpace(t *testing.T) {
	v := newTestVolume(t)
	var allocated []uint32
	for {
		bno, err := v.Allocate("test")
		if err != nil {
			break
		}
		allocated = append(allocated, bno)
	}
	if len(allocated) == 0 {
		t.Fatalf("expected to allocate at least one block before running out")
	}
	if _, err := v.Allocate("test"); KindOf(err) != KindNoSpace {
		t.Errorf("Allocate past exhaustion: Kind = %v, want KindNoSpace", KindOf(err))
	}
}

func TestWriteReadFileContentRoundTrip(t *testing.T) {
	v := newTestVolume(t)
	content := []byte("the quick brown fox jumps over the lazy dog")
	bno, err := v.WriteFileContent(content)
	if err != nil {
		t.Fatalf("WriteFileContent failed: %v", err)
	}
	got, err := v.ReadFileContent(bno)
	if err != nil {
		t.Fatalf("ReadFileContent failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("ReadFileContent = %q, want %q", got, content)
	}
}

func TestWriteFileContentSpansMultipleBlocks(t *testing.T) {
	v := newTestVolume(t)
	k := fileIndexCount(v.BlockSize)
	content := make([]byte, k*int(v.BlockSize)+int(v.BlockSize)/2)
	for i := range content {
		content[i] = byte(i%250 + 1) // never 0, so every byte survives the zero-drop read
	}
	bno, err := v.WriteFileContent(content)
	if err != nil {
		t.Fatalf("WriteFileContent failed: %v", err)
	}
	got, err := v.ReadFileContent(bno)
	if err != nil {
		t.Fatalf("ReadFileContent failed: %v", err)
	}
	if len(got) != len(content) {
		t.Fatalf("ReadFileContent length = %d, want %d", len(got), len(content))
	}
	for i := range content {
		if got[i] != content[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], content[i])
		}
	}
}

func TestWriteFileContentEmptyStillAllocatesHeadBlock(t *testing.T) {
	v := newTestVolume(t)
	bno, err := v.WriteFileContent(nil)
	if err != nil {
		t.Fatalf("WriteFileContent(nil) failed: %v", err)
	}
	if bno == 0 {
		t.Fatalf("WriteFileContent(nil) = 0, want a head FileIndex block (0 is never a valid file content bno)")
	}
	got, err := v.ReadFileContent(bno)
	if err != nil {
		t.Fatalf("ReadFileContent failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadFileContent(empty head block) = %v, want empty", got)
	}
}

func TestFreeFileContentReturnsBlocksToAllocator(t *testing.T) {
	v := newTestVolume(t)
	before, err := v.Allocate("probe")
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := v.Free(before); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	content := make([]byte, int(v.BlockSize)*3)
	for i := range content {
		content[i] = byte(i%250 + 1)
	}
	bno, err := v.WriteFileContent(content)
	if err != nil {
		t.Fatalf("WriteFileContent failed: %v", err)
	}
	if err := v.FreeFileContent(bno); err != nil {
		t.Fatalf("FreeFileContent failed: %v", err)
	}

	after, err := v.Allocate("probe")
	if err != nil {
		t.Fatalf("Allocate after free failed: %v", err)
	}
	// The head FileIndex block is freed last, so the LIFO free stack hands
	// it out first.
	if after != bno {
		t.Errorf("block reuse after FreeFileContent: got %d, want %d", after, bno)
	}
}
