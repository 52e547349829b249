package volume

import "testing"

func TestNewDirectoryHasDotAndDotDot(t *testing.T) {
	d := newDirectory(128, 7, 3)
	if d.Items[0].Name != "." || d.Items[0].InodeIndex != 7 {
		a := d.Items[0]
		t.Errorf(`Items[0] = %+v, want {".", 7}`, a)
	}
	if d.Items[1].Name != ".." || d.Items[1].InodeIndex != 3 {
		a := d.Items[1]
		t.Errorf(`Items[1] = %+v, want {"..", 3}`, a)
	}
}

func TestDirectoryEncodeDecodeRoundTrip(t *testing.T) {
	d := newDirectory(128, 7, 7)
	d.Items[2] = DirectoryItem{InodeIndex: 42, Name: "hello.txt"}

	b := encodeDirectory(d, 128)
	got, err := decodeDirectory(b, 128)
	if err != nil {
		t.Fatalf("decodeDirectory failed: %v", err)
	}
	if got.Items[2] != d.Items[2] {
		t.Errorf("Items[2] = %+v, want %+v", got.Items[2], d.Items[2])
	}
}

func TestDirectoryFindStopsAtFirstFreeSlot(t *testing.T) {
	d := newDirectory(128, 1, 1)
	d.Items[2] = DirectoryItem{InodeIndex: 10, Name: "a"}
	d.Items[4] = DirectoryItem{InodeIndex: 11, Name: "b"} // unreachable: slot 3 is still free

	if idx := d.find("a"); idx != 2 {
		t.Errorf("find(a) = %d, want 2", idx)
	}
	if idx := d.find("b"); idx != -1 {
		t.Errorf("find(b) = %d, want -1 (past the first free slot)", idx)
	}
}

func TestDirectoryRemoveAtCompactsLiveEntries(t *testing.T) {
	d := newDirectory(128, 1, 1)
	d.Items[2] = DirectoryItem{InodeIndex: 10, Name: "a"}
	d.Items[3] = DirectoryItem{InodeIndex: 11, Name: "b"}
	d.Items[4] = DirectoryItem{InodeIndex: 12, Name: "c"}

	d.removeAt(2)

	if d.find("a") != -1 {
		t.Errorf("a should be gone")
	}
	if idx := d.find("b"); idx != 2 {
		t.Errorf("b should have shifted to slot 2, found at %d", idx)
	}
	if idx := d.find("c"); idx != 3 {
		t.Errorf("c should have shifted to slot 3, found at %d", idx)
	}
	if !d.Items[4].free() {
		t.Errorf("slot 4 should be free after compaction")
	}
}

func TestDirectoryEntriesSkipsDotAndDotDot(t *testing.T) {
	d := newDirectory(128, 1, 1)
	d.Items[2] = DirectoryItem{InodeIndex: 10, Name: "a"}

	got := d.Entries()
	if len(got) != 1 || got[0].Name != "a" {
		t.Errorf("Entries() = %+v, want exactly [{10 a}]", got)
	}
}
