package volume

import (
	"encoding/binary"
	"fmt"
)

// DirectoryItem is one slot of a directory block, grounded on
// original_source's entity/Directory.h: an inode block number paired
// with a fixed-length name. InodeIndex == 0 marks an unused slot; a
// directory is exactly one block, and the first zero-valued item
// terminates the live entries (a directory never has more entries than
// fit in one block, per the original's DIRECTORY_NUMS constraint).
type DirectoryItem struct {
	InodeIndex uint32
	Name       string
}

func (d DirectoryItem) free() bool { return d.InodeIndex == 0 }

// Directory is the decoded content of one directory data block.
type Directory struct {
	Items []DirectoryItem
}

// directoryItemCount returns how many DirectoryItem slots fit in a block
// of the given size (BlockSize/directoryItemSize).
func directoryItemCount(blockSize uint16) int {
	return int(blockSize) / directoryItemSize
}

func newDirectory(blockSize uint16, self, parent uint32) *Directory {
	items := make([]DirectoryItem, directoryItemCount(blockSize))
	items[0] = DirectoryItem{InodeIndex: self, Name: "."}
	items[1] = DirectoryItem{InodeIndex: parent, Name: ".."}
	return &Directory{Items: items}
}

// NewDirectory builds a fresh directory block whose "." entry points at
// self's inode block number and whose ".." entry points at parent's —
// the shape every caller outside this package needs when creating a
// directory (pathfs.Mkdir) without reaching into unexported layout.
func NewDirectory(blockSize uint16, self, parent uint32) *Directory {
	return newDirectory(blockSize, self, parent)
}

func encodeDirectory(d *Directory, blockSize uint16) []byte {
	b := make([]byte, blockSize)
	off := 0
	for _, item := range d.Items {
		binary.LittleEndian.PutUint32(b[off:off+4], item.InodeIndex)
		copy(b[off+4:off+directoryItemSize], padName(item.Name, NameLength))
		off += directoryItemSize
	}
	return b
}

func decodeDirectory(b []byte, blockSize uint16) (*Directory, error) {
	if len(b) < int(blockSize) {
		return nil, fmt.Errorf("volume: directory buffer too short: %d < %d", len(b), blockSize)
	}
	count := directoryItemCount(blockSize)
	d := &Directory{Items: make([]DirectoryItem, count)}
	off := 0
	for i := 0; i < count; i++ {
		inodeIdx := binary.LittleEndian.Uint32(b[off : off+4])
		name := unpadName(b[off+4 : off+directoryItemSize])
		d.Items[i] = DirectoryItem{InodeIndex: inodeIdx, Name: name}
		off += directoryItemSize
	}
	return d, nil
}

// find returns the index of the entry named name, or -1.
func (d *Directory) find(name string) int {
	for i, item := range d.Items {
		if item.free() {
			if i < 2 {
				continue
			}
			return -1
		}
		if item.Name == name {
			return i
		}
	}
	return -1
}

// firstFree returns the index of the first unused slot past the fixed
// "." and ".." entries, or -1 if the directory is full.
func (d *Directory) firstFree() int {
	for i := 2; i < len(d.Items); i++ {
		if d.Items[i].free() {
			return i
		}
	}
	return -1
}

// removeAt deletes the entry at index i and shifts every later live
// entry down by one, preserving the invariant that the first free()
// item always marks the end of the live run (original_source's
// wholeDirItemsMove compaction after rmdir/rm).
func (d *Directory) removeAt(i int) {
	for j := i; j+1 < len(d.Items); j++ {
		if d.Items[j+1].free() {
			d.Items[j] = DirectoryItem{}
			return
		}
		d.Items[j] = d.Items[j+1]
	}
	d.Items[len(d.Items)-1] = DirectoryItem{}
}

// Entries returns the live, user-visible entries (skipping "." and "..").
func (d *Directory) Entries() []DirectoryItem {
	var out []DirectoryItem
	for i, item := range d.Items {
		if i < 2 {
			continue
		}
		if item.free() {
			break
		}
		out = append(out, item)
	}
	return out
}
