package volume

import (
	"encoding/binary"
	"fmt"
	"time"
)

// inodeSize is the fixed on-disk size of one INode record: uid(1) +
// flag(1) + bno(4) + creationTime(25) + modifiedTime(25).
const inodeSize = 1 + 1 + 4 + timeFieldSize + timeFieldSize

// INode mirrors original_source's entity/INode.h: UID owns the object,
// Flag packs type and permission bits (§3), Bno points at the object's
// first data block (a Directory block for a directory, the first
// FileIndex block for a file).
type INode struct {
	UID          uint8
	Flag         uint8
	Bno          uint32
	CreationTime time.Time
	ModifiedTime time.Time
}

func (n *INode) IsDirectory() bool { return n.Flag&typeMask == typeDirectory }
func (n *INode) IsFile() bool      { return n.Flag&typeMask == typeFile }

// NewFileINode builds the INode for a freshly touch'd file: owned by
// uid, trusted rw-, other r-- (original_source: touch's 0x34 flag).
func NewFileINode(uid uint8, bno uint32, now time.Time) *INode {
	return &INode{UID: uid, Flag: defaultFileFlag, Bno: bno, CreationTime: now, ModifiedTime: now}
}

// NewDirINode builds the INode for a freshly mkdir'd directory
// (original_source: mkdir's 0x74 flag).
func NewDirINode(uid uint8, bno uint32, now time.Time) *INode {
	return &INode{UID: uid, Flag: defaultDirFlag, Bno: bno, CreationTime: now, ModifiedTime: now}
}

func encodeTime(t time.Time) []byte {
	b := make([]byte, timeFieldSize)
	if !t.IsZero() {
		copy(b, t.Format(timeLayout))
	}
	return b
}

func decodeTime(b []byte) time.Time {
	s := unpadName(b)
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeINode(n *INode) []byte {
	b := make([]byte, inodeSize)
	b[0] = n.UID
	b[1] = n.Flag
	binary.LittleEndian.PutUint32(b[2:6], n.Bno)
	copy(b[6:6+timeFieldSize], encodeTime(n.CreationTime))
	copy(b[6+timeFieldSize:6+2*timeFieldSize], encodeTime(n.ModifiedTime))
	return b
}

func decodeINode(b []byte) (*INode, error) {
	if len(b) < inodeSize {
		return nil, fmt.Errorf("volume: inode buffer too short: %d < %d", len(b), inodeSize)
	}
	n := &INode{
		UID:  b[0],
		Flag: b[1],
		Bno:  binary.LittleEndian.Uint32(b[2:6]),
	}
	n.CreationTime = decodeTime(b[6 : 6+timeFieldSize])
	n.ModifiedTime = decodeTime(b[6+timeFieldSize : 6+2*timeFieldSize])
	return n, nil
}
