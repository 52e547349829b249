package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// User is one slot of the superblock's user table (§3). UID 0 is reserved
// ("none/system"); a live user always has UID == slot+1 (original_source
// computes this mapping inline throughout CommandLineInterface.cpp — kept
// explicit here via slotForUID/uidForSlot rather than re-derived ad hoc).
type User struct {
	UID      uint8
	Name     string
	Password string
}

func (u User) live() bool { return u.UID != SystemUID }

// Superblock is the in-memory mirror of block 0's packed record (§3, §6).
// VolumeID is an EXPANSION: a random UUID stamped at format time, stored
// in the reserved tail of the superblock record. No operation branches on
// it; it exists purely as volume-identifying metadata, mirroring the role
// google/uuid plays for the teacher's own ext4.FileSystem.
type Superblock struct {
	RootLocation         uint32
	FreeBlockCount       uint32
	FreeStackTopBlock    uint32
	FreeStackOffset      uint16
	AvailableCapacity    uint32
	Users                [MaxUsers]User
	TrustMatrix          [MaxUsers][MaxUsers]bool
	Dirty                bool
	VolumeID             uuid.UUID
}

// superblockSize is the fixed on-disk byte length of the packed record
// written immediately after the 7-byte header (§6).
const superblockSize = 4 + 4 + 4 + 2 + 4 + MaxUsers*(1+CredentialLength+CredentialLength) + MaxUsers*MaxUsers + 1 + 16

func encodeSuperblock(sb *Superblock) []byte {
	b := make([]byte, superblockSize)
	off := 0
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(b[off:off+4], v)
		off += 4
	}
	putU16 := func(v uint16) {
		binary.LittleEndian.PutUint16(b[off:off+2], v)
		off += 2
	}

	putU32(sb.RootLocation)
	putU32(sb.FreeBlockCount)
	putU32(sb.FreeStackTopBlock)
	putU16(sb.FreeStackOffset)
	putU32(sb.AvailableCapacity)

	for _, u := range sb.Users {
		b[off] = u.UID
		off++
		copy(b[off:off+CredentialLength], padName(u.Name, CredentialLength))
		off += CredentialLength
		copy(b[off:off+CredentialLength], padName(u.Password, CredentialLength))
		off += CredentialLength
	}

	for i := 0; i < MaxUsers; i++ {
		for j := 0; j < MaxUsers; j++ {
			if sb.TrustMatrix[i][j] {
				b[off] = 1
			}
			off++
		}
	}

	if sb.Dirty {
		b[off] = 1
	}
	off++

	idBytes, _ := sb.VolumeID.MarshalBinary()
	copy(b[off:off+16], idBytes)
	off += 16

	if off != superblockSize {
		panic(fmt.Sprintf("volume: superblock codec wrote %d bytes, want %d", off, superblockSize))
	}
	return b
}

func decodeSuperblock(b []byte) (*Superblock, error) {
	if len(b) < superblockSize {
		return nil, fmt.Errorf("volume: superblock buffer too short: %d < %d", len(b), superblockSize)
	}
	sb := &Superblock{}
	off := 0
	getU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
		return v
	}
	getU16 := func() uint16 {
		v := binary.LittleEndian.Uint16(b[off : off+2])
		off += 2
		return v
	}

	sb.RootLocation = getU32()
	sb.FreeBlockCount = getU32()
	sb.FreeStackTopBlock = getU32()
	sb.FreeStackOffset = getU16()
	sb.AvailableCapacity = getU32()

	for i := range sb.Users {
		uid := b[off]
		off++
		name := unpadName(b[off : off+CredentialLength])
		off += CredentialLength
		password := unpadName(b[off : off+CredentialLength])
		off += CredentialLength
		sb.Users[i] = User{UID: uid, Name: name, Password: password}
	}

	for i := 0; i < MaxUsers; i++ {
		for j := 0; j < MaxUsers; j++ {
			sb.TrustMatrix[i][j] = b[off] != 0
			off++
		}
	}

	sb.Dirty = b[off] != 0
	off++

	_ = sb.VolumeID.UnmarshalBinary(b[off : off+16])
	off += 16

	return sb, nil
}

func padName(s string, size int) []byte {
	b := make([]byte, size)
	copy(b, s)
	return b
}

func unpadName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// slotForUID returns the user-table index for uid, or -1 if uid is 0 or
// out of the valid 1..MaxUsers range. UID-to-slot is always uid-1
// (original_source: `idx = uid - 1` throughout).
func slotForUID(uid uint8) int {
	if uid == SystemUID || int(uid) > MaxUsers {
		return -1
	}
	return int(uid) - 1
}

func uidForSlot(slot int) uint8 { return uint8(slot + 1) }
