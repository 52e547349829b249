// Package volume implements the block-structured virtual file system
// described by this repository: a single host file holding a superblock,
// a free-block allocator stack, and a tree of INode/Directory/FileIndex
// records. Volume is the entry point — Create/Format build a fresh
// image, Mount opens an existing one, and every other package in this
// module (pathfs, hostsync) operates through it.
package volume

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blockvol/blockvol/backend"
	"github.com/blockvol/blockvol/backend/file"
)

// Params configures Format, styled on the teacher's filesystem.Params
// pattern (ext4.Params): every field has a sensible zero value.
type Params struct {
	// BlockSize is the on-disk block size. Zero selects DefaultBlockSize.
	BlockSize uint16
}

// Volume is a mounted (or freshly formatted) instance of the file
// system. It is not safe for concurrent use; callers serialize access
// themselves (see SPEC_FULL.md, Ambient Stack / Concurrency).
type Volume struct {
	storage   backend.Storage
	BlockSize uint16
	sb        *Superblock

	log *logrus.Logger
}

// Option configures a Volume at Create/Mount time.
type Option func(*Volume)

// WithLogger overrides the default logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(v *Volume) { v.log = l }
}

func newVolume(st backend.Storage, opts []Option) *Volume {
	v := &Volume{storage: st, log: logrus.StandardLogger()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Create makes a new, unformatted host file of the given capacity and
// returns a Volume over it. Call Format before any other operation.
func Create(path string, capacity int64, opts ...Option) (*Volume, error) {
	st, err := file.Create(path, capacity)
	if err != nil {
		return nil, newErr(KindDeviceError, "create", path, err)
	}
	v := newVolume(st, opts)
	h := header{Capacity: uint32(capacity), IsUnformatted: unformattedMarker}
	if err := v.writeAt(0, encodeHeader(h)); err != nil {
		return nil, newErr(KindDeviceError, "create", path, err)
	}
	return v, nil
}

// Format lays down a fresh superblock, free block stack, and root
// directory, matching FileManagerSystem::format (original_source).
func (v *Volume) Format(p Params) error {
	blockSize := p.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	hb := make([]byte, headerSize)
	if err := v.readAt(0, hb); err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}
	h, err := decodeHeader(hb)
	if err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}
	v.BlockSize = blockSize
	totalBlocks := h.Capacity / uint32(blockSize)
	reservedStack := stackBlockCount(totalBlocks, blockSize)
	rootLocation := reservedStack + 1
	rootData := rootLocation + 1
	reserved := reservedStack + 3

	if totalBlocks <= reserved {
		return newErr(KindInvalidArgument, "format", "", fmt.Errorf("capacity too small for block size %d", blockSize))
	}

	vid, err := uuid.NewRandom()
	if err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}

	sb := &Superblock{
		RootLocation:      rootLocation,
		AvailableCapacity: uint32(blockSize) * (totalBlocks - reserved),
		VolumeID:          vid,
	}
	sb.Users[0] = User{UID: RootUID, Name: "root", Password: DefaultRootPassword}
	sb.TrustMatrix[0][0] = true
	v.sb = sb

	if err := v.formatFreeStack(reserved, totalBlocks); err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}

	root := &INode{UID: SystemUID, Bno: rootData, Flag: rootDirFlag}
	root.CreationTime = time.Now()
	root.ModifiedTime = root.CreationTime
	if err := v.WriteBlock(rootLocation, padBlock(encodeINode(root), blockSize)); err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}
	dir := newDirectory(blockSize, rootLocation, rootLocation)
	if err := v.WriteBlock(rootData, encodeDirectory(dir, blockSize)); err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}

	h.IsUnformatted = formattedMarker
	h.BlockSize = blockSize
	if err := v.writeAt(0, encodeHeader(h)); err != nil {
		return newErr(KindDeviceError, "format", "", err)
	}
	if err := v.writeSuperblock(); err != nil {
		return err
	}

	v.log.WithFields(logrus.Fields{"op": "format", "blocks": totalBlocks, "blockSize": blockSize}).Info("volume formatted")
	return nil
}

// Mount opens an existing image and loads its superblock.
func Mount(path string, opts ...Option) (*Volume, error) {
	st, err := file.Open(path)
	if err != nil {
		return nil, newErr(KindDeviceError, "mount", path, err)
	}
	v := newVolume(st, opts)
	hb := make([]byte, headerSize)
	if err := v.readAt(0, hb); err != nil {
		return nil, newErr(KindDeviceError, "mount", path, err)
	}
	h, err := decodeHeader(hb)
	if err != nil {
		return nil, newErr(KindDeviceError, "mount", path, err)
	}
	if h.IsUnformatted == unformattedMarker {
		return nil, newErr(KindInvalidArgument, "mount", path, fmt.Errorf("volume is not formatted"))
	}
	v.BlockSize = h.BlockSize
	sbBuf := make([]byte, superblockSize)
	if err := v.readAt(int64(headerSize), sbBuf); err != nil {
		return nil, newErr(KindDeviceError, "mount", path, err)
	}
	sb, err := decodeSuperblock(sbBuf)
	if err != nil {
		return nil, newErr(KindDeviceError, "mount", path, err)
	}
	v.sb = sb

	v.log.WithFields(logrus.Fields{"op": "mount", "path": path, "volumeID": sb.VolumeID}).Info("volume mounted")
	return v, nil
}

// Flush persists the superblock if dirty and syncs the backend.
func (v *Volume) Flush() error {
	if v.sb != nil && v.sb.Dirty {
		if err := v.writeSuperblock(); err != nil {
			return err
		}
	}
	if err := v.storage.Sync(); err != nil {
		return newErr(KindDeviceError, "flush", "", err)
	}
	v.log.WithFields(logrus.Fields{"op": "flush"}).Debug("volume flushed")
	return nil
}

// Close flushes and releases the backend.
func (v *Volume) Close() error {
	if err := v.Flush(); err != nil {
		return err
	}
	if err := v.storage.Close(); err != nil {
		return newErr(KindDeviceError, "close", "", err)
	}
	return nil
}

func (v *Volume) writeSuperblock() error {
	if err := v.writeAt(int64(headerSize), encodeSuperblock(v.sb)); err != nil {
		return newErr(KindDeviceError, "flush", "", err)
	}
	v.sb.Dirty = false
	return nil
}

// RootLocation returns the root directory's inode block number.
func (v *Volume) RootLocation() uint32 { return v.sb.RootLocation }

// Superblock exposes the mounted superblock for callers (pathfs
// permission and user-management code) that need direct access.
func (v *Volume) Superblock() *Superblock { return v.sb }

func (v *Volume) readAt(off int64, buf []byte) error {
	return v.storage.ReadAt(buf, off)
}

func (v *Volume) writeAt(off int64, buf []byte) error {
	return v.storage.WriteAt(buf, off)
}

// ReadBlock reads the full contents of block bno.
func (v *Volume) ReadBlock(bno uint32) ([]byte, error) {
	buf := make([]byte, v.BlockSize)
	if err := v.readAt(int64(bno)*int64(v.BlockSize), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBlock writes buf (padded or truncated to BlockSize) to block bno.
func (v *Volume) WriteBlock(bno uint32, buf []byte) error {
	return v.writeAt(int64(bno)*int64(v.BlockSize), padBlock(buf, v.BlockSize))
}

func padBlock(b []byte, blockSize uint16) []byte {
	if len(b) == int(blockSize) {
		return b
	}
	out := make([]byte, blockSize)
	copy(out, b)
	return out
}
