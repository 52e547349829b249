package volume

import "encoding/binary"

// FileIndex is one link of a file's content chain (original_source:
// entity/FileIndex.h). Index holds up to fileIndexCount(blockSize) data
// block numbers, terminated by the first zero entry; Next chains to the
// FileIndex covering the following run of content, 0 if this is the
// last link.
type FileIndex struct {
	Index []uint32
	Next  uint32
}

// fileIndexCount returns K, the number of data-block slots in one
// FileIndex block: the block holds K uint32 slots plus a trailing
// uint32 "next" pointer.
func fileIndexCount(blockSize uint16) int {
	return int(blockSize)/4 - 1
}

func encodeFileIndex(fi *FileIndex, blockSize uint16) []byte {
	b := make([]byte, blockSize)
	off := 0
	for _, bno := range fi.Index {
		binary.LittleEndian.PutUint32(b[off:off+4], bno)
		off += 4
	}
	binary.LittleEndian.PutUint32(b[int(blockSize)-fileIndexTrailerSize:], fi.Next)
	return b
}

func decodeFileIndex(b []byte, blockSize uint16) *FileIndex {
	k := fileIndexCount(blockSize)
	fi := &FileIndex{Index: make([]uint32, k)}
	off := 0
	for i := 0; i < k; i++ {
		fi.Index[i] = binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
	}
	fi.Next = binary.LittleEndian.Uint32(b[int(blockSize)-fileIndexTrailerSize:])
	return fi
}
