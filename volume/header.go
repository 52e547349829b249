package volume

import (
	"encoding/binary"
	"fmt"
)

// header is the fixed record at byte 0 of block 0, written before the
// image is ever formatted and read back on every Mount to validate that
// a backend actually holds a volume image (original_source: DiskDriver
// stores capacity and isUnformatted this way; FileManagerSystem::mount
// refuses to proceed while isUnformatted is set).
type header struct {
	Capacity      uint32
	IsUnformatted int8
	BlockSize     uint16
}

func encodeHeader(h header) []byte {
	b := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(b[0:4], h.Capacity)
	b[4] = byte(h.IsUnformatted)
	binary.LittleEndian.PutUint16(b[5:7], h.BlockSize)
	return b
}

func decodeHeader(b []byte) (header, error) {
	if len(b) < headerSize {
		return header{}, fmt.Errorf("volume: header buffer too short: %d < %d", len(b), headerSize)
	}
	return header{
		Capacity:      binary.LittleEndian.Uint32(b[0:4]),
		IsUnformatted: int8(b[4]),
		BlockSize:     binary.LittleEndian.Uint16(b[5:7]),
	}, nil
}
