package volume

import "encoding/binary"

// The free block stack occupies a fixed run of reserved blocks, written
// once at Format time and thereafter grown and shrunk in place by
// Allocate/Free: a flat array of block numbers spread across the
// reserved stack blocks, addressed by a (top block, offset) pair stored
// in the superblock, one full block's worth of entries (blockSize/4) per
// reserved block (original_source: FreeBlockStack's window size).
func entriesPerBlock(blockSize uint16) int {
	return int(blockSize) / 4
}

// stackBlockCount returns how many reserved blocks are needed to hold
// one uint32 per data block of a totalBlocks-sized image.
func stackBlockCount(totalBlocks uint32, blockSize uint16) uint32 {
	epb := uint32(entriesPerBlock(blockSize))
	return (totalBlocks + epb - 1) / epb
}

func (v *Volume) stackSlot(block uint32, offset int) int64 {
	return int64(block)*int64(v.BlockSize) + int64(offset)*4
}

// pushFree writes bno onto the free stack, growing into the next
// reserved block when the current one is full.
func (v *Volume) pushFree(bno uint32) error {
	sb := v.sb
	epb := entriesPerBlock(v.BlockSize)
	if int(sb.FreeStackOffset) == epb {
		sb.FreeStackTopBlock++
		sb.FreeStackOffset = 0
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, bno)
	if err := v.writeAt(v.stackSlot(sb.FreeStackTopBlock, int(sb.FreeStackOffset)), buf); err != nil {
		return err
	}
	sb.FreeStackOffset++
	sb.FreeBlockCount++
	sb.Dirty = true
	return nil
}

// popFree removes and returns the top entry of the free stack.
func (v *Volume) popFree() (uint32, error) {
	sb := v.sb
	if sb.FreeStackOffset == 0 {
		if sb.FreeStackTopBlock <= 1 {
			return 0, newErr(KindNoSpace, "allocate", "", nil)
		}
		sb.FreeStackTopBlock--
		sb.FreeStackOffset = uint16(entriesPerBlock(v.BlockSize))
	}
	sb.FreeStackOffset--
	buf := make([]byte, 4)
	if err := v.readAt(v.stackSlot(sb.FreeStackTopBlock, int(sb.FreeStackOffset)), buf); err != nil {
		return 0, err
	}
	sb.FreeBlockCount--
	sb.Dirty = true
	return binary.LittleEndian.Uint32(buf), nil
}

// Allocate reserves one free block and zero-fills it, matching
// FileManagerSystem::blockAllocate followed by the zero-initialisation
// every caller in original_source performs before writing real content.
func (v *Volume) Allocate(op string) (uint32, error) {
	bno, err := v.popFree()
	if err != nil {
		return 0, err
	}
	zero := make([]byte, v.BlockSize)
	if err := v.WriteBlock(bno, zero); err != nil {
		return 0, newErr(KindDeviceError, op, "", err)
	}
	return bno, nil
}

// Free returns a block to the allocator (FileManagerSystem::blockFree).
func (v *Volume) Free(bno uint32) error {
	return v.pushFree(bno)
}

// formatFreeStack lays out the initial free list across blocks
// reserved..totalBlocks-1 so that Allocate hands them out in ascending
// order on a freshly formatted volume, matching the original's bootstrap
// behaviour (format writes the list so the smallest free block number
// surfaces first).
func (v *Volume) formatFreeStack(reserved, totalBlocks uint32) error {
	v.sb.FreeStackTopBlock = 1
	v.sb.FreeStackOffset = 0
	for b := totalBlocks; b > reserved; b-- {
		if err := v.pushFree(b - 1); err != nil {
			return err
		}
	}
	return nil
}
