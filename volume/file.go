package volume

// ReadFileContent walks the FileIndex chain starting at bno and returns
// the file's bytes. Every zero byte in a data block is dropped, not
// just a trailing pad run (original_source: readFileBlock appends a
// byte only `if (buf[j])`). A bno of 0 denotes an empty file.
func (v *Volume) ReadFileContent(bno uint32) ([]byte, error) {
	var content []byte
	next := bno
	for next != 0 {
		buf, err := v.ReadBlock(next)
		if err != nil {
			return nil, newErr(KindDeviceError, "read", "", err)
		}
		fi := decodeFileIndex(buf, v.BlockSize)
		for _, d := range fi.Index {
			if d == 0 {
				break
			}
			data, err := v.ReadBlock(d)
			if err != nil {
				return nil, newErr(KindDeviceError, "read", "", err)
			}
			for _, c := range data {
				if c != 0 {
					content = append(content, c)
				}
			}
		}
		next = fi.Next
	}
	return content, nil
}

// WriteFileContent allocates a fresh FileIndex chain holding content and
// returns the block number of its first (head) link, to be stored as
// the owning INode's Bno. Even empty content gets a head FileIndex
// block, with every Index slot and Next left zero (original_source:
// touch's two blockAllocate() calls — one for the inode, one for the
// always-present head FileIndex — store fileInode.bno = fileIndexDisk
// unconditionally; 0 is never a valid file content bno). Chunks are
// built tail-first (original_source: writeFile iterates from the last
// chunk backward) so every FileIndex's Next is already known by the
// time it is written.
func (v *Volume) WriteFileContent(content []byte) (uint32, error) {
	k := fileIndexCount(v.BlockSize)
	chunkSize := k * int(v.BlockSize)
	if chunkSize <= 0 {
		return 0, newErr(KindInvalidArgument, "write", "", nil)
	}
	totalChunks := (len(content) + chunkSize - 1) / chunkSize
	if totalChunks == 0 {
		totalChunks = 1
	}
	var next uint32
	for i := totalChunks - 1; i >= 0; i-- {
		start := i * chunkSize
		end := len(content)
		if (i+1)*chunkSize < end {
			end = (i + 1) * chunkSize
		}
		var err error
		next, err = v.writeFileBlock(next, content[start:end])
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

func (v *Volume) writeFileBlock(nextDisk uint32, chunk []byte) (uint32, error) {
	k := fileIndexCount(v.BlockSize)
	fi := &FileIndex{Index: make([]uint32, k), Next: nextDisk}
	i := 0
	for ; i < k && i*int(v.BlockSize) < len(chunk); i++ {
		start := i * int(v.BlockSize)
		end := len(chunk)
		if (i+1)*int(v.BlockSize) < end {
			end = (i + 1) * int(v.BlockSize)
		}
		buf := make([]byte, v.BlockSize)
		copy(buf, chunk[start:end])
		bno, err := v.Allocate("write")
		if err != nil {
			return 0, err
		}
		if err := v.WriteBlock(bno, buf); err != nil {
			return 0, newErr(KindDeviceError, "write", "", err)
		}
		fi.Index[i] = bno
	}
	fileIndexDisk, err := v.Allocate("write")
	if err != nil {
		return 0, err
	}
	if err := v.WriteBlock(fileIndexDisk, encodeFileIndex(fi, v.BlockSize)); err != nil {
		return 0, newErr(KindDeviceError, "write", "", err)
	}
	return fileIndexDisk, nil
}

// FreeFileContent releases every data block and FileIndex block in the
// chain rooted at bno (original_source: freeFile/freeFileBlock).
func (v *Volume) FreeFileContent(bno uint32) error {
	next := bno
	for next != 0 {
		buf, err := v.ReadBlock(next)
		if err != nil {
			return newErr(KindDeviceError, "free", "", err)
		}
		fi := decodeFileIndex(buf, v.BlockSize)
		for _, d := range fi.Index {
			if d == 0 {
				break
			}
			if err := v.Free(d); err != nil {
				return err
			}
		}
		nxt := fi.Next
		if err := v.Free(next); err != nil {
			return err
		}
		next = nxt
	}
	return nil
}
