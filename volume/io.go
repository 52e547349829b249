package volume

// ReadInode decodes the INode stored at block bno.
func (v *Volume) ReadInode(bno uint32) (*INode, error) {
	buf, err := v.ReadBlock(bno)
	if err != nil {
		return nil, newErr(KindDeviceError, "readinode", "", err)
	}
	n, err := decodeINode(buf)
	if err != nil {
		return nil, newErr(KindDeviceError, "readinode", "", err)
	}
	return n, nil
}

// WriteInode encodes and writes n to block bno.
func (v *Volume) WriteInode(bno uint32, n *INode) error {
	if err := v.WriteBlock(bno, encodeINode(n)); err != nil {
		return newErr(KindDeviceError, "writeinode", "", err)
	}
	return nil
}

// ReadDirectory decodes the Directory stored at block bno.
func (v *Volume) ReadDirectory(bno uint32) (*Directory, error) {
	buf, err := v.ReadBlock(bno)
	if err != nil {
		return nil, newErr(KindDeviceError, "readdir", "", err)
	}
	d, err := decodeDirectory(buf, v.BlockSize)
	if err != nil {
		return nil, newErr(KindDeviceError, "readdir", "", err)
	}
	return d, nil
}

// WriteDirectory encodes and writes d to block bno.
func (v *Volume) WriteDirectory(bno uint32, d *Directory) error {
	if err := v.WriteBlock(bno, encodeDirectory(d, v.BlockSize)); err != nil {
		return newErr(KindDeviceError, "writedir", "", err)
	}
	return nil
}

// TrustedByFunc adapts the Superblock's trust matrix to the function
// shape CanRead/CanWrite expect.
func (v *Volume) TrustedByFunc() func(owner, acting uint8) bool {
	return v.TrustedBy
}
