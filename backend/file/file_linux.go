//go:build linux
// +build linux

package file

import "golang.org/x/sys/unix"

// sync flushes buffered writes to the host using fdatasync, a stronger
// guarantee than os.File.Sync's fsync-everything semantics and cheaper
// for the write-heavy, metadata-light pattern of block I/O.
// unix.Fdatasync only exists on linux in golang.org/x/sys/unix (the other
// BSDs and darwin expose Fsync but never wrap fdatasync(2)), so this file
// is linux-only; every other platform falls back to file_other.go.
func (r *rawBackend) sync() error {
	if err := unix.Fdatasync(int(r.f.Fd())); err != nil {
		return r.f.Sync()
	}
	return nil
}
