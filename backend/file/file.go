// Package file implements backend.Storage on top of a single host file,
// the "disk image" of SPEC_FULL.md §4.1.
package file

import (
	"fmt"
	"io"
	"os"

	"github.com/blockvol/blockvol/backend"
)

type rawBackend struct {
	f    *os.File
	size int64
}

var _ backend.Storage = (*rawBackend)(nil)

// Create makes a new host file of the given capacity, zero-filled, and
// returns a backend.Storage over it. It fails if pathName already exists,
// matching Device.create's "fresh image" semantics.
func Create(pathName string, capacity int64) (backend.Storage, error) {
	if pathName == "" {
		return nil, fmt.Errorf("file: must pass an image path")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("file: capacity must be positive, got %d", capacity)
	}
	f, err := os.OpenFile(pathName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, fmt.Errorf("file: could not create image %s: %w", pathName, err)
	}
	if err := zeroFill(f, capacity); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("file: could not zero-fill image %s: %w", pathName, err)
	}
	return &rawBackend{f: f, size: capacity}, nil
}

// Open opens an existing host file as a backend.Storage.
func Open(pathName string) (backend.Storage, error) {
	if pathName == "" {
		return nil, fmt.Errorf("file: must pass an image path")
	}
	f, err := os.OpenFile(pathName, os.O_RDWR, 0o666)
	if err != nil {
		return nil, fmt.Errorf("file: could not open image %s: %w", pathName, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("file: could not stat image %s: %w", pathName, err)
	}
	return &rawBackend{f: f, size: info.Size()}, nil
}

func zeroFill(f *os.File, capacity int64) error {
	const chunk = 1 << 20
	buf := make([]byte, chunk)
	var written int64
	for written < capacity {
		n := chunk
		if remaining := capacity - written; remaining < int64(chunk) {
			n = int(remaining)
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return err
		}
		written += int64(n)
	}
	return f.Sync()
}

func (r *rawBackend) Size() int64 { return r.size }

func (r *rawBackend) ReadAt(p []byte, off int64) error {
	n, err := r.f.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("file: read at %d: %w", off, err)
	}
	if n != len(p) {
		return backend.ErrShortIO
	}
	return nil
}

func (r *rawBackend) WriteAt(p []byte, off int64) error {
	n, err := r.f.WriteAt(p, off)
	if err != nil {
		return fmt.Errorf("file: write at %d: %w", off, err)
	}
	if n != len(p) {
		return backend.ErrShortIO
	}
	return r.sync()
}

func (r *rawBackend) Sync() error {
	return r.sync()
}

func (r *rawBackend) Close() error {
	return r.f.Close()
}
