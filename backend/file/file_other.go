//go:build !linux
// +build !linux

package file

// sync flushes buffered writes to the host. Every non-linux target
// (darwin, the BSDs, windows, …) falls back to the portable
// os.File.Sync — x/sys/unix only wraps fdatasync(2) on linux.
func (r *rawBackend) sync() error {
	return r.f.Sync()
}
