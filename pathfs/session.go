// Package pathfs implements the path-resolution and directory/file
// operations layered on top of volume.Volume: touch, mkdir, rm, rmdir,
// mv, cp, chmod, stat and listing, all scoped to one logged-in Session.
//
// original_source's CommandLineInterface kept "the current directory"
// as a mutable member (directory, nowDiretoryDisk) that every recursive
// or nested-path call saved and restored around itself. SPEC_FULL.md
// calls for a side-effect-free resolver instead (see resolve.go): a
// Session only carries the *current* working directory; resolving a
// path never touches it.
package pathfs

import (
	"github.com/blockvol/blockvol/volume"
)

// Session is one logged-in user's view of a mounted Volume: a uid, the
// current working directory's data block, and the one-shot sudo flag
// that original_source calls sudoMode (set for the duration of a single
// command, per SPEC_FULL.md's sudo-mode session semantics).
type Session struct {
	Vol  *volume.Volume
	UID  uint8
	Sudo bool
	Cwd  uint32
}

// NewSession opens a session for uid rooted at the volume's root
// directory.
func NewSession(v *volume.Volume, uid uint8) (*Session, error) {
	root, err := v.ReadInode(v.RootLocation())
	if err != nil {
		return nil, err
	}
	return &Session{Vol: v, UID: uid, Cwd: root.Bno}, nil
}

// WithSudo runs fn with Sudo set, always clearing it afterward —
// sudo never outlives the single command it was granted for.
func (s *Session) WithSudo(fn func() error) error {
	s.Sudo = true
	defer func() { s.Sudo = false }()
	return fn()
}

func (s *Session) trustedBy() func(owner, acting uint8) bool {
	return s.Vol.TrustedByFunc()
}

// Chdir changes the session's current directory to path
// (original_source: cd). Unlike original_source's cd, which mutated the
// live directory/nowDiretoryDisk members through the same save/restore
// dance every other recursive command used, this only ever assigns
// Cwd — resolving path is entirely the side-effect-free resolve's job.
func (s *Session) Chdir(path string) error {
	r, err := resolve(s, path)
	if err != nil {
		return err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("cd", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return wrapDeviceErr("cd", path, err)
	}
	if !n.IsDirectory() {
		return notADirectory("cd", path)
	}
	if !canRead(s, n) {
		return permissionDenied("cd", path)
	}
	s.Cwd = n.Bno
	return nil
}
