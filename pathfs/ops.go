package pathfs

import (
	"time"

	"github.com/blockvol/blockvol/volume"
)

// Touch creates an empty file named by path (original_source: touch).
// The parent directory must exist and be writable by the session's uid;
// the name itself must not already exist. A head FileIndex block is
// allocated for the new file same as any other write — touch is not a
// zero-block operation (original_source allocates one block for the
// inode and a second for the always-present head FileIndex).
func Touch(s *Session, path string) error {
	parentBno, name, err := resolveParent(s, path)
	if err != nil {
		return err
	}
	dir, err := readWritableDir(s, "touch", path, parentBno)
	if err != nil {
		return err
	}
	if dir.find(name) != -1 {
		return exists("touch", path)
	}
	slot := dir.firstFree()
	if slot == -1 {
		return noSpace("touch", path)
	}
	contentBno, err := s.Vol.WriteFileContent(nil)
	if err != nil {
		return err
	}
	inodeBno, err := s.Vol.Allocate("touch")
	if err != nil {
		return err
	}
	n := volume.NewFileINode(s.UID, contentBno, time.Now())
	if err := s.Vol.WriteInode(inodeBno, n); err != nil {
		return err
	}
	dir.Items[slot] = volume.DirectoryItem{InodeIndex: inodeBno, Name: name}
	return s.Vol.WriteDirectory(parentBno, dir)
}

// Mkdir creates a new, empty directory named by path (original_source:
// mkdir). "." and ".." are written automatically, both pointing at the
// new directory itself and at its parent.
func Mkdir(s *Session, path string) error {
	parentBno, name, err := resolveParent(s, path)
	if err != nil {
		return err
	}
	dir, err := readWritableDir(s, "mkdir", path, parentBno)
	if err != nil {
		return err
	}
	if dir.find(name) != -1 {
		return exists("mkdir", path)
	}
	slot := dir.firstFree()
	if slot == -1 {
		return noSpace("mkdir", path)
	}
	parentInodeBno, err := findOwningInode(s, parentBno)
	if err != nil {
		return wrapDeviceErr("mkdir", path, err)
	}
	inodeBno, err := s.Vol.Allocate("mkdir")
	if err != nil {
		return err
	}
	dataBno, err := s.Vol.Allocate("mkdir")
	if err != nil {
		return err
	}
	n := volume.NewDirINode(s.UID, dataBno, time.Now())
	if err := s.Vol.WriteInode(inodeBno, n); err != nil {
		return err
	}
	newDir := volume.NewDirectory(s.Vol.BlockSize, inodeBno, parentInodeBno)
	if err := s.Vol.WriteDirectory(dataBno, newDir); err != nil {
		return err
	}
	dir.Items[slot] = volume.DirectoryItem{InodeIndex: inodeBno, Name: name}
	return s.Vol.WriteDirectory(parentBno, dir)
}

// Remove deletes the file named by path (original_source: rm). It
// refuses to remove a directory; use RemoveDir for that.
func Remove(s *Session, path string) error {
	r, err := resolve(s, path)
	if err != nil {
		return err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("rm", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return wrapDeviceErr("rm", path, err)
	}
	if n.IsDirectory() {
		return notAFile("rm", path)
	}
	if !canWrite(s, n) {
		return permissionDenied("rm", path)
	}
	if err := removeFileEntry(s, item.InodeIndex, n); err != nil {
		return err
	}
	dir, err = s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("rm", path, err)
	}
	dir.removeAt(r.index)
	return s.Vol.WriteDirectory(r.dirBlock, dir)
}

// removeFileEntry frees the file content chain and the inode block
// itself, leaving the directory entry untouched (the caller removes the
// entry once the underlying object is gone).
func removeFileEntry(s *Session, inodeBno uint32, n *volume.INode) error {
	if n.Bno != 0 {
		if err := s.Vol.FreeFileContent(n.Bno); err != nil {
			return err
		}
	}
	return s.Vol.Free(inodeBno)
}

// RemoveDir deletes the directory named by path along with everything
// it contains (original_source: rmdir). The walk is not transactional
// — entries are deleted one at a time, and a failure partway through
// leaves every entry removed up to that point removed (see DESIGN.md,
// decision OQ-6).
func RemoveDir(s *Session, path string) error {
	r, err := resolve(s, path)
	if err != nil {
		return err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("rmdir", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return wrapDeviceErr("rmdir", path, err)
	}
	if !n.IsDirectory() {
		return notADirectory("rmdir", path)
	}
	if !canWrite(s, n) {
		return permissionDenied("rmdir", path)
	}
	if err := removeDirectoryRecursive(s, "rmdir", item.InodeIndex, n); err != nil {
		return err
	}
	dir, err = s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("rmdir", path, err)
	}
	dir.removeAt(r.index)
	return s.Vol.WriteDirectory(r.dirBlock, dir)
}

// removeDirectoryRecursive empties and frees the directory living at
// inodeBno/n, descending into subdirectories first. It re-reads the
// directory block after every single removal rather than iterating a
// precomputed snapshot, mirroring original_source's loop of
// "remove entry at i, compact, continue scanning from i" instead of
// indexing a stale slice of what used to be there.
func removeDirectoryRecursive(s *Session, op string, inodeBno uint32, n *volume.INode) error {
	for {
		dir, err := s.Vol.ReadDirectory(n.Bno)
		if err != nil {
			return wrapDeviceErr(op, "", err)
		}
		live := dir.Entries()
		if len(live) == 0 {
			break
		}
		first := live[0]
		idx := dir.find(first.Name)
		child, err := s.Vol.ReadInode(first.InodeIndex)
		if err != nil {
			return wrapDeviceErr(op, first.Name, err)
		}
		if child.IsDirectory() {
			if err := removeDirectoryRecursive(s, op, first.InodeIndex, child); err != nil {
				return err
			}
		} else {
			if child.Bno != 0 {
				if err := s.Vol.FreeFileContent(child.Bno); err != nil {
					return err
				}
			}
			if err := s.Vol.Free(first.InodeIndex); err != nil {
				return err
			}
		}
		dir, err = s.Vol.ReadDirectory(n.Bno)
		if err != nil {
			return wrapDeviceErr(op, "", err)
		}
		dir.removeAt(idx)
		if err := s.Vol.WriteDirectory(n.Bno, dir); err != nil {
			return err
		}
	}
	if err := s.Vol.Free(n.Bno); err != nil {
		return err
	}
	return s.Vol.Free(inodeBno)
}

// ReadFile resolves path and returns its file content (original_source:
// cat's read path, split out as its own reusable operation).
func ReadFile(s *Session, path string) ([]byte, error) {
	r, err := resolve(s, path)
	if err != nil {
		return nil, err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return nil, wrapDeviceErr("cat", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return nil, wrapDeviceErr("cat", path, err)
	}
	if !n.IsFile() {
		return nil, notAFile("cat", path)
	}
	if !canRead(s, n) {
		return nil, permissionDenied("cat", path)
	}
	return s.Vol.ReadFileContent(n.Bno)
}

// Copy reads the file named by src and writes it to dst (original_source:
// cp, built on cat's read path and vim's create-or-fail write path). The
// destination's creation time is copied from the source; its modified
// time is set to now. cp never overwrites an existing destination.
func Copy(s *Session, src, dst string) error {
	r, err := resolve(s, src)
	if err != nil {
		return err
	}
	srcDir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("cp", src, err)
	}
	srcItem := srcDir.Items[r.index]
	srcInode, err := s.Vol.ReadInode(srcItem.InodeIndex)
	if err != nil {
		return wrapDeviceErr("cp", src, err)
	}
	if !srcInode.IsFile() {
		return notAFile("cp", src)
	}
	if !canRead(s, srcInode) {
		return permissionDenied("cp", src)
	}
	content, err := s.Vol.ReadFileContent(srcInode.Bno)
	if err != nil {
		return err
	}

	dstParentBno, dstName, err := resolveParent(s, dst)
	if err != nil {
		return err
	}
	dstDir, err := readWritableDir(s, "cp", dst, dstParentBno)
	if err != nil {
		return err
	}
	if dstDir.find(dstName) != -1 {
		return exists("cp", dst)
	}
	slot := dstDir.firstFree()
	if slot == -1 {
		return noSpace("cp", dst)
	}
	bno, err := s.Vol.WriteFileContent(content)
	if err != nil {
		return err
	}
	n := &volume.INode{
		UID:          s.UID,
		Flag:         srcInode.Flag,
		Bno:          bno,
		CreationTime: srcInode.CreationTime,
		ModifiedTime: time.Now(),
	}
	inodeBno, err := s.Vol.Allocate("cp")
	if err != nil {
		return err
	}
	if err := s.Vol.WriteInode(inodeBno, n); err != nil {
		return err
	}
	dstDir.Items[slot] = volume.DirectoryItem{InodeIndex: inodeBno, Name: dstName}
	return s.Vol.WriteDirectory(dstParentBno, dstDir)
}

// WriteFile creates path if it does not exist, or replaces its content
// in place if it does (original_source: vim's ordinary interactive
// edit-in-place path — unlike Copy/Move's create-or-fail destination
// write, an existing file here is simply overwritten). creationTime
// optionally overrides the stamp used only when the file is newly
// created; hostsync uses this to preserve a host file's original birth
// time on import.
func WriteFile(s *Session, path string, content []byte, creationTime ...time.Time) error {
	now := time.Now()
	r, err := resolve(s, path)
	switch {
	case err == nil:
		return overwriteFile(s, path, r, content, now)
	case volume.KindOf(err) == volume.KindNotFound:
		created := now
		if len(creationTime) > 0 && !creationTime[0].IsZero() {
			created = creationTime[0]
		}
		return createFile(s, path, content, created)
	default:
		return err
	}
}

func overwriteFile(s *Session, path string, r resolved, content []byte, now time.Time) error {
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("vim", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return wrapDeviceErr("vim", path, err)
	}
	if n.IsDirectory() {
		return notAFile("vim", path)
	}
	if !canWrite(s, n) {
		return permissionDenied("vim", path)
	}
	if n.Bno != 0 {
		if err := s.Vol.FreeFileContent(n.Bno); err != nil {
			return err
		}
	}
	bno, err := s.Vol.WriteFileContent(content)
	if err != nil {
		return err
	}
	n.Bno = bno
	n.ModifiedTime = now
	return s.Vol.WriteInode(item.InodeIndex, n)
}

func createFile(s *Session, path string, content []byte, created time.Time) error {
	parentBno, name, err := resolveParent(s, path)
	if err != nil {
		return err
	}
	dir, err := readWritableDir(s, "vim", path, parentBno)
	if err != nil {
		return err
	}
	slot := dir.firstFree()
	if slot == -1 {
		return noSpace("vim", path)
	}
	bno, err := s.Vol.WriteFileContent(content)
	if err != nil {
		return err
	}
	inodeBno, err := s.Vol.Allocate("vim")
	if err != nil {
		return err
	}
	n := volume.NewFileINode(s.UID, bno, created)
	if err := s.Vol.WriteInode(inodeBno, n); err != nil {
		return err
	}
	dir.Items[slot] = volume.DirectoryItem{InodeIndex: inodeBno, Name: name}
	return s.Vol.WriteDirectory(parentBno, dir)
}

// Move copies src to dst and then removes src (original_source: mv is
// literally cp followed by rm of the source).
func Move(s *Session, src, dst string) error {
	if err := Copy(s, src, dst); err != nil {
		return err
	}
	return Remove(s, src)
}

// Chmod rewrites the permission triad named by who on the file or
// directory named by path (original_source: chmod). Only the object's
// owner, or a sudo session, may do this — and never for a system-owned
// object, even under sudo (DESIGN.md decision OQ-3).
func Chmod(s *Session, path string, who volume.Who, access string) error {
	r, err := resolve(s, path)
	if err != nil {
		return err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return wrapDeviceErr("chmod", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return wrapDeviceErr("chmod", path, err)
	}
	if !canChangeOwner(s, n) {
		return permissionDenied("chmod", path)
	}
	n.Flag = volume.ApplyChmod(n.Flag, who, access)
	n.ModifiedTime = time.Now()
	return s.Vol.WriteInode(item.InodeIndex, n)
}

// readWritableDir loads the directory at bno and checks the session may
// write it (required before adding or removing an entry).
func readWritableDir(s *Session, op, path string, bno uint32) (*volume.Directory, error) {
	dirInodeBno, err := findOwningInode(s, bno)
	if err == nil {
		n, ierr := s.Vol.ReadInode(dirInodeBno)
		if ierr == nil && !canWrite(s, n) {
			return nil, permissionDenied(op, path)
		}
	}
	dir, err := s.Vol.ReadDirectory(bno)
	if err != nil {
		return nil, wrapDeviceErr(op, path, err)
	}
	return dir, nil
}

// findOwningInode recovers the inode block number that owns the
// directory data block at dataBno, by reading the "." entry stored in
// that very directory (every directory's own "." entry points at the
// inode block that owns it).
func findOwningInode(s *Session, dataBno uint32) (uint32, error) {
	dir, err := s.Vol.ReadDirectory(dataBno)
	if err != nil {
		return 0, err
	}
	if len(dir.Items) == 0 {
		return 0, notFound("resolve", "")
	}
	return dir.Items[0].InodeIndex, nil
}
