package pathfs

import "strings"

// resolved identifies one directory entry: the block number of the
// directory that contains it, and its slot index within that
// directory's item array.
type resolved struct {
	dirBlock uint32
	index    int
}

func splitPathParts(p string) (parts []string, absolute bool) {
	absolute = strings.HasPrefix(p, "/")
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil, absolute
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts, absolute
}

// resolve walks path starting from start (the session's cwd, unless
// path is absolute, in which case it starts from the volume root) and
// returns the directory entry it names. It never reads or writes
// Session state — the side-effect-free redesign SPEC_FULL.md calls for
// in place of original_source's save/restore-current-directory pattern
// (every findDisk/cd/recursive-op call there swapped the live
// `directory`/`nowDiretoryDisk` members around a nested call).
//
// Every intermediate path component must name a directory the caller
// can read; the final component is returned unchecked so callers can
// apply the permission check appropriate to their own operation
// (read for cat, write for rm, owner for chmod, and so on).
func resolve(s *Session, path string) (resolved, error) {
	parts, absolute := splitPathParts(path)
	cur := s.Cwd
	if absolute {
		root, err := s.Vol.ReadInode(s.Vol.RootLocation())
		if err != nil {
			return resolved{}, wrapDeviceErr("resolve", path, err)
		}
		cur = root.Bno
	}
	if len(parts) == 0 {
		parts = []string{"."}
	}

	for i, name := range parts {
		dir, err := s.Vol.ReadDirectory(cur)
		if err != nil {
			return resolved{}, wrapDeviceErr("resolve", path, err)
		}
		idx := dir.find(name)
		if idx == -1 {
			return resolved{}, notFound("resolve", path)
		}
		if i == len(parts)-1 {
			return resolved{dirBlock: cur, index: idx}, nil
		}
		item := dir.Items[idx]
		inode, err := s.Vol.ReadInode(item.InodeIndex)
		if err != nil {
			return resolved{}, wrapDeviceErr("resolve", path, err)
		}
		if !inode.IsDirectory() {
			return resolved{}, notADirectory("resolve", path)
		}
		if !canRead(s, inode) {
			return resolved{}, permissionDenied("resolve", path)
		}
		cur = inode.Bno
	}
	return resolved{}, notFound("resolve", path)
}

// resolveParent splits path into its containing directory and base
// name, and resolves the directory half only. It is used by operations
// that create a new entry (touch/mkdir) and so must not fail just
// because the base name does not exist yet.
func resolveParent(s *Session, path string) (dirBlock uint32, base string, err error) {
	parts, absolute := splitPathParts(path)
	if len(parts) == 0 {
		return 0, "", invalidArgument("resolve", path)
	}
	base = parts[len(parts)-1]
	dirPath := "/" + strings.Join(parts[:len(parts)-1], "/")
	if !absolute {
		if len(parts) == 1 {
			return s.Cwd, base, nil
		}
		dirPath = strings.Join(parts[:len(parts)-1], "/")
	}
	r, err := resolve(s, dirPath)
	if err != nil {
		return 0, "", err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return 0, "", wrapDeviceErr("resolve", path, err)
	}
	targetInode, err := s.Vol.ReadInode(dir.Items[r.index].InodeIndex)
	if err != nil {
		return 0, "", wrapDeviceErr("resolve", path, err)
	}
	if !targetInode.IsDirectory() {
		return 0, "", notADirectory("resolve", path)
	}
	return targetInode.Bno, base, nil
}
