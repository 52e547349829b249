package pathfs

import (
	"strconv"
	"time"

	"github.com/blockvol/blockvol/volume"
)

// Entry is the ls -l-equivalent field set for one directory item
// (original_source: CommandLineInterface::ls's per-entry line — type
// character, permission triads, owner, size, both timestamps, name).
// This is a supplemented feature: original_source's ls only prints a
// plain name list, never resolves the owner or prints timestamps; the
// richer listing here follows what a real ls actually reports.
type Entry struct {
	Name         string
	IsDir        bool
	Owner        string
	UID          uint8
	Mode         string
	Size         uint32
	CreationTime time.Time
	ModifiedTime time.Time
}

// modeString renders flag as a 10-character type+permission string, the
// same layout ls -l uses: a leading d/- for directory/file, then
// trusted rwx, then other rwx repeated into both the group and world
// columns — there is no separate group triad in this permission model
// (§4.5), only "trusted" and "other".
func modeString(isDir bool, flag uint8) string {
	b := []byte("----------")
	if isDir {
		b[0] = 'd'
	}
	bits := []struct {
		mask uint8
		pos  int
		ch   byte
	}{
		{1 << 5, 1, 'r'}, {1 << 4, 2, 'w'}, {1 << 3, 3, 'x'},
		{1 << 2, 4, 'r'}, {1 << 1, 5, 'w'}, {1 << 0, 6, 'x'},
		{1 << 2, 7, 'r'}, {1 << 1, 8, 'w'}, {1 << 0, 9, 'x'},
	}
	for _, f := range bits {
		if flag&f.mask != 0 {
			b[f.pos] = f.ch
		}
	}
	return string(b)
}

func ownerName(s *Session, uid uint8) string {
	if uid == volume.SystemUID {
		return "root"
	}
	if u, ok := s.Vol.UserByUID(uid); ok {
		return u.Name
	}
	return strconv.Itoa(int(uid))
}

func toEntry(s *Session, item volume.DirectoryItem, n *volume.INode) Entry {
	size := uint32(0)
	if n.IsFile() {
		content, err := s.Vol.ReadFileContent(n.Bno)
		if err == nil {
			size = uint32(len(content))
		}
	}
	return Entry{
		Name:         item.Name,
		IsDir:        n.IsDirectory(),
		Owner:        ownerName(s, n.UID),
		UID:          n.UID,
		Mode:         modeString(n.IsDirectory(), n.Flag),
		Size:         size,
		CreationTime: n.CreationTime,
		ModifiedTime: n.ModifiedTime,
	}
}

// Stat resolves path and returns its Entry (original_source has no
// direct equivalent; ls/cat/chmod each re-derive these fields inline,
// so this pulls that into one reusable operation).
func Stat(s *Session, path string) (Entry, error) {
	r, err := resolve(s, path)
	if err != nil {
		return Entry{}, err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return Entry{}, wrapDeviceErr("stat", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return Entry{}, wrapDeviceErr("stat", path, err)
	}
	if !canRead(s, n) {
		return Entry{}, permissionDenied("stat", path)
	}
	return toEntry(s, item, n), nil
}

// ListDir resolves path (or "." when empty) to a directory and returns
// an Entry per live entry, skipping "." and ".." (original_source: ls).
func ListDir(s *Session, path string) ([]Entry, error) {
	if path == "" {
		path = "."
	}
	r, err := resolve(s, path)
	if err != nil {
		return nil, err
	}
	dir, err := s.Vol.ReadDirectory(r.dirBlock)
	if err != nil {
		return nil, wrapDeviceErr("ls", path, err)
	}
	item := dir.Items[r.index]
	n, err := s.Vol.ReadInode(item.InodeIndex)
	if err != nil {
		return nil, wrapDeviceErr("ls", path, err)
	}
	if !n.IsDirectory() {
		return nil, notADirectory("ls", path)
	}
	if !canRead(s, n) {
		return nil, permissionDenied("ls", path)
	}
	target, err := s.Vol.ReadDirectory(n.Bno)
	if err != nil {
		return nil, wrapDeviceErr("ls", path, err)
	}
	var out []Entry
	for _, e := range target.Entries() {
		child, err := s.Vol.ReadInode(e.InodeIndex)
		if err != nil {
			return nil, wrapDeviceErr("ls", path, err)
		}
		out = append(out, toEntry(s, e, child))
	}
	return out, nil
}
