// Package hostsync copies a directory tree between the host filesystem
// and a mounted Volume, in both directions. It follows the same
// recursive walk-and-copy shape as the teacher's sync package
// (CopyFileSystem/copyDir/copyOneFile), adapted to copy against a
// pathfs.Session instead of an fs.FS/filesystem.FileSystem pair.
package hostsync

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"gopkg.in/djherbis/times.v1"

	"github.com/blockvol/blockvol/pathfs"
	"github.com/blockvol/blockvol/volume"
)

// excludedNames mirrors the teacher's sync.excludedPaths: host-specific
// bookkeeping files that never belong inside the volume.
var excludedNames = map[string]bool{
	".DS_Store":                 true,
	"lost+found":                true,
	"System Volume Information": true,
}

// Import walks hostDir and recreates its structure and file contents
// under destPath inside the session's volume. destPath must already
// name an existing, writable directory (original_source has no import
// command at all; this and Export are SPEC_FULL.md's supplemented
// host-interop feature).
func Import(s *pathfs.Session, hostDir, destPath string) error {
	return filepath.WalkDir(hostDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if excludedNames[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(hostDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		vfsPath := path.Join(destPath, filepath.ToSlash(rel))

		if d.IsDir() {
			if err := pathfs.Mkdir(s, vfsPath); err != nil && volume.KindOf(err) != volume.KindExists {
				return fmt.Errorf("hostsync: create dir %s: %w", vfsPath, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("hostsync: read %s: %w", p, err)
		}
		created := birthTime(p)
		if err := pathfs.WriteFile(s, vfsPath, content, created); err != nil {
			return fmt.Errorf("hostsync: write %s: %w", vfsPath, err)
		}
		return nil
	})
}

// birthTime returns p's host birth time when the platform reports one,
// or the zero Time otherwise — pathfs.WriteFile treats a zero Time as
// "use now", matching the teacher's own "creation time fallback if not
// available" comment in sync/copy.go's copyOneFile.
func birthTime(p string) time.Time {
	t, err := times.Stat(p)
	if err != nil || !t.HasBirthTime() {
		return time.Time{}
	}
	return t.BirthTime()
}

// Export walks srcPath inside the session's volume and recreates its
// structure and file contents under hostDir on the host filesystem.
func Export(s *pathfs.Session, srcPath, hostDir string) error {
	entry, err := pathfs.Stat(s, srcPath)
	if err != nil {
		return err
	}
	if !entry.IsDir {
		return exportFile(s, srcPath, hostDir, entry)
	}
	if err := os.MkdirAll(hostDir, 0o755); err != nil {
		return fmt.Errorf("hostsync: mkdir %s: %w", hostDir, err)
	}
	return exportDir(s, srcPath, hostDir)
}

func exportDir(s *pathfs.Session, vfsPath, hostDir string) error {
	entries, err := pathfs.ListDir(s, vfsPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		childVFS := path.Join(vfsPath, e.Name)
		childHost := filepath.Join(hostDir, e.Name)
		if e.IsDir {
			if err := os.MkdirAll(childHost, 0o755); err != nil {
				return fmt.Errorf("hostsync: mkdir %s: %w", childHost, err)
			}
			if err := exportDir(s, childVFS, childHost); err != nil {
				return err
			}
			continue
		}
		if err := exportFile(s, childVFS, childHost, e); err != nil {
			return err
		}
	}
	return nil
}

func exportFile(s *pathfs.Session, vfsPath, hostPath string, entry pathfs.Entry) error {
	content, err := pathfs.ReadFile(s, vfsPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(hostPath, content, 0o644); err != nil {
		return fmt.Errorf("hostsync: write %s: %w", hostPath, err)
	}
	// Restore timestamps after data is written, same ordering the
	// teacher's copyOneFile uses. The host filesystem has no portable
	// way to set a birth time, so only mtime/atime survive the round
	// trip; atime falls back to mtime exactly as copyOneFile does.
	if err := os.Chtimes(hostPath, entry.ModifiedTime, entry.ModifiedTime); err != nil {
		return nil
	}
	return nil
}
