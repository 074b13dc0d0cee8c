// Package fs abstracts the file system operations the pipeline performs
// on its staging directories, so tests can substitute failing behavior
// for worker setup and stage output paths.
package fs

import (
	"io"
	"os"
	"path/filepath"
	"sort"
)

// FileSystem is the surface the stage runner and controller use for all
// staging I/O.
type FileSystem interface {
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(path string) error
	Stat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) Open(name string) (io.ReadCloser, error)    { return os.Open(name) }
func (LocalFS) Create(name string) (io.WriteCloser, error) { return os.Create(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) RemoveAll(path string) error           { return os.RemoveAll(path) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// ListFiles returns the sorted paths of the regular files directly under
// dir, skipping subdirectories and hidden or underscore-prefixed entries
// (job markers like _SUCCESS).
func ListFiles(fsys FileSystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || Hidden(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Hidden reports whether a directory entry is skipped when a directory is
// read as stage input.
func Hidden(name string) bool {
	return len(name) == 0 || name[0] == '.' || name[0] == '_'
}

// CopyDir copies every visible file directly under src into dst,
// creating dst first. Nested directories are not descended into; stage
// outputs are flat.
func CopyDir(fsys FileSystem, src, dst string) error {
	if err := fsys.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	files, err := ListFiles(fsys, src)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := copyFile(fsys, f, filepath.Join(dst, filepath.Base(f))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fsys FileSystem, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
