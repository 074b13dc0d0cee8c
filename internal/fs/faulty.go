package fs

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by FaultyFS rules.
var ErrInjected = errors.New("injected fault")

// FaultyFS is a FileSystem wrapper that fails selected operations, used
// to exercise broadcast-load and staging failure paths in tests.
type FaultyFS struct {
	FS FileSystem

	mu        sync.Mutex
	failOpen  map[string]error // path substring -> error
	failWrite map[string]error
}

// NewFaultyFS creates a FaultyFS wrapping the provided FS (or Default if
// nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS:        fsys,
		failOpen:  make(map[string]error),
		failWrite: make(map[string]error),
	}
}

// FailOpen makes Open fail for any path containing pattern.
func (f *FaultyFS) FailOpen(pattern string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOpen[pattern] = err
}

// FailCreate makes Create fail for any path containing pattern.
func (f *FaultyFS) FailCreate(pattern string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite[pattern] = err
}

func (f *FaultyFS) match(rules map[string]error, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pattern, err := range rules {
		if strings.Contains(name, pattern) {
			return err
		}
	}
	return nil
}

func (f *FaultyFS) Open(name string) (io.ReadCloser, error) {
	if err := f.match(f.failOpen, name); err != nil {
		return nil, err
	}
	return f.FS.Open(name)
}

func (f *FaultyFS) Create(name string) (io.WriteCloser, error) {
	if err := f.match(f.failWrite, name); err != nil {
		return nil, err
	}
	return f.FS.Create(name)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) RemoveAll(path string) error { return f.FS.RemoveAll(path) }

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.FS.Stat(name) }

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	if err := f.match(f.failOpen, name); err != nil {
		return nil, err
	}
	return f.FS.ReadDir(name)
}
