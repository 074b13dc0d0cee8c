package mapreduce

import (
	"bufio"
	"fmt"

	"github.com/hupe1980/kmr/internal/fs"
)

// Broadcast is a small read-only dataset delivered to every map task
// once, before any record is processed.
type Broadcast struct {
	lines []string
}

// NewBroadcast builds a broadcast from in-memory records. Stage tests
// use it to drive mappers without a staged directory.
func NewBroadcast(lines []string) *Broadcast {
	return &Broadcast{lines: lines}
}

// Lines returns the broadcast records in file order.
func (b *Broadcast) Lines() []string { return b.lines }

// Len returns the number of broadcast records.
func (b *Broadcast) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

func loadBroadcast(fsys fs.FileSystem, dir string) (*Broadcast, error) {
	files, err := fs.ListFiles(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBroadcastLoad, dir, err)
	}

	bc := &Broadcast{}
	for _, f := range files {
		rc, err := fsys.Open(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBroadcastLoad, f, err)
		}
		sc := bufio.NewScanner(rc)
		for sc.Scan() {
			if line := sc.Text(); line != "" {
				bc.lines = append(bc.lines, line)
			}
		}
		err = sc.Err()
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBroadcastLoad, f, err)
		}
	}
	return bc, nil
}
