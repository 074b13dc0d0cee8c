package kmr

import (
	"github.com/hupe1980/kmr/internal/fs"
)

type options struct {
	logger *Logger
	fsys   fs.FileSystem
}

// Option configures Pipeline construction.
type Option func(*options)

// WithLogger sets the pipeline logger. Nil restores the default.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NewLogger(nil)
		}
		o.logger = l
	}
}

// WithFileSystem sets the file system used for staging I/O. Tests use
// this to inject faults into broadcast and output paths.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fsys = fsys
	}
}
