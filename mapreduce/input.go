package mapreduce

import (
	"bufio"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/kmr/internal/fs"
)

// readInput reads every record line from path, which may be a single
// file or a directory of part files. Compressed inputs are recognized by
// extension, the way Hadoop's text input format does.
func readInput(fsys fs.FileSystem, path string) ([]string, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = fs.ListFiles(fsys, path); err != nil {
			return nil, err
		}
	}

	var lines []string
	for _, f := range files {
		if lines, err = appendLines(fsys, f, lines); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func appendLines(fsys fs.FileSystem, name string, lines []string) ([]string, error) {
	rc, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, closeCodec, err := decompress(rc, name)
	if err != nil {
		return nil, err
	}
	if closeCodec != nil {
		defer closeCodec()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// decompress wraps r according to the file extension. Plain files pass
// through untouched.
func decompress(r io.Reader, name string) (io.Reader, func() error, error) {
	switch filepath.Ext(name) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".lz4":
		return lz4.NewReader(r), nil, nil
	default:
		return r, nil, nil
	}
}
