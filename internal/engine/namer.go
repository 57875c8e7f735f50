package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Outcome is the destination namer's decision for one source file.
type Outcome struct {
	Skip bool   // an entry with the same name and size already exists
	Path string // destination path to copy to when !Skip
}

// ResolveDest picks the destination path for a source file named name of
// the given size. An existing entry of equal size means the file was
// already copied; an existing entry of different size is stepped around by
// inserting " (2)", " (3)", ... before the extension.
func ResolveDest(destDir, name string, size int64) (Outcome, error) {
	stem, ext := splitExt(name)
	candidate := name
	for n := 2; ; n++ {
		path := filepath.Join(destDir, candidate)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{Path: path}, nil
		}
		if err != nil {
			return Outcome{}, fmt.Errorf("stat destination %s: %w", path, err)
		}
		if info.Size() == size {
			return Outcome{Skip: true, Path: path}, nil
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
}

// splitExt splits name into stem and final extension. A dot that leads or
// ends the name does not start an extension: ".bashrc" and "notes." have none.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}
