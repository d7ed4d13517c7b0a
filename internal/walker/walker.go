// Package walker finds trajectory files under a directory tree.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Func handles one trajectory. base is the file name with the matched
// extension removed.
type Func func(path, base string) error

// Match returns the longest extension in exts that name ends with.
func Match(name string, exts []string) (string, bool) {
	best := ""
	for _, e := range exts {
		if strings.HasSuffix(name, e) && len(e) > len(best) {
			best = e
		}
	}
	return best, best != ""
}

// BaseName strips the directory and the matched trajectory extension.
func BaseName(path string, exts []string) string {
	name := filepath.Base(path)
	if e, ok := Match(name, exts); ok {
		return strings.TrimSuffix(name, e)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// isFile reports whether d is a regular file or a symlink to one. Dangling
// links are skipped.
func isFile(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Walk calls fn for every regular file, or symlink to one, under root whose
// name ends in one of exts, in lexical order. The first error stops the walk. It returns the
// number of files handled.
func Walk(ctx context.Context, root string, exts []string, fn Func) (int, error) {
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if _, ok := Match(d.Name(), exts); !ok {
			return nil
		}
		regular, err := isFile(path, d)
		if err != nil {
			return err
		}
		if !regular {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(path, BaseName(path, exts)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		n++
		return nil
	})
	return n, err
}
