// Package usage reports the on-disk space consumed by a data directory.
package usage

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// DirBytes walks the tree rooted at path and returns the summed size of
// every regular file beneath it. The walk follows the directory structure
// only, not symlinks.
func DirBytes(path string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("usage probe %s: %w", path, err)
	}
	return total, nil
}
