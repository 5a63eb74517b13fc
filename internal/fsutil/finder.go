// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension collects all files ending with the given
// extension under the given roots. A root may be a single file or a
// directory searched recursively. Duplicates are dropped and the result
// is sorted so callers see a stable file order.
func FindFilesByExtension(extension string, roots ...string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", root, err)
		}
		if !info.IsDir() {
			if !strings.HasSuffix(root, extension) {
				return nil, fmt.Errorf("%s does not have the %s extension", root, extension)
			}
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
