// fsutil/directory.go
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDir creates a directory if it doesn't exist
func CreateDir(path string, perm os.FileMode) error {
	if DirExists(path) {
		return nil // Directory already exists
	}
	return os.MkdirAll(path, perm)
}

// CreateDirIfNotExists creates a directory with standard permissions if it doesn't exist
func CreateDirIfNotExists(path string) error {
	return CreateDir(path, 0755)
}

// DeleteDirRecursive removes a directory and all its contents
func DeleteDirRecursive(path string) error {
	if !DirExists(path) {
		return nil // Directory doesn't exist, nothing to do
	}
	return os.RemoveAll(path)
}

// CreateTempDirIn creates a temporary directory with a prefix in a specific directory
func CreateTempDirIn(dir, prefix string) (string, error) {
	if err := CreateDirIfNotExists(dir); err != nil {
		return "", err
	}

	return os.MkdirTemp(dir, prefix)
}

// ListFilesRecursive returns every regular file under root as a slash-separated
// path relative to root, sorted lexically.
func ListFilesRecursive(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
