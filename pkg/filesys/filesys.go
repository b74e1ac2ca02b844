// Package filesys provides small file system helpers used by the data
// directory management code in internal/genlog.
package filesys

import (
	"errors"
	"os"
)

var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir creates a directory at the specified path with the given
// permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force && !os.IsNotExist(err) {
		if err == nil {
			return os.ErrExist
		}
		return err
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// DeleteFile removes the file at filePath. It returns an error if the
// file cannot be removed.
func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}
