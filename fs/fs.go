// Package fs persists crawl artifacts and combined documents on the local
// filesystem.
package fs

import (
	"os"
	"path/filepath"
)

// File and directory permissions for written output.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// writeFileAtomic writes data to a temporary file in the destination's
// directory and renames it over path, so readers never observe a partial
// file. The temporary file is removed on failure.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
