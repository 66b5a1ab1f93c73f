package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupSuffix is appended to the previous generation of a rewritten file.
const BackupSuffix = ".backup"

// WriteFile moves an existing file at path to path+BackupSuffix, replacing an
// older backup, and then writes data to path. It is not an atomic swap: a
// crash in between leaves only the backup.
func WriteFile(path string, data []byte) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := os.Rename(path, path+BackupSuffix); err != nil {
			return fmt.Errorf("%w: backup %s: %v", ErrStorage, path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: stat %s: %v", ErrStorage, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, path, err)
	}
	return nil
}
