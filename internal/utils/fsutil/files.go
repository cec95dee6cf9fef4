// fsutil/files.go
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFile writes data to a file, creating its directory if necessary
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := CreateDirIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}

	mu := GetPathMutex(path)
	mu.Lock()
	defer mu.Unlock()

	return os.WriteFile(path, data, perm)
}

// SanitizeFilename replaces characters that are not valid in file names on
// common platforms. An empty result becomes "_".
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20:
			return -1
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, " .")
	if name == "" || name == ".." {
		return "_"
	}
	return name
}

// UniquePath returns a path in dir for name that does not exist yet,
// appending " (n)" before the extension when needed.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Lstat(candidate); os.IsNotExist(err) {
		return candidate
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
