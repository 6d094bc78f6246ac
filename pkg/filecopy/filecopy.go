// Package filecopy copies media bytes into the managed library. Writes go
// through a temporary sibling file and a rename so a crashed copy never
// leaves a half-written item visible to the media index.
package filecopy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Singleton locks to ensure only one goroutine writes the same destination
var (
	fileOperationLocks = make(map[string]*sync.Mutex)
	locksMutex         = sync.RWMutex{}
)

func getFileLock(path string) *sync.Mutex {
	locksMutex.RLock()
	lock, ok := fileOperationLocks[path]
	locksMutex.RUnlock()
	if ok {
		return lock
	}

	locksMutex.Lock()
	defer locksMutex.Unlock()
	if lock, ok = fileOperationLocks[path]; ok {
		return lock
	}
	lock = &sync.Mutex{}
	fileOperationLocks[path] = lock
	return lock
}

// AtomicCopy copies src to dst, creating parent directories as needed. The
// destination appears atomically; on any error no partial file remains.
func AtomicCopy(src, dst string) error {
	lock := getFileLock(dst)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, dst, err)
	}

	return nil
}

// CopyFromReader is AtomicCopy for sources that are not files, such as
// multipart upload bodies.
func CopyFromReader(src io.Reader, dst string) error {
	lock := getFileLock(dst)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy into %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, dst, err)
	}

	return nil
}
