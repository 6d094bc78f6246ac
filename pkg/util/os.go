package util

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// DefaultWorkDir returns the directory for locally owned state (gallery.db,
// thumbnail cache, config).
func DefaultWorkDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.ExpandEnv("${USERPROFILE}"), "Documents", "thegallery")
	case "darwin":
		return filepath.Join(os.ExpandEnv("${HOME}"), "Documents", "thegallery")
	default:
		return filepath.Join(os.ExpandEnv("${HOME}"), ".thegallery")
	}
}

// DefaultMediaDir returns the OS picture library, the default media index
// root when none is configured.
func DefaultMediaDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.ExpandEnv("${USERPROFILE}"), "Pictures")
	default:
		return filepath.Join(os.ExpandEnv("${HOME}"), "Pictures")
	}
}

// PrepareDir ensures that the specified directory path exists.
// If the directory does not exist, it attempts to create it.
func PrepareDir(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		} else {
			return err
		}
	} else if !stat.IsDir() {
		log.Debug().Msgf("%s is not a directory", path)
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// SizeHumanReadable formats a byte count for logs and listings.
func SizeHumanReadable(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(b)/float64(div), "kMGTPE"[exp])
}
