// Package permission models the platform read-media capability as an
// injectable collaborator. The repository queries it on demand and never
// caches the answer: the state only moves when an external grant happens.
package permission

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
)

// State is the four-way permission state of the media library.
type State string

const (
	Granted           State = "granted"
	Denied            State = "denied"
	PermanentlyDenied State = "permanently_denied"
	Unknown           State = "unknown"
)

// Checker reports the current read capability over the media library.
type Checker interface {
	State() State
}

// FSChecker derives the permission state from filesystem access to the media
// root. A missing root is Denied (the library may be created later); an
// explicit access error is PermanentlyDenied (only an operator can fix it);
// anything else unexpected is Unknown.
type FSChecker struct {
	Root string
}

func NewFSChecker(root string) *FSChecker {
	return &FSChecker{Root: root}
}

func (c *FSChecker) State() State {
	if c.Root == "" {
		return Unknown
	}

	f, err := os.Open(c.Root)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return Denied
		case errors.Is(err, fs.ErrPermission):
			return PermanentlyDenied
		default:
			log.Debug().Err(err).Str("root", c.Root).Msg("unexpected media root access error")
			return Unknown
		}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.IsDir() {
		return Denied
	}

	return Granted
}

// StaticChecker always reports a fixed state. Used in tests and for the
// permission scenarios the filesystem cannot simulate.
type StaticChecker struct {
	Fixed State
}

func (c *StaticChecker) State() State {
	return c.Fixed
}
