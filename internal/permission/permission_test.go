package permission

import (
	"path/filepath"
	"testing"
)

func TestFSCheckerGranted(t *testing.T) {
	c := NewFSChecker(t.TempDir())
	if got := c.State(); got != Granted {
		t.Errorf("State() = %v, want %v", got, Granted)
	}
}

func TestFSCheckerMissingRoot(t *testing.T) {
	c := NewFSChecker(filepath.Join(t.TempDir(), "does-not-exist"))
	if got := c.State(); got != Denied {
		t.Errorf("State() = %v, want %v", got, Denied)
	}
}

func TestFSCheckerEmptyRoot(t *testing.T) {
	c := NewFSChecker("")
	if got := c.State(); got != Unknown {
		t.Errorf("State() = %v, want %v", got, Unknown)
	}
}

func TestStaticCheckerNeverTransitions(t *testing.T) {
	c := &StaticChecker{Fixed: PermanentlyDenied}
	for i := 0; i < 3; i++ {
		if got := c.State(); got != PermanentlyDenied {
			t.Errorf("State() = %v, want %v", got, PermanentlyDenied)
		}
	}
}
