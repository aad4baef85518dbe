package app

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	appName    = "logspectre"
	markerName = "first_run_completed"
)

// IsFirstRun reports whether this is the first invocation on this machine.
// The first call drops a marker file under the user config directory so
// later calls return false. Filesystem errors count as a repeat run.
func IsFirstRun() bool {
	dir, err := os.UserConfigDir()
	if err != nil {
		slog.Debug("cannot resolve user config directory", "error", err)
		return false
	}
	return firstRunAt(filepath.Join(dir, appName))
}

func firstRunAt(dir string) bool {
	marker := filepath.Join(dir, markerName)

	if _, err := os.Stat(marker); err == nil {
		return false
	} else if !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("cannot read first-run marker", "path", marker, "error", err)
		return false
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("cannot record first run", "path", marker, "error", err)
		return false
	}
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		slog.Warn("cannot record first run", "path", marker, "error", err)
		return false
	}
	return true
}
