// Package stopfile implements the emergency stop signal as a marker
// file the operator creates next to the process (e.g. `touch
// EMERGENCY_STOP`). Removing the file is not enough to resume: the
// controller treats the signal as terminal for the session.
package stopfile

import (
	"context"
	"os"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

// Signal checks for the existence of a marker file.
type Signal struct {
	path string
	log  logger.LoggerInterface
}

// New creates a Signal watching the given path.
func New(path string, log logger.LoggerInterface) *Signal {
	return &Signal{path: path, log: log}
}

// Active reports whether the marker file exists. Stat errors other than
// not-exist are logged and treated as active: when the signal cannot be
// read, trading must not continue.
func (s *Signal) Active(ctx context.Context) bool {
	_, err := os.Stat(s.path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}

	s.log.Error(ctx, "cannot stat emergency stop file, assuming active", "path", s.path, "error", err)
	return true
}
