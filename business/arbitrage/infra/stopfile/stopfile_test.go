package stopfile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

func TestSignal_Active(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "EMERGENCY_STOP")
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	s := New(path, log)

	if s.Active(context.Background()) {
		t.Error("Active = true with no marker file, want false")
	}

	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("creating marker file: %v", err)
	}
	if !s.Active(context.Background()) {
		t.Error("Active = false with marker file present, want true")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing marker file: %v", err)
	}
	if s.Active(context.Background()) {
		t.Error("Active = true after marker removed, want false")
	}
}
