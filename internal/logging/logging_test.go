package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "playlog.log")

	logger, err := New(Options{Verbose: true, File: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Debug("session initialized")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "session initialized") {
		t.Fatalf("log file missing debug entry: %q", data)
	}
}

func TestNewInfoLevelByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlog.log")

	logger, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Fatalf("unexpected log content: %q", data)
	}
}
