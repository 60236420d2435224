package browser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveChromiumPrefersConfiguredBinary(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("failed to write fake binary: %v", err)
	}
	if got := resolveChromium(bin); got != bin {
		t.Fatalf("expected configured binary %s, got %s", bin, got)
	}
	if got := resolveChromium(filepath.Join(t.TempDir(), "missing")); got == bin {
		t.Fatalf("missing configured binary must not be returned")
	}
}

func TestFileExistsRejectsDirectories(t *testing.T) {
	if fileExists(t.TempDir()) {
		t.Fatalf("directory reported as a file")
	}
}
