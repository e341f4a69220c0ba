package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "panva.yaml")
	if err := os.WriteFile(file, []byte("trees: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !DirExists(dir) || DirExists(file) || DirExists(filepath.Join(dir, "missing")) {
		t.Error("DirExists mismatch")
	}
	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists mismatch")
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("PANVA_TEST_VALUE", "")
	if got := Getenv("PANVA_TEST_VALUE", "./data"); got != "./data" {
		t.Errorf("expected fallback, got %q", got)
	}
	t.Setenv("PANVA_TEST_VALUE", "/srv/panva")
	if got := Getenv("PANVA_TEST_VALUE", "./data"); got != "/srv/panva" {
		t.Errorf("expected env value, got %q", got)
	}
}
