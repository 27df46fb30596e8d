package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJanitorPrunesOldExports(t *testing.T) {
	dataDir := t.TempDir()
	exportsDir := filepath.Join(dataDir, "exports")
	if err := os.MkdirAll(exportsDir, 0755); err != nil {
		t.Fatal(err)
	}

	oldFile := filepath.Join(exportsDir, "stale.png")
	freshFile := filepath.Join(exportsDir, "fresh.png")
	for _, f := range []string{oldFile, freshFile} {
		if err := os.WriteFile(f, []byte("png"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	staleTime := time.Now().Add(-exportMaxAge - time.Hour)
	if err := os.Chtimes(oldFile, staleTime, staleTime); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(nil, dataDir)
	j.pruneExports()

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("stale export should have been removed")
	}
	if _, err := os.Stat(freshFile); err != nil {
		t.Error("fresh export should have been kept")
	}
}

func TestJanitorIgnoresMissingExportsDir(t *testing.T) {
	j := NewJanitor(nil, t.TempDir())
	j.pruneExports() // must not panic or create the directory
}
