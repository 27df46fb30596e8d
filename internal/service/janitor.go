package service

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"inkwell/internal/storage"
)

const (
	exportMaxAge = 7 * 24 * time.Hour
	orphanMaxAge = 24 * time.Hour
)

// Janitor sweeps the data directory on a schedule: temp exports past their
// keep window, and source images no stored analysis references anymore.
type Janitor struct {
	sched   *cron.Cron
	store   *storage.AnalysisStore
	dataDir string
}

func NewJanitor(store *storage.AnalysisStore, dataDir string) *Janitor {
	return &Janitor{store: store, dataDir: dataDir}
}

// Start schedules the daily sweep and runs one immediately in the
// background so a long-running session doesn't wait a day for its first
// cleanup.
func (j *Janitor) Start() {
	c := cron.New()
	if _, err := c.AddFunc("@daily", j.sweep); err != nil {
		log.Printf("janitor: schedule failed: %v", err)
		return
	}
	c.Start()
	j.sched = c
	go j.sweep()
}

func (j *Janitor) Stop() {
	if j.sched != nil {
		j.sched.Stop()
	}
}

func (j *Janitor) sweep() {
	j.pruneExports()
	j.pruneOrphanSources()
}

func (j *Janitor) pruneExports() {
	dir := filepath.Join(j.dataDir, "exports")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-exportMaxAge)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
				log.Printf("janitor: pruned export %s", e.Name())
			}
		}
	}
}

func (j *Janitor) pruneOrphanSources() {
	analyses, err := j.store.ListAnalyses()
	if err != nil {
		log.Printf("janitor: list analyses: %v", err)
		return
	}
	referenced := make(map[string]bool, len(analyses))
	for _, a := range analyses {
		referenced[filepath.Clean(a.ImagePath)] = true
	}

	dir := filepath.Join(j.dataDir, "sources")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-orphanMaxAge)
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if referenced[filepath.Clean(path)] {
			continue
		}
		info, err := e.Info()
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			log.Printf("janitor: pruned orphan source %s", e.Name())
		}
	}
}
