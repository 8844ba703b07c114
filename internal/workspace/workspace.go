// Package workspace manages the set of intermediate file paths owned by a
// single pipeline run.
//
// Each run gets a unique ID so concurrent runs sharing the same temp root
// never collide. Every allocated path is removed by Destroy, which pipelines
// must defer so teardown happens on success and failure alike.
package workspace

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Workspace is a job-scoped set of named temporary file slots.
// It is owned exclusively by one pipeline run.
type Workspace struct {
	root  string
	runID string

	mu    sync.Mutex
	paths []string
}

// New creates a workspace rooted at tempRoot with a fresh run ID.
func New(tempRoot string) *Workspace {
	return &Workspace{
		root:  tempRoot,
		runID: uuid.NewString(),
	}
}

// RunID returns the unique identifier for this run.
func (w *Workspace) RunID() string {
	return w.runID
}

// Allocate registers a named slot and returns its path. The file is not
// created; stages write to the returned path. Allocating the same slot twice
// returns the same path.
func (w *Workspace) Allocate(slot string) string {
	path := filepath.Join(w.root, w.runID+"_"+slot)

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.paths {
		if p == path {
			return path
		}
	}
	w.paths = append(w.paths, path)
	return path
}

// Destroy removes every allocated path that exists on disk. Missing files are
// not errors. Destroy is idempotent and safe to defer alongside explicit calls.
func (w *Workspace) Destroy() {
	w.mu.Lock()
	paths := w.paths
	w.paths = nil
	w.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove workspace file")
		}
	}

	if len(paths) > 0 {
		log.Debug().Str("run_id", w.runID).Int("slots", len(paths)).Msg("Workspace destroyed")
	}
}
