package trajectory

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileSink appends each finished Trajectory as one newline-delimited JSON
// record to a file, so a long-running process never has to rewrite the
// whole file per flush.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink builds a FileSink for path. The file is not touched here;
// each Write opens it for appending, creating it if necessary.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (f *FileSink) Write(t Trajectory) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("trajectory: open sink file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	return enc.Encode(t)
}

// MemorySink accumulates trajectories in memory, useful for tests and for
// short-lived processes that export trajectories at shutdown rather than
// streaming them.
type MemorySink struct {
	mu           sync.Mutex
	trajectories []Trajectory
}

// NewMemorySink builds an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (m *MemorySink) Write(t Trajectory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trajectories = append(m.trajectories, t)
	return nil
}

// All returns every trajectory written so far.
func (m *MemorySink) All() []Trajectory {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Trajectory, len(m.trajectories))
	copy(out, m.trajectories)
	return out
}
