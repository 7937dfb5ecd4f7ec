// Package store persists and loads Baseline artifacts as JSON files,
// using github.com/natefinch/atomic for torn-write-proof writes. Grounded
// on vvoland-cagent's pkg/userconfig.Save (atomic.WriteFile(path,
// bytes.NewReader(data))), adopted here in place of the teacher's own
// plain os.WriteFile persistence for this spec's baseline/recording
// artifacts.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/scenario"
)

// Store persists Baseline artifacts under a root directory, one JSON file
// per scenario ID.
type Store struct {
	root string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating root %s: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) path(scenarioID string) string {
	return filepath.Join(s.root, scenarioID+".baseline.json")
}

// Save atomically writes b to disk, replacing any prior baseline for the
// same scenario ID.
func (s *Store) Save(b scenario.Baseline) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshalling baseline %s: %w", b.ScenarioID, err)
	}
	if err := atomic.WriteFile(s.path(b.ScenarioID), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store: writing baseline %s: %w", b.ScenarioID, err)
	}
	return nil
}

// Load reads the baseline previously saved for scenarioID.
func (s *Store) Load(scenarioID string) (scenario.Baseline, error) {
	data, err := os.ReadFile(s.path(scenarioID))
	if err != nil {
		return scenario.Baseline{}, fmt.Errorf("store: reading baseline %s: %w", scenarioID, err)
	}
	var b scenario.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return scenario.Baseline{}, fmt.Errorf("store: unmarshalling baseline %s: %w", scenarioID, err)
	}
	return b, nil
}

// Exists reports whether a baseline has been saved for scenarioID.
func (s *Store) Exists(scenarioID string) bool {
	_, err := os.Stat(s.path(scenarioID))
	return err == nil
}

// Delete removes the persisted baseline for scenarioID, if any.
func (s *Store) Delete(scenarioID string) error {
	err := os.Remove(s.path(scenarioID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: deleting baseline %s: %w", scenarioID, err)
	}
	return nil
}
