// Package ledger persists per-trip job results in a Pebble store so failed
// trips can be listed after the run, and re-run later.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

// Record is the persisted outcome of one trip. The key is the output path,
// so a later run of the same trip replaces the earlier record.
type Record struct {
	RunID           uuid.UUID `json:"run_id"`
	OutputPath      string    `json:"output_path"`
	Inputs          []string  `json:"inputs"`
	ExitCode        int       `json:"exit_code"`
	IntegrityPassed bool      `json:"integrity_passed"`
	Skipped         bool      `json:"skipped"`
	Error           string    `json:"error,omitempty"`
	Finished        time.Time `json:"finished"`
}

// Failed reports whether the record belongs in the failure report.
func (r Record) Failed() bool {
	return !r.Skipped && (r.Error != "" || r.ExitCode != 0 || !r.IntegrityPassed)
}

const keyPrefix = "job/"

// Store is an open ledger.
type Store struct {
	db *pebble.DB
}

// Open opens or creates the ledger at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the ledger.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores r under its output path.
func (s *Store) Put(r Record) error {
	if r.OutputPath == "" {
		return errors.New("ledger: record has no output path")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger record: %w", err)
	}
	return s.db.Set([]byte(keyPrefix+r.OutputPath), data, pebble.Sync)
}

// Get returns the record for outputPath, or nil when none exists.
func (s *Store) Get(outputPath string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(keyPrefix + outputPath))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}
	defer closer.Close()

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger record: %w", err)
	}
	return &r, nil
}

// Delete removes the record for outputPath.
func (s *Store) Delete(outputPath string) error {
	return s.db.Delete([]byte(keyPrefix+outputPath), pebble.Sync)
}

// List returns every record in output-path order.
func (s *Store) List() ([]Record, error) {
	return s.scan(func(Record) bool { return true })
}

// Failures returns the records that failed, in output-path order.
func (s *Store) Failures() ([]Record, error) {
	return s.scan(Record.Failed)
}

func (s *Store) scan(keep func(Record) bool) ([]Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte("job0"), // '0' follows '/'.
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var out []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var r Record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			continue // Skip invalid records
		}
		if keep(r) {
			out = append(out, r)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return out, nil
}
