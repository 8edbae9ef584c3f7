// Package store persists extracted replay lists.
//
// Each saved list is a ReplaySet: the coalesced requests plus metadata
// about the extraction that produced them. FileStore keeps one JSON file
// per product under a data directory; Store is the interface the
// orchestration layer programs against, so the storage encoding can change
// without touching extraction.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tprlog/tprlog/pkg/replay"
)

// Store errors.
var (
	ErrNotFound  = errors.New("replay set not found")
	ErrCorrupted = errors.New("replay set file corrupted")
)

// ReplaySet is a persisted replay list with extraction metadata.
type ReplaySet struct {
	// ID identifies this extraction run.
	ID string `json:"id"`

	// Product is the product code the set was extracted for.
	Product string `json:"product"`

	// Source names the log artifact the set came from.
	Source string `json:"source"`

	// LineCount is how many raw log lines the source held.
	LineCount int `json:"lineCount"`

	// RequestCount is len(Requests), kept for cheap listing.
	RequestCount int `json:"requestCount"`

	CreatedAt time.Time `json:"createdAt"`

	Requests []replay.Request `json:"requests"`
}

// NewReplaySet builds a set with a fresh run ID.
func NewReplaySet(product, source string, lineCount int, requests []replay.Request) *ReplaySet {
	return &ReplaySet{
		ID:           uuid.NewString(),
		Product:      product,
		Source:       source,
		LineCount:    lineCount,
		RequestCount: len(requests),
		CreatedAt:    time.Now().UTC(),
		Requests:     requests,
	}
}

// Validate checks internal consistency of a loaded set.
func (s *ReplaySet) Validate() error {
	if s.Product == "" {
		return fmt.Errorf("%w: empty product", ErrCorrupted)
	}
	if s.RequestCount != len(s.Requests) {
		return fmt.Errorf("%w: request count %d does not match %d requests",
			ErrCorrupted, s.RequestCount, len(s.Requests))
	}
	for i, r := range s.Requests {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: request %d: %v", ErrCorrupted, i, err)
		}
	}
	return nil
}

// Store is the replay-set cache interface.
type Store interface {
	// Load returns the set saved under key. ok is false when no set
	// exists; that is not an error.
	Load(key string) (set *ReplaySet, ok bool, err error)

	// Save persists the set under key, replacing any previous set.
	Save(key string, set *ReplaySet) error

	// List returns the keys of all saved sets, sorted.
	List() ([]string, error)
}

// FileStore is a Store keeping one JSON file per key in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

const filePrefix = "replay_"

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load implements Store.
func (s *FileStore) Load(key string) (*ReplaySet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filename(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read replay set %q: %w", key, err)
	}

	var set ReplaySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, false, fmt.Errorf("%w: %q: %v", ErrCorrupted, key, err)
	}
	if err := set.Validate(); err != nil {
		return nil, false, err
	}
	return &set, true, nil
}

// LoadSetFile reads a replay set from an arbitrary path, outside the data
// directory. Used when the newest located artifact is itself a cached set.
func LoadSetFile(path string) (*ReplaySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var set ReplaySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, path, err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Save implements Store.
func (s *FileStore) Save(key string, set *ReplaySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal replay set %q: %w", key, err)
	}
	if err := os.WriteFile(s.filename(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write replay set %q: %w", key, err)
	}
	return nil
}

// List implements Store.
func (s *FileStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json")
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) filename(key string) string {
	return filepath.Join(s.dir, filePrefix+key+".json")
}
