// Package store persists dependency graphs to disk as msgpack records,
// one file per saved graph, so baselines survive between runs and can be
// diffed against fresh extractions.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/docassemble-dag/internal/log"
	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

const recordExtension = ".dag"

// ErrGraphNotFound is returned when no stored graph matches the given id.
var ErrGraphNotFound = errors.New("stored graph not found")

// Record is the metadata of a stored graph.
type Record struct {
	ID        string    `msgpack:"id" json:"id"`
	Name      string    `msgpack:"name" json:"name"`
	Version   string    `msgpack:"version" json:"version"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at"`
	NodeCount int       `msgpack:"node_count" json:"node_count"`
	EdgeCount int       `msgpack:"edge_count" json:"edge_count"`
}

// record is the full on-disk structure.
type record struct {
	Record   Record         `msgpack:"record"`
	Metadata map[string]any `msgpack:"metadata,omitempty"`
	Snapshot types.Snapshot `msgpack:"snapshot"`
}

// Store is a directory-backed graph store.
type Store struct {
	dir string
}

// Open prepares a store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Save writes the graph under a fresh id and returns it. The id is
// derived from name, version, and save time, so repeated saves of the
// same graph produce distinct records.
func (s *Store) Save(g *graph.Graph, name, version string, metadata map[string]any) (string, error) {
	now := time.Now().UTC()
	id := recordID(name, version, now)

	rec := record{
		Record: Record{
			ID:        id,
			Name:      name,
			Version:   version,
			CreatedAt: now,
			NodeCount: g.Len(),
			EdgeCount: g.EdgeCount(),
		},
		Metadata: metadata,
		Snapshot: g.Snapshot(),
	}

	path := s.recordPath(id)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create record file: %w", err)
	}
	defer file.Close()

	if err := msgpack.NewEncoder(file).Encode(&rec); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to encode graph record: %w", err)
	}

	log.Default().Debug("saved graph", "id", id, "name", name, "nodes", g.Len(), "edges", g.EdgeCount())
	return id, nil
}

// Load reads a stored graph back by id.
func (s *Store) Load(id string) (*graph.Graph, Record, error) {
	rec, err := s.readRecord(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Record{}, fmt.Errorf("%w: %q", ErrGraphNotFound, id)
		}
		return nil, Record{}, err
	}

	g, err := graph.FromSnapshot(rec.Snapshot)
	if err != nil {
		return nil, Record{}, fmt.Errorf("stored graph %q is inconsistent: %w", id, err)
	}
	return g, rec.Record, nil
}

// List returns the metadata of every stored graph, newest first.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExtension) {
			continue
		}
		rec, err := s.readRecord(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			log.Default().Warn("skipping unreadable record", "file", entry.Name(), "error", err)
			continue
		}
		records = append(records, rec.Record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a stored graph.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.recordPath(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", ErrGraphNotFound, id)
	}
	return err
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+recordExtension)
}

func (s *Store) readRecord(path string) (record, error) {
	file, err := os.Open(path)
	if err != nil {
		return record{}, err
	}
	defer file.Close()

	var rec record
	if err := msgpack.NewDecoder(file).Decode(&rec); err != nil {
		return record{}, fmt.Errorf("failed to decode graph record: %w", err)
	}
	return rec, nil
}

func recordID(name, version string, at time.Time) string {
	sum := sha256.Sum256([]byte(name + "\x00" + version + "\x00" + at.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:8])
}
