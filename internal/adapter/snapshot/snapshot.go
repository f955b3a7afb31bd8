// Package snapshot contains the default [domain.Snapshotter] implementation:
// a JSON-lines file rewritten atomically on every save so the in-memory
// fallback store can survive restarts.
package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dolmen-go/contextio"

	"github.com/mergington/schooldb/domain"
	"github.com/mergington/schooldb/internal/adapter/data"
)

// tempSuffix marks the scratch file used during a crash-safe rewrite.
const tempSuffix = "~"

// Snapshot persists one collection to a single file, one JSON document per
// line, in traversal order.
type Snapshot struct {
	path     string
	fileMode os.FileMode
	dirMode  os.FileMode
}

// Option configures snapshot behavior through the functional options
// pattern.
type Option func(*Snapshot)

// WithFileMode sets the permissions of the snapshot file.
func WithFileMode(m os.FileMode) Option {
	return func(s *Snapshot) { s.fileMode = m }
}

// WithDirMode sets the permissions used when creating parent directories.
func WithDirMode(m os.FileMode) Option {
	return func(s *Snapshot) { s.dirMode = m }
}

// NewSnapshot returns a snapshot layer bound to the given file path.
func NewSnapshot(path string, options ...Option) *Snapshot {
	s := &Snapshot{
		path:     path,
		fileMode: 0o644,
		dirMode:  0o755,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Load implements [domain.Snapshotter]. A missing file is an empty snapshot.
func (s *Snapshot) Load(ctx context.Context) ([]domain.Document, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var res []domain.Document
	scanner := bufio.NewScanner(contextio.NewReader(ctx, f))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("parsing snapshot line %d: %w", len(res)+1, err)
		}
		doc, err := data.NewDocument(raw)
		if err != nil {
			return nil, err
		}
		res = append(res, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return res, nil
}

// Save implements [domain.Snapshotter]. The snapshot is written to a scratch
// file, flushed to disk and renamed over the previous one, so a crash leaves
// either the old or the new state, never a torn file.
func (s *Snapshot) Save(ctx context.Context, docs []domain.Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), s.dirMode); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	temp := s.path + tempSuffix
	f, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.fileMode)
	if err != nil {
		return fmt.Errorf("creating snapshot scratch file: %w", err)
	}

	w := bufio.NewWriter(contextio.NewWriter(ctx, f))
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			f.Close()
			return fmt.Errorf("serializing document %q: %w", doc.ID(), err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			f.Close()
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(temp, s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
