// Package production provides production integrations: persistence, event publishing,
// metrics and visualization. Implements the core interfaces.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/lsystemx/internal/core"
)

// fileStore holds one snapshot file per run ID.
type fileStore struct {
	dir       string
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func newFileStore(dir, ext string, marshal func(any) ([]byte, error), unmarshal func([]byte, any) error) (fileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fileStore{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return fileStore{dir: dir, ext: ext, marshal: marshal, unmarshal: unmarshal}, nil
}

func (s fileStore) path(runID string) (string, error) {
	if runID == "" || runID != filepath.Base(runID) || runID == "." || runID == ".." {
		return "", fmt.Errorf("invalid run ID %q", runID)
	}
	return filepath.Join(s.dir, runID+s.ext), nil
}

func (s fileStore) save(ctx context.Context, snapshot core.GenerationSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn, err := s.path(snapshot.RunID)
	if err != nil {
		return err
	}
	data, err := s.marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", s.ext[1:], err)
	}
	// Write then rename so a reader never sees a partial snapshot.
	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fn); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s fileStore) load(ctx context.Context, runID string) (core.GenerationSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.GenerationSnapshot{}, err
	}
	fn, err := s.path(runID)
	if err != nil {
		return core.GenerationSnapshot{}, err
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.GenerationSnapshot{}, fmt.Errorf("run %q: %w", runID, core.ErrSnapshotNotFound)
		}
		return core.GenerationSnapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var snapshot core.GenerationSnapshot
	if err := s.unmarshal(data, &snapshot); err != nil {
		return core.GenerationSnapshot{}, fmt.Errorf("%s unmarshal: %w", s.ext[1:], err)
	}
	snapshot.RunID = runID // Ensure ID
	return snapshot, nil
}

// JSONPersister is a file-based persister using JSON serialization.
type JSONPersister struct {
	store fileStore
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	store, err := newFileStore(dir, ".json", func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}, json.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &JSONPersister{store: store}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot core.GenerationSnapshot) error {
	return p.store.save(ctx, snapshot)
}

func (p *JSONPersister) Load(ctx context.Context, runID string) (core.GenerationSnapshot, error) {
	return p.store.load(ctx, runID)
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	store fileStore
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	store, err := newFileStore(dir, ".yaml", yaml.Marshal, yaml.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &YAMLPersister{store: store}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot core.GenerationSnapshot) error {
	return p.store.save(ctx, snapshot)
}

func (p *YAMLPersister) Load(ctx context.Context, runID string) (core.GenerationSnapshot, error) {
	return p.store.load(ctx, runID)
}

// NewPersister picks JSON or YAML by format name ("json", "yaml" or "yml").
func NewPersister(format, dir string) (core.Persister, error) {
	switch format {
	case "json":
		return NewJSONPersister(dir)
	case "yaml", "yml", "":
		return NewYAMLPersister(dir)
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}
