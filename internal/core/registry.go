// Package core defines the integration points the engine reports generations to.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

// CommandRunner invokes the procedure bound to a module during Execute.
type CommandRunner interface {
	Run(ctx context.Context, m primitives.Module) error
}

// Persister stores the latest generation of a run.
type Persister interface {
	Save(ctx context.Context, snapshot GenerationSnapshot) error
	Load(ctx context.Context, runID string) (GenerationSnapshot, error)
}

// Publisher receives one event per rewrite pass.
type Publisher interface {
	Publish(ctx context.Context, event GenerationEvent) error
	Close() error
}

// PostProcessor is called after each generation is built.
type PostProcessor func(generation int, s *sequence.Sequence)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotMismatch = errors.New("snapshot does not belong to this grammar")
)

// GenerationSnapshot is the serializable state of a run after a generation.
type GenerationSnapshot struct {
	RunID      string    `json:"runID" yaml:"runID"`
	GrammarID  string    `json:"grammarID,omitempty" yaml:"grammarID,omitempty"`
	Generation int       `json:"generation" yaml:"generation"`
	Sequence   string    `json:"sequence" yaml:"sequence"`
	Stable     bool      `json:"stable" yaml:"stable"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// GenerationEvent describes one rewrite pass.
type GenerationEvent struct {
	RunID      string        `json:"runID" yaml:"runID"`
	GrammarID  string        `json:"grammarID,omitempty" yaml:"grammarID,omitempty"`
	Generation int           `json:"generation" yaml:"generation"`
	Length     int           `json:"length" yaml:"length"`
	Fired      int           `json:"fired" yaml:"fired"`
	Stable     bool          `json:"stable" yaml:"stable"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Timestamp  time.Time     `json:"timestamp" yaml:"timestamp"`
}
