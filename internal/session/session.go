// Package session drives one import through its explicit lifecycle:
//
//	Uploaded → Parsed → Mapping → Ready → Committing → Committed | Failed
//
// Failed returns to Ready on retry; cancelling before commit clears the
// staged batch and returns to Uploaded. The machine has no UI dependency.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tamadeu/divi-import/internal/commit"
	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/model"
	"github.com/tamadeu/divi-import/internal/staging"
)

// State names one stage of an import session.
type State string

const (
	StateUploaded   State = "uploaded"
	StateParsed     State = "parsed"
	StateMapping    State = "mapping"
	StateReady      State = "ready"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the session's current state.
	ErrInvalidTransition = errors.New("operation not allowed in current state")

	// ErrNoImport is returned when resuming and nothing is staged. The
	// caller should send the user back to the upload step.
	ErrNoImport = errors.New("no import in progress")
)

// Session is one import in flight. The staged batch is the only state that
// survives between invocations; the Session reconstructs everything else.
type Session struct {
	state   State
	batch   *model.ImportBatch
	staging *staging.Store
	dir     *directory.Directory
	log     zerolog.Logger
}

// New starts a fresh session at the upload step.
func New(stg *staging.Store, dir *directory.Directory, log zerolog.Logger) *Session {
	return &Session{state: StateUploaded, staging: stg, dir: dir, log: log}
}

// Resume rebuilds a session from the staged batch. Returns ErrNoImport when
// nothing is staged.
func Resume(stg *staging.Store, dir *directory.Directory, log zerolog.Logger) (*Session, error) {
	batch, ok, err := stg.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoImport
	}

	s := New(stg, dir, log)
	s.batch = batch
	s.state = StateParsed
	s.advance()
	return s, nil
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Batch returns the staged batch, or nil before one is staged.
func (s *Session) Batch() *model.ImportBatch {
	return s.batch
}

// Stage persists a freshly parsed batch, overwriting any previous one, and
// moves the session to Mapping or Ready.
func (s *Session) Stage(batch *model.ImportBatch) error {
	if s.state == StateCommitting {
		return ErrInvalidTransition
	}
	if err := s.staging.Save(batch); err != nil {
		return err
	}
	s.batch = batch
	s.state = StateParsed
	s.advance()
	return nil
}

// SetMapping binds one missing category to an existing category of the same
// kind and re-stages the batch. A (name, kind) pair not present in the batch
// is a no-op, not an error. Completing the last mapping moves the session
// to Ready.
func (s *Session) SetMapping(name string, kind model.Kind, categoryID string) error {
	switch s.state {
	case StateParsed, StateMapping, StateReady:
	default:
		return ErrInvalidTransition
	}

	cat, ok := s.dir.Category(categoryID)
	if !ok {
		return fmt.Errorf("unknown category %q", categoryID)
	}
	if cat.Kind != kind {
		return fmt.Errorf("category %q is %s, want %s", cat.Name, cat.Kind, kind)
	}

	m := s.batch.Missing(name, kind)
	if m == nil {
		return nil
	}
	m.MappedTo = categoryID

	if err := s.staging.Save(s.batch); err != nil {
		return err
	}
	s.advance()
	return nil
}

// Complete reports whether every missing category has been mapped.
func (s *Session) Complete() bool {
	return s.batch != nil && s.batch.FullyMapped()
}

// Commit runs the engine against the staged batch. Allowed from Ready, and
// from Failed as a retry. On engine failure the staged batch is preserved
// and the session lands in Failed.
func (s *Session) Commit(ctx context.Context, engine *commit.Engine) (*commit.Result, error) {
	if s.state != StateReady && s.state != StateFailed {
		return nil, ErrInvalidTransition
	}

	s.state = StateCommitting
	result, err := engine.Commit(ctx, s.batch)
	if err != nil {
		s.state = StateFailed
		return nil, err
	}
	s.state = StateCommitted
	return result, nil
}

// Cancel abandons the import: clears the staged batch and returns to the
// upload step. Not allowed mid-commit or after a successful commit.
func (s *Session) Cancel() error {
	if s.state == StateCommitting || s.state == StateCommitted {
		return ErrInvalidTransition
	}
	if err := s.staging.Clear(); err != nil {
		return err
	}
	s.batch = nil
	s.state = StateUploaded
	return nil
}

// advance settles Parsed/Mapping into Mapping or Ready depending on whether
// unmapped categories remain. A Failed session that becomes fully mapped
// again stays Failed until the commit is retried.
func (s *Session) advance() {
	if s.state != StateParsed && s.state != StateMapping && s.state != StateReady {
		return
	}
	if s.batch.FullyMapped() {
		s.state = StateReady
	} else {
		s.state = StateMapping
	}
}
