package topology

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Store provides access to transactions over the topology schema.
//
// The store assumes one logical transaction in flight at a time; Begin
// blocks until the previous transaction finishes. Commit hooks registered
// with OnCommit receive the change events of each committed transaction, in
// operation order.
type Store struct {
	db *sql.DB

	// txMu serializes transactions so uncommitted effects never interleave.
	txMu sync.Mutex

	// hookMu guards onCommit registration against concurrent reads.
	hookMu   sync.RWMutex
	onCommit []func([]ChangeEvent)
}

// NewStore creates a Store over an open database connection. The schema
// must already be migrated (see infrastructure/database.Migrate).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// OnCommit registers a hook invoked after every successful commit with the
// transaction's change events. Hooks run synchronously on the committing
// goroutine; long-running work should be handed off.
func (s *Store) OnCommit(fn func([]ChangeEvent)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

// Begin opens a new transaction. The caller must finish it with Commit or
// Rollback; until then all other Begin calls block.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	s.txMu.Lock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.txMu.Unlock()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &Tx{store: s, tx: sqlTx}, nil
}

// WithTx runs fn inside a transaction, committing if fn returns nil and
// rolling back otherwise. The returned error is fn's error, or the commit
// error if the commit itself fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// notifyCommit delivers events to registered hooks.
func (s *Store) notifyCommit(events []ChangeEvent) {
	if len(events) == 0 {
		return
	}

	s.hookMu.RLock()
	hooks := s.onCommit
	s.hookMu.RUnlock()

	for _, hook := range hooks {
		hook(events)
	}
}
