package topology

import (
	"database/sql"
	"fmt"
)

// Tx is a single atomic unit of topology operations. Either every
// operation's effect commits, or none do.
//
// A Tx is not safe for concurrent use; the store serializes transactions,
// and operations within one transaction are expected to run sequentially.
type Tx struct {
	store *Store
	tx    *sql.Tx

	// events accumulates changes for commit hooks.
	events []ChangeEvent

	// finished is set once Commit or Rollback has run.
	finished bool
}

// Commit makes the transaction's effects durable and delivers its change
// events to the store's commit hooks.
func (t *Tx) Commit() error {
	if t.finished {
		return fmt.Errorf("topology: transaction already finished")
	}
	t.finished = true
	defer t.store.txMu.Unlock()

	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	t.store.notifyCommit(t.events)
	return nil
}

// Rollback discards every effect of the transaction. It is safe to defer
// after Commit; the second call is a no-op.
func (t *Tx) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	defer t.store.txMu.Unlock()

	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// record appends a change event for delivery on commit.
func (t *Tx) record(action Action, entity Entity) {
	t.events = append(t.events, newChangeEvent(action, entity))
}
