// Package audit persists a queryable history of committed topology
// changes in the audit_log table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hearthline/hearth-core/internal/topology"
)

// Entry is one recorded topology change.
type Entry struct {
	// ID is the change event's envelope identifier.
	ID string `json:"id"`

	// Action is what happened (created, updated, renamed, deleted,
	// paired, unpaired).
	Action string `json:"action"`

	// Kind and Name identify the affected entity at the time of the
	// change. For renames, Name is the new name.
	Kind string `json:"kind"`
	Name string `json:"name"`

	// EntityID is the entity's row identifier.
	EntityID int64 `json:"entity_id"`

	// Snapshot is the entity state after the change (before removal,
	// for deletions), as JSON.
	Snapshot json.RawMessage `json:"snapshot,omitempty"`

	// OccurredAt is when the operation ran.
	OccurredAt time.Time `json:"occurred_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	Action string // optional: filter by action
	Kind   string // optional: filter by entity kind
	Name   string // optional: filter by entity name
	Limit  int    // default 50, max 200
	Offset int    // pagination offset
}

// ListResult contains paginated history results.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Logger is the minimal logging surface the recorder needs.
type Logger interface {
	Error(msg string, args ...any)
}

// Recorder writes committed change events to the audit_log table and
// answers history queries over it.
//
// HandleCommit matches the topology.Store.OnCommit hook signature:
//
//	recorder := audit.NewRecorder(db, log)
//	store.OnCommit(recorder.HandleCommit)
type Recorder struct {
	db  *sql.DB
	log Logger
}

// NewRecorder creates a Recorder over an open database. log may be nil.
func NewRecorder(db *sql.DB, log Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

// writeTimeout bounds each history insert; the hook runs on the
// committing goroutine and must not stall it.
const writeTimeout = 5 * time.Second

// HandleCommit records every change event of a committed transaction.
// Recording is best-effort: failures are logged, never propagated.
func (r *Recorder) HandleCommit(events []topology.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	for _, event := range events {
		if err := r.record(ctx, event); err != nil && r.log != nil {
			r.log.Error("recording topology change failed",
				"action", event.Action,
				"kind", event.Kind,
				"name", event.Name,
				"error", err,
			)
		}
	}
}

// record inserts one change event.
func (r *Recorder) record(ctx context.Context, event topology.ChangeEvent) error {
	var snapshot any
	if event.Entity != nil {
		data, err := json.Marshal(event.Entity)
		if err != nil {
			return fmt.Errorf("marshalling entity snapshot: %w", err)
		}
		snapshot = string(data)
	}

	var entityID int64
	if event.Entity != nil {
		entityID = event.Entity.EntityID()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, action, kind, name, entity_id, snapshot, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Action), string(event.Kind), event.Name,
		entityID, snapshot,
		event.OccurredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// List returns history entries matching the filter, most recent first.
func (r *Recorder) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Name != "" {
		conditions = append(conditions, "name = ?")
		args = append(args, filter.Name)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE is assembled from fixed parameterised conditions; no user
	// input reaches the SQL string.
	countQuery := "SELECT COUNT(*) FROM audit_log " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := "SELECT id, action, kind, name, entity_id, snapshot, occurred_at FROM audit_log " +
		where + " ORDER BY occurred_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var snapshot sql.NullString
		var occurredAt string

		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Kind, &entry.Name,
			&entry.EntityID, &snapshot, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if snapshot.Valid && snapshot.String != "" {
			entry.Snapshot = json.RawMessage(snapshot.String)
		}

		t, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", occurredAt, err)
		}
		entry.OccurredAt = t

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
