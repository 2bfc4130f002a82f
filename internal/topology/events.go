package topology

import (
	"time"

	"github.com/google/uuid"
)

// Action classifies what a committed change did to an entity.
type Action string

// Change actions.
const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionRenamed  Action = "renamed"
	ActionDeleted  Action = "deleted"
	ActionPaired   Action = "paired"
	ActionUnpaired Action = "unpaired"
)

// ChangeEvent describes one entity change within a committed transaction.
// Events are delivered to Store.OnCommit subscribers only after the
// transaction commits; rolled-back transactions produce no events.
type ChangeEvent struct {
	// ID is a unique envelope identifier for the event.
	ID string `json:"id"`

	// Kind and Name identify the affected entity. For renames, Name is the
	// new name.
	Kind Kind   `json:"kind"`
	Name string `json:"name"`

	// Action is what happened.
	Action Action `json:"action"`

	// Entity is a snapshot of the entity after the change. For deletions it
	// is the snapshot taken just before removal.
	Entity Entity `json:"entity,omitempty"`

	// OccurredAt is when the operation ran (not when the commit landed).
	OccurredAt time.Time `json:"occurred_at"`
}

// newChangeEvent builds an event for an entity snapshot.
func newChangeEvent(action Action, entity Entity) ChangeEvent {
	return ChangeEvent{
		ID:         uuid.NewString(),
		Kind:       entity.EntityKind(),
		Name:       entity.EntityName(),
		Action:     action,
		Entity:     entity,
		OccurredAt: time.Now().UTC(),
	}
}
