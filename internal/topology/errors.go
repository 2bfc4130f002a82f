package topology

import "errors"

// Domain errors for the topology package.
//
// Every operation returns exactly one of these kinds, wrapped with context
// suitable for direct display. Check with errors.Is():
//
//	if errors.Is(err, topology.ErrNotFound) {
//	    // handle missing entity
//	}
//
// All failures are deterministic given store state and input; retrying with
// the same arguments always fails the same way.
var (
	// ErrNotFound is returned when no entity of the given kind has the
	// given name.
	ErrNotFound = errors.New("topology: not found")

	// ErrDuplicateName is returned when a creation or rename would violate
	// a name-uniqueness invariant.
	ErrDuplicateName = errors.New("topology: duplicate name")

	// ErrAlreadyPaired is returned when an association or deletion
	// conflicts with an existing, different pairing.
	ErrAlreadyPaired = errors.New("topology: already paired")

	// ErrNotPaired is returned when an unpair or uninstall targets an
	// entity with no such pairing.
	ErrNotPaired = errors.New("topology: not paired")

	// ErrHasDependents is returned when a deletion is blocked by existing
	// child references.
	ErrHasDependents = errors.New("topology: has dependents")

	// ErrInvalidPin is returned when a PIN is not recognised for an unlock
	// or removal.
	ErrInvalidPin = errors.New("topology: invalid pin")

	// ErrInvalidValue is returned when a supplied value fails a domain
	// constraint (range ordering, PIN format, unknown enum value).
	ErrInvalidValue = errors.New("topology: invalid value")

	// ErrOutOfRange is returned when a target value lies outside an
	// entity's currently configured bounds.
	ErrOutOfRange = errors.New("topology: out of range")
)
