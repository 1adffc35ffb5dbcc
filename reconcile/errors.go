package reconcile

import "errors"

// Sentinel errors for reconciliation operations.
var (
	// ErrNoUser is returned when an operation requires a user identifier
	// and none is set.
	ErrNoUser = errors.New("reconcile: no user identifier set")

	// ErrNoMutator is returned when a mutation is issued without a
	// configured Mutator.
	ErrNoMutator = errors.New("reconcile: no mutator configured")

	// ErrNoRecordSource is returned when a fetch is issued without a
	// configured RecordSource.
	ErrNoRecordSource = errors.New("reconcile: no record source configured")

	// ErrNoSubject is returned when a session credential carries no
	// extractable subject to derive the user identifier from.
	ErrNoSubject = errors.New("reconcile: credential carries no subject")
)
