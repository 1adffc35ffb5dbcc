package reconcile

import (
	"context"

	"github.com/jonwraymond/histsync/credential"
	"github.com/jonwraymond/histsync/store"
)

// RecordSource fetches the latest known record sequence for a user.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines.
// - Errors: a fetch error leaves the cache untouched; the manager
//   surfaces it and falls back to cached data.
type RecordSource interface {
	FetchRecords(ctx context.Context, userID string, cred credential.Token) ([]store.Record, error)
}

// TotalSource fetches the global aggregate total. The total is
// independent of any particular user.
type TotalSource interface {
	FetchTotal(ctx context.Context, cred credential.Token) (float64, error)
}

// Mutator issues remote create/update/delete operations. Create and
// Update return the canonical stored record; Delete only confirms.
//
// Contract:
// - Errors: a returned error means the remote did not confirm the
//   mutation; the manager leaves the cache exactly as before.
type Mutator interface {
	CreateRecord(ctx context.Context, userID string, cred credential.Token, rec store.Record) (store.Record, error)
	UpdateRecord(ctx context.Context, userID string, cred credential.Token, id string, rec store.Record) (store.Record, error)
	DeleteRecord(ctx context.Context, userID string, cred credential.Token, id string) error
}

// RecordSourceFunc is an adapter to allow ordinary functions to be used
// as RecordSources.
type RecordSourceFunc func(ctx context.Context, userID string, cred credential.Token) ([]store.Record, error)

// FetchRecords calls the function.
func (f RecordSourceFunc) FetchRecords(ctx context.Context, userID string, cred credential.Token) ([]store.Record, error) {
	return f(ctx, userID, cred)
}

// TotalSourceFunc is an adapter to allow ordinary functions to be used
// as TotalSources.
type TotalSourceFunc func(ctx context.Context, cred credential.Token) (float64, error)

// FetchTotal calls the function.
func (f TotalSourceFunc) FetchTotal(ctx context.Context, cred credential.Token) (float64, error) {
	return f(ctx, cred)
}

// Ensure the adapters implement their interfaces
var (
	_ RecordSource = (RecordSourceFunc)(nil)
	_ TotalSource  = (TotalSourceFunc)(nil)
)
