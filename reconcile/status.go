package reconcile

// op identifies one of the independent remote operations whose
// loading/error signals feed the combined snapshot.
type op int

const (
	opFetchRecords op = iota
	opFetchTotal
	opMutation
	opCount
)

// String returns the operation name used in telemetry. Mutation spans
// carry a kind-qualified name ("mutation.create", "mutation.update",
// "mutation.delete") on top of the base name.
func (o op) String() string {
	switch o {
	case opFetchRecords:
		return "fetch.records"
	case opFetchTotal:
		return "fetch.total"
	case opMutation:
		return "mutation"
	default:
		return "unknown"
	}
}

// opState is the observable state of one remote operation.
type opState struct {
	loading bool
	err     error
}

// combinedError folds per-operation errors into the single surfaced
// signal: the first non-nil of records, total, mutation, in that
// priority order.
func combinedError(ops *[opCount]opState) error {
	for _, o := range []op{opFetchRecords, opFetchTotal, opMutation} {
		if err := ops[o].err; err != nil {
			return err
		}
	}
	return nil
}

// anyLoading reports whether any remote operation is in flight.
func anyLoading(ops *[opCount]opState) bool {
	for i := range ops {
		if ops[i].loading {
			return true
		}
	}
	return false
}
