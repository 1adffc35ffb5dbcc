package reconcile

import (
	"errors"
	"testing"
)

func TestOp_String(t *testing.T) {
	cases := []struct {
		o    op
		want string
	}{
		{opFetchRecords, "fetch.records"},
		{opFetchTotal, "fetch.total"},
		{opMutation, "mutation"},
		{op(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.o.String(); got != tc.want {
			t.Errorf("op(%d).String() = %q, want %q", tc.o, got, tc.want)
		}
	}
}

func TestCombinedError_Priority(t *testing.T) {
	recordsErr := errors.New("records failed")
	totalErr := errors.New("total failed")
	mutationErr := errors.New("mutation failed")

	var ops [opCount]opState
	if combinedError(&ops) != nil {
		t.Error("no errors should combine to nil")
	}

	ops[opMutation].err = mutationErr
	if got := combinedError(&ops); !errors.Is(got, mutationErr) {
		t.Errorf("combinedError = %v, want mutation error", got)
	}

	ops[opFetchTotal].err = totalErr
	if got := combinedError(&ops); !errors.Is(got, totalErr) {
		t.Errorf("combinedError = %v, want total error over mutation", got)
	}

	ops[opFetchRecords].err = recordsErr
	if got := combinedError(&ops); !errors.Is(got, recordsErr) {
		t.Errorf("combinedError = %v, want records error first", got)
	}
}

func TestAnyLoading(t *testing.T) {
	var ops [opCount]opState
	if anyLoading(&ops) {
		t.Error("no operations in flight should report not loading")
	}

	ops[opFetchTotal].loading = true
	if !anyLoading(&ops) {
		t.Error("one in-flight operation should report loading")
	}
}
