package observe

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSessionMeta_SpanName(t *testing.T) {
	cases := []struct {
		meta SessionMeta
		want string
	}{
		{SessionMeta{Op: "fetch.records"}, "histsync.fetch.records"},
		{SessionMeta{Op: "mutation.delete", UserID: "user-1"}, "histsync.mutation.delete"},
	}
	for _, tc := range cases {
		if got := tc.meta.SpanName(); got != tc.want {
			t.Errorf("SpanName() = %q, want %q", got, tc.want)
		}
	}
}

func newTestTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return newTracer(tp.Tracer("test")), recorder
}

func TestTracer_StartSpan(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	ctx, span := tracer.StartSpan(context.Background(), SessionMeta{
		UserID: "user-1",
		Op:     "fetch.records",
	})
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name() != "histsync.fetch.records" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", spans[0].SpanKind())
	}

	attrs := spans[0].Attributes()
	foundUser := false
	for _, attr := range attrs {
		if string(attr.Key) == "user.id" && attr.Value.AsString() == "user-1" {
			foundUser = true
		}
	}
	if !foundUser {
		t.Errorf("user.id attribute missing: %+v", attrs)
	}
}

func TestTracer_EndSpan_Error(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, span := tracer.StartSpan(context.Background(), SessionMeta{Op: "mutation.create"})
	tracer.EndSpan(span, errors.New("remote unavailable"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if len(spans[0].Events()) == 0 {
		t.Error("error span should carry a recorded error event")
	}
}

func TestNoopTracer(t *testing.T) {
	tracer := newNoopTracer()

	ctx, span := tracer.StartSpan(context.Background(), SessionMeta{Op: "fetch.records"})
	if ctx == nil || span == nil {
		t.Fatal("noop tracer returned nil")
	}
	// Must not panic with or without an error.
	tracer.EndSpan(span, errors.New("ignored"))
}
