// Package observe provides telemetry for the history reconciliation
// layer: OpenTelemetry tracing and metrics behind an Observer facade,
// plus a structured JSON logger with credential redaction.
package observe
