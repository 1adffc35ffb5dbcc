// Package reconcile keeps the per-user history cache consistent with an
// authoritative remote source.
//
// The Manager computes the effective record set on every observation
// cycle: freshly fetched records when non-empty, the cached snapshot
// otherwise. Successful fetches are mirrored into the cache, confirmed
// mutations are applied to the cache using the remote's returned data,
// and an auto-fetch guard bounds automatic fetches to one per distinct
// credential. Observers subscribe to snapshots and are notified whenever
// any input changes.
package reconcile
