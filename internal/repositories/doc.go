// Package repositories implements SQLite persistence for the resolved-track
// cache.
//
// The pipeline resolves completion-proposed song/artist pairs against the
// streaming catalog. Proposals repeat across runs, so resolved catalog IDs
// are cached keyed by a normalized song/artist key, and the resolver
// consults the cache before searching. Cache usage is best-effort: read and
// write failures are logged by the caller and never interrupt a run.
//
// Sequence numbers provide stable, human-readable ordering independent of
// UUIDs and creation timestamps. The [NextSequence] function atomically
// increments per-table sequence counters in dedicated sequence tables.
package repositories
