// Package tasks orchestrates the webhook-to-playlist pipeline with real-time
// progress reporting.
//
// # Pipeline
//
// [PlaylistEngine.Run] executes one stateless pipeline run:
//
//  1. Gate: look up the webhook's flow in the registry. Unknown or inactive
//     flows terminate the run silently with zero external calls.
//  2. Mood synthesis: the flow's keywords become a one-sentence mood
//     description via a plain completion. The completion text is returned
//     verbatim.
//  3. Proposal synthesis: the mood description becomes a structured playlist
//     proposal via a JSON-mode completion. Invalid JSON is fatal.
//  4. Build: an empty playlist is created on the catalog (fatal on failure),
//     then each proposed track is resolved and added sequentially in
//     proposal order. Misses and per-track transport errors are logged and
//     skipped; a partial playlist beats no playlist.
//  5. Notify: a "Playlist Created" event carrying the realized playlist is
//     posted to the marketing service. Transport errors are logged, never
//     rolled back.
//
// # Progress Reporting
//
// All operations emit [ProgressUpdate] values on a non-blocking channel.
// Updates use select with default to prevent blocking.
//
// # Track Caching
//
// The optional [TrackCacher] interface caches resolved catalog IDs keyed by
// song/artist so repeated proposals skip the catalog search. Cache errors
// are logged and ignored; they never disrupt a run.
//
// # Implementation
//
// [PlaylistEngine] depends on:
//   - [services.CompletionService] : mood and proposal synthesis
//   - [services.CatalogService] : playlist creation and track resolution
//   - [services.MarketingService] : outbound event ingestion
//   - [registry.FlowRegistry] : the flow gate
//   - [TrackCacher] : optional persistence layer (repositories.TrackCacheRepository)
package tasks
