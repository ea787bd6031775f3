// Package models defines domain entities for the flowdj playlist service.
//
// The package contains two categories of types:
//
// 1. Registry and pipeline records: ephemeral values flowing through the webhook pipeline
//   - [Flow] : A marketing-automation trigger annotated with playlist keywords
//   - [Track] : A proposed song/artist pair before catalog resolution
//   - [PlaylistProposal] : The structured playlist suggested by the completion service
//   - [RealizedPlaylist] : The playlist as it exists on the catalog after creation
//   - [WebhookPayload] : The inbound marketing webhook body
//
// 2. Wire documents: fixed-shape JSON payloads for external services
//   - [EventDocument] : The marketing event envelope (metric + profile + properties)
//   - [CachedTrack] : A resolved catalog track persisted by the track cache
//
// Pipeline records are produced once per run and consumed once; only the
// realized playlist URL survives the run, inside the outbound event document.
package models
