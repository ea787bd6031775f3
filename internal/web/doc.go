// Package web implements the HTMX admin application for the flow registry.
//
// # Architecture
//
// Server-side rendering with html/template; HTMX drives partial swaps so the
// flow table updates in place after inserts and deletes. The admin app is a
// single [AdminHandler] registered on the server router alongside the
// webhook handler.
//
// Routes
//
//	GET  /            → base page: flow table, insert form, preview form
//	GET  /flows/table → HTMX partial: flow table
//	POST /flows       → activate a flow (form: flow-id, keywords, sample-playlist-url)
//	POST /flows/delete→ deactivate a flow, clearing its keywords
//	POST /playlist    → mood + proposal preview partial (no catalog calls)
//	POST /event/test  → fire the "Placed Order" test event, 204 on success
//
// Templates are embedded so the binary is self-contained.
//
// The admin app is unauthenticated and intended for localhost use only.
package web
