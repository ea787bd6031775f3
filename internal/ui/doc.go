// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for flow management:
//  1. [FlowListView] : Browse registered marketing flows
//  2. [FlowDetailView] : Inspect a flow's keywords and status, deactivate it
//  3. [PreviewView] : Synthesize and display a playlist proposal for the flow's keywords
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Proposal synthesis runs off-thread via a tea.Cmd so the UI stays responsive.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, p, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
