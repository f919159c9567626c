// Package engine turns API entities into the views regdash shows: the
// dashboard aggregates, agency cards and the lazily loaded agency hierarchy.
// It also owns the plain, JSON and NDJSON renderers used outside the TUI.
package engine
