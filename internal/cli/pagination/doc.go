// Package pagination windows list output for the plain and structured
// renderers of the CLI.
//
// Two mutually exclusive modes are supported:
//   - offset-based: --limit and --offset
//   - page-based: --page and --page-size
//
// Params.Apply slices the already filtered and sorted items; Meta describes
// the window for a footer or a JSON envelope.
package pagination
