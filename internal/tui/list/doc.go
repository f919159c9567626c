// Package listview provides a scrolling cursor over a list of rows for Bubble
// Tea views.
//
// Only the rows inside the viewport are rendered, so a fully expanded
// accordion with thousands of rule rows stays responsive. Navigation keys:
// up/down, j/k, pgup/pgdn, home/end and g/G.
package listview
