// Package pages builds and navigates page-level structures: page
// dictionaries, media boxes, resource dictionaries, content-stream
// drawers, document information, and the reader-side page tree walk with
// attribute inheritance.
package pages
