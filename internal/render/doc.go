// Package render writes vdom trees and whole HTML documents.
//
// A Document is written in two halves so that it can be streamed:
// RenderDocumentOpen emits the prologue, head, and body markup and leaves
// the body open; the caller then appends whatever it needs (streamed
// fragments) before writing DocumentClose exactly once. RenderDocument does
// both halves in one call for static output such as the pre-generated shell.
//
// Attribute order is deterministic (sorted by name) so that identical trees
// always produce byte-identical output.
package render
