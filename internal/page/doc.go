// Package page describes the storefront page: the shell components shared
// by the static shell and the streamed document, the section views, and
// Builder, which assembles a fresh page and its request-scoped sections.
package page
