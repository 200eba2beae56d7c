// Package shell builds the static shell: a complete, data-free document
// with the header, skeletons, and footer of the page. It is generated once
// (at build time by "streamssr generate-shell", or lazily per process) and
// served verbatim, both at /shell.html and as the body of the 500 fallback
// when a streamed page cannot produce its own shell.
package shell
