// Package stream writes a page as one progressively delivered HTML
// document.
//
// A response moves through four states:
//
//	INIT -> SHELL_READY -> SECTION_READY* -> DONE
//
// In INIT the page is built and its shell rendered under a deadline. The
// shell (head, critical CSS, bootstrap data, and every section's
// placeholder) is written and flushed in one step, after which the
// response is committed: status 200, and nothing that happens later can
// turn it into an error page. Each section then resolves on its own
// goroutine and its fragment is written the moment it is ready:
//
//	<template data-section="stats">...</template><script>window.__streamssr.swap("stats")</script>
//
// When every section has resolved or failed the document is closed
// exactly once.
//
// Before the shell, a build error or panic produces a 500 carrying the
// static fallback shell, and an expired deadline produces a 500 with the
// body "Request timeout". Neither path ever emits partial markup.
package stream
