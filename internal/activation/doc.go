// Package activation holds the client side of the streaming protocol.
//
// Two scripts are involved. The swap runtime is tiny and inlined in the
// head so that every streamed fragment can be moved into its placeholder
// the moment it is parsed:
//
//	<template data-section="stats">…</template>
//	<script>window.__streamssr.swap("stats")</script>
//
// The client module, served from ClientPath, runs after the document is
// complete. It activates regions in idle time (jumping the queue for the
// region the user touches first), mounts federated widgets, hides the
// streaming indicator, and in development listens for reload events.
package activation
