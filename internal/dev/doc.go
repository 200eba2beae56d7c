// Package dev provides live reload for development mode.
//
// Two pieces cooperate:
//
//   - Watcher: observes the build output directory with fsnotify and
//     reports debounced, classified changes
//   - ReloadServer: pushes reload notifications to connected browsers
//     over a WebSocket
//
// # Usage
//
//	rs := dev.NewReloadServer(logger)
//	w := dev.NewWatcher(dev.WatcherConfig{Paths: []string{cfg.DistDir}})
//	w.OnChange(dev.Reloader(store, rs))
//	go w.Start(ctx)
//	router.Get(activation.ReloadPath, rs.HandleWebSocket)
//
// # Reload Protocol
//
// The browser connects to /_streamssr/reload. Messages are JSON-encoded:
//
//	{"type": "reload"}                  // Triggers full page reload
//	{"type": "css", "file": "..."}      // Refreshes stylesheets only
//	{"type": "error", "error": "..."}   // Logs a build error in the console
package dev
