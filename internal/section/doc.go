// Package section provides the asynchronous data providers behind each
// streamed page section.
//
// A Memo wraps a Source with a simulated latency and memoizes the result:
// repeated and concurrent Fetch calls share one in-flight load until Reset.
// Memos are owned by a Scope, which is created per request and reset at the
// start of it, so concurrent requests never observe each other's data.
//
//	scope := section.NewScope()
//	stats := section.NewMemo(statsSource, rng)
//	scope.Add(stats)
//	scope.Reset()
//	items, err := stats.Fetch(ctx)
package section
