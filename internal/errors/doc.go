// Package errors provides coded, structured errors for streamssr.
//
// Every failure the server can report maps to a code in the registry:
//
//   - E1xx: configuration and build artifacts (config file, asset manifest)
//   - E2xx: document-level render failures (shell could not be built, deadline)
//   - E3xx: section failures after the shell was committed
//   - E4xx: federated widget resolution
//
// # Usage
//
//	err := errors.New("E200").
//	    Wrap(cause).
//	    WithDetail("page /products failed before the shell was ready")
//
//	fmt.Println(err.Format())
//	// ERROR E200: Shell render failed
//	//
//	//   page /products failed before the shell was ready
//	//
//	//   Hint: ...
//
// Errors unwrap to their cause, so errors.Is and errors.As work across
// the wrapper.
package errors
