// Package server wires the HTTP routes of the streaming responder.
//
// Routes:
//
//	GET /*                        streamed document
//	GET /shell.html               pre-generated static shell
//	GET /assets/*                 client build output
//	GET /_streamssr/client.js     activation runtime
//	GET /_streamssr/widgets.json  federated widget registry
//	GET /_streamssr/reload        live reload socket (development only)
//	GET /healthz                  liveness
//	GET /metrics                  Prometheus exposition
package server
