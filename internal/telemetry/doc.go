// Package telemetry holds the Prometheus collectors and OpenTelemetry
// tracer setup shared by the server and the streaming responder.
//
// Metrics are registered on an explicit registry so tests and multiple
// servers in one process never collide:
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// All Metrics methods accept a nil receiver and do nothing, so components
// built without metrics need no guards.
package telemetry
