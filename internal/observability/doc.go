// Package observability provides structured logging and Prometheus metrics
// for the lead gateway.
//
// Metrics satisfies the recorder interfaces of the provider, dispatch and
// communication services, so one instance instruments the whole pipeline.
package observability
