// Package metrics defines the prediction events recorded for observability
// and the sinks that receive them. Sinks like PromSink and InfluxSink live in
// infra/metrics, register themselves by name and can be combined with
// NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
package metrics
