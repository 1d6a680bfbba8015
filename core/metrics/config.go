package metrics

import "github.com/kilianp07/traveldelay/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	// PrometheusEnabled registers the Prometheus sink and serves /metrics on
	// PrometheusPort.
	PrometheusEnabled bool                   `json:"prometheus_enabled"`
	PrometheusPort    string                 `json:"prometheus_port"`
	Sinks             []factory.ModuleConfig `json:"sinks"`
}
