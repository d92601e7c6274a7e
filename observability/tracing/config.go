package tracing

import "time"

const (
	reconnectionPeriod = 30 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// Config holds the configuration for exporting traces.
type Config struct {
	// Enabled turns span export on. When false a no-op provider is installed. Default is false.
	Enabled bool `yaml:"enabled" default:"false"`

	// SampleRate is the fraction of root traces kept, between 0 and 1. Default is 1.
	SampleRate float64 `yaml:"sample_rate" default:"1" validate:"gte=0,lte=1"`

	// ExporterHost is the OTLP collector host. Required when Enabled.
	ExporterHost string `yaml:"exporter_host" validate:"required_if=Enabled true"`

	// ExporterPort is the OTLP gRPC port of the collector. Default is 4317.
	ExporterPort int `yaml:"exporter_port" default:"4317"`

	// Tags are added as resource attributes to every span.
	Tags map[string]string `yaml:"tags"`
}
