package asyncwrite

import "time"

// Config configures a Writer.
type Config struct {
	// Timeout bounds Task.Await. Default is 15s.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0" default:"15s"`

	// Topic names the in-process channel writes travel on. Default is "async_writes".
	Topic string `yaml:"topic" default:"async_writes"`

	// Buffer is the number of writes that may wait for the consumer. Default is 64.
	Buffer int64 `yaml:"buffer" validate:"gte=0" default:"64"`
}
