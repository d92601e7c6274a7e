package sqlitewr

import "io"

// Config defines the configuration options for the embedded SQLite database.
type Config struct {
	// DSN is the modernc.org/sqlite data source, e.g. "file:repo.db?_pragma=foreign_keys(1)".
	// The default is a private in-memory database.
	DSN string `yaml:"dsn" default:"file::memory:"`

	// Debug logs queries through the "sqlite" logger.
	Debug bool `yaml:"debug" default:"false"`

	// PrintQueries prints every query with its arguments to Output, for interactive debugging.
	// Setting BUNDEBUG=2 in the environment has the same effect.
	PrintQueries bool `yaml:"print_queries"`
	// Output receives printed queries. Defaults to stderr.
	Output io.Writer `yaml:"-"`
}
