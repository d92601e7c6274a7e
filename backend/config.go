package backend

import (
	"github.com/rise-and-shine/entityrepo/asyncwrite"
	"github.com/rise-and-shine/entityrepo/pg"
	"github.com/rise-and-shine/entityrepo/rediswr"
	"github.com/rise-and-shine/entityrepo/sqlitewr"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config selects and configures the store every repository runs on.
type Config struct {
	// Driver is one of "postgres", "sqlite", "redis" or "memory". Default is "sqlite".
	Driver string `yaml:"driver" validate:"oneof=postgres sqlite redis memory" default:"sqlite"`

	// Postgres is required by the postgres driver. Tables are expected to exist.
	Postgres *pg.Config `yaml:"postgres" validate:"required_if=Driver postgres"`

	// SQLite configures the sqlite driver, which creates missing tables on open.
	SQLite sqlitewr.Config `yaml:"sqlite"`

	// Redis is required by the redis driver.
	Redis *rediswr.Config `yaml:"redis" validate:"required_if=Driver redis"`
	// KeyPrefix namespaces the Redis keys of every collection.
	KeyPrefix string `yaml:"key_prefix" default:"entityrepo:"`

	// MonitoringWriter configures the asynchronous writer of monitoring reports.
	MonitoringWriter asyncwrite.Config `yaml:"monitoring_writer"`
}
