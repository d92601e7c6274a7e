package pg

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config configures the PostgreSQL connection. Repositories address their tables
// in the "public" schema.
type Config struct {
	Host     string `yaml:"host"     validate:"required"`
	Port     int    `yaml:"port"     validate:"required" default:"5432"`
	User     string `yaml:"user"     validate:"required"`
	Password string `yaml:"password" validate:"required" mask:"true"`
	Database string `yaml:"database" validate:"required"`
	SSLMode  string `yaml:"sslmode"  validate:"oneof=disable allow prefer require verify-ca verify-full" default:"disable"`

	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
	// ConnectAttempts is how many times the server is pinged at startup before giving up.
	ConnectAttempts uint `yaml:"connect_attempts" validate:"gte=1" default:"5"`
	// ConnectRetryDelay is the base delay between startup pings.
	ConnectRetryDelay time.Duration `yaml:"connect_retry_delay" default:"1s"`

	Pool PoolConfig `yaml:"pool"`

	// Debug logs every query through the "pg" logger.
	Debug bool `yaml:"debug"`
}

// PoolConfig sizes the pgx connection pool.
type PoolConfig struct {
	MaxConns        int32         `yaml:"max_conns"          validate:"gte=1" default:"4"`
	MinConns        int32         `yaml:"min_conns"          validate:"gte=0" default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" default:"30m"`
}

// connString renders the configuration as a postgres:// URL.
// Credentials are escaped, so passwords may hold any character.
func (c Config) connString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
		RawQuery: url.Values{
			"sslmode":         {c.SSLMode},
			"connect_timeout": {strconv.Itoa(int(c.ConnectTimeout.Seconds()))},
		}.Encode(),
	}
	return u.String()
}
