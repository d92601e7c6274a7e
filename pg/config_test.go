package pg

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	cfg := Config{
		Host:           "db.internal",
		Port:           6432,
		User:           "repo",
		Password:       "p@ss word/with:odd chars",
		Database:       "entities",
		SSLMode:        "require",
		ConnectTimeout: 5 * time.Second,
	}

	parsed, err := pgxpool.ParseConfig(cfg.connString())
	require.NoError(t, err)

	conn := parsed.ConnConfig
	assert.Equal(t, "db.internal", conn.Host)
	assert.Equal(t, uint16(6432), conn.Port)
	assert.Equal(t, "repo", conn.User)
	assert.Equal(t, "p@ss word/with:odd chars", conn.Password)
	assert.Equal(t, "entities", conn.Database)
	assert.Equal(t, 5*time.Second, conn.ConnectTimeout)
}
