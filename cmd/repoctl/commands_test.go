package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
api_key:
  - {id: key-1, key: k1, environment_id: env-1}
  - {id: key-2, key: k2, environment_id: env-2}
audit:
  - {id: au-1, environment_id: env-1, reference_type: API, reference_id: api-1, event: API_CREATED, created_at: "2020-01-01T00:00:00Z"}
  - {id: au-2, environment_id: env-1, reference_type: ENVIRONMENT, reference_id: env-1, event: ENV_CREATED, created_at: "2999-01-01T00:00:00Z"}
`

func setup(t *testing.T) (configPath, fixturePath string) {
	t.Helper()

	dir := t.TempDir()
	configPath = filepath.Join(dir, "repoctl.yaml")
	fixturePath = filepath.Join(dir, "fixture.yaml")

	cfg := fmt.Sprintf("logger:\n  disable: true\nstore:\n  driver: sqlite\n  sqlite:\n    dsn: file:%s\n",
		filepath.Join(dir, "repo.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(fixturePath, []byte(fixture), 0o600))
	return configPath, fixturePath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	a := &app{}
	defer a.close()
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestSeedPurgeAndRetention(t *testing.T) {
	configPath, fixturePath := setup(t)

	out, err := run(t, "--config", configPath, "seed", "--file", fixturePath)
	require.NoError(t, err)
	assert.Equal(t, "api_key: 2\naudit: 2\n", out)

	out, err = run(t, "--config", configPath, "retention", "--environment", "env-1", "--max-age", "720h")
	require.NoError(t, err)
	assert.Equal(t, "audits: 1\n", out)

	out, err = run(t, "--config", configPath, "purge-environment", "env-1")
	require.NoError(t, err)
	assert.Contains(t, out, "api keys: 1\n")
	assert.Contains(t, out, "audits: 1\n")

	out, err = run(t, "--config", configPath, "purge-environment", "env-1")
	require.NoError(t, err)
	assert.Contains(t, out, "api keys: 0\n")
}

func TestConfigHidesSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoctl.yaml")
	cfg := "logger:\n  disable: true\nstore:\n  driver: redis\n  redis:\n    addrs: localhost:6379\n    password: s3cret\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	out, err := run(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "store.redis.password: ******")
	assert.NotContains(t, out, "s3cret")
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "config")
	require.Error(t, err)
}

func TestRetentionNeedsPositiveAge(t *testing.T) {
	configPath, _ := setup(t)

	_, err := run(t, "--config", configPath, "retention", "--environment", "env-1", "--max-age", "0s")
	require.Error(t, err)
}

func TestConfigReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoctl.yaml")
	envFile := filepath.Join(dir, "repoctl.env")
	cfg := "logger:\n  disable: true\nstore:\n  driver: redis\n  redis:\n    addrs: localhost:6379\n    password: ${REPOCTL_REDIS_PASSWORD}\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(envFile, []byte("REPOCTL_REDIS_PASSWORD=s3cret\n"), 0o600))

	t.Setenv("REPOCTL_REDIS_PASSWORD", "")
	require.NoError(t, os.Unsetenv("REPOCTL_REDIS_PASSWORD"))

	out, err := run(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "store.redis.password: \n")

	out, err = run(t, "--config", path, "--env-file", envFile, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "store.redis.password: ******\n")
}
