package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAMLDefaults(t *testing.T) {
	data := []byte(`
database:
  driver: sqlite
auth:
  accessTokenSecret: s3cret
`)
	cfg, err := Parse(data, "yaml")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/taskboard.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Auth.AccessTokenExpiryHour)
	assert.Equal(t, 168, cfg.Auth.RefreshTokenExpiryHour)
	assert.Equal(t, "s3cret", cfg.Auth.RefreshTokenSecret, "refresh secret falls back to the access secret")
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_PostgresRequiresHost(t *testing.T) {
	data := []byte(`
database:
  driver: postgres
  dbname: taskboard
auth:
  accessTokenSecret: s3cret
`)
	_, err := Parse(data, "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host")
}

func TestParse_UnknownDriver(t *testing.T) {
	data := []byte(`
database:
  driver: oracle
auth:
  accessTokenSecret: s3cret
`)
	_, err := Parse(data, "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database.driver")
}

func TestParse_MissingSecret(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: sqlite\n"), "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accessTokenSecret")
}

func TestParse_EnvOverridesSecret(t *testing.T) {
	t.Setenv(envAccessSecret, "from-env")
	cfg, err := Parse([]byte("database:\n  driver: sqlite\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.AccessTokenSecret)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.toml")
	content := `
[server]
addr = ":9090"

[database]
driver = "postgres"
host = "db.internal"
dbname = "taskboard"
user = "tb"

[auth]
accessTokenSecret = "a"
refreshTokenSecret = "r"
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "r", cfg.Auth.RefreshTokenSecret)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolvePath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/taskboard/config.toml")
	assert.Equal(t, "/etc/taskboard/config.toml", resolvePath())
}
