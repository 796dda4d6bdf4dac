package fluentdb_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentdb "github.com/biyonik/go-fluent-db"
)

func TestConfig_DriverName(t *testing.T) {
	tests := map[string]string{
		"":        fluentdb.DriverMySQL,
		"mysql":   fluentdb.DriverMySQL,
		"MariaDB": fluentdb.DriverMySQL,
		"sqlite":  fluentdb.DriverSQLite,
		"sqlite3": fluentdb.DriverSQLite,
		"oracle":  "oracle",
	}
	for in, want := range tests {
		assert.Equal(t, want, (&fluentdb.Config{Driver: in}).DriverName(), in)
	}
}

func TestConfig_MySQLDSN(t *testing.T) {
	cfg := &fluentdb.Config{
		Driver:   "mysql",
		Host:     "db.internal",
		Port:     3307,
		Database: "app",
		Charset:  "utf8mb4",
		User:     "app",
		Password: "s3cret",
		Options:  map[string]string{"timeout": "5s"},
	}

	dsn, err := cfg.FormatDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "app", parsed.DBName)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "s3cret", parsed.Passwd)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, "5s", parsed.Timeout.String())
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestConfig_MySQLDefaults(t *testing.T) {
	dsn, err := fluentdb.DefaultConfig().FormatDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "localhost:3306", parsed.Addr)
}

func TestConfig_MySQLDSNOverride(t *testing.T) {
	cfg := &fluentdb.Config{
		Driver:   "mysql",
		DSN:      "root:old@tcp(10.0.0.5:3306)/shop",
		Password: "new",
	}

	dsn, err := cfg.FormatDSN()
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "new", parsed.Passwd)
	assert.Equal(t, "10.0.0.5:3306", parsed.Addr)
	assert.Equal(t, "shop", parsed.DBName)

	_, err = (&fluentdb.Config{Driver: "mysql", DSN: "not a dsn"}).FormatDSN()
	assert.Error(t, err)
}

func TestConfig_SQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  fluentdb.Config
		want string
	}{
		{"memory default", fluentdb.Config{Driver: "sqlite3"}, "file::memory:"},
		{"file", fluentdb.Config{Driver: "sqlite3", Database: "app.db"}, "file:app.db"},
		{"options sorted", fluentdb.Config{Driver: "sqlite", Database: "app.db", Options: map[string]string{"mode": "rwc", "_fk": "1"}}, "file:app.db?_fk=1&mode=rwc"},
		{"dsn verbatim", fluentdb.Config{Driver: "sqlite3", DSN: "file:x.db?cache=shared", Database: "ignored"}, "file:x.db?cache=shared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := tt.cfg.FormatDSN()
			require.NoError(t, err)
			assert.Equal(t, tt.want, dsn)
		})
	}
}

func TestConfig_UnsupportedDriver(t *testing.T) {
	_, err := (&fluentdb.Config{Driver: "oracle"}).FormatDSN()
	assert.EqualError(t, err, "unsupported driver 'oracle'")
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluentdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: sqlite3
database: data.db
prefix: app_
debug: true
options:
  _busy_timeout: "5000"
  Mode: rwc
`), 0o600))

	cfg, err := fluentdb.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Driver)
	assert.Equal(t, "data.db", cfg.Database)
	assert.Equal(t, "app_", cfg.Prefix)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "utf8mb4", cfg.Charset)
	assert.Equal(t, 3306, cfg.Port)
	// viper harita anahtarlarını küçük harfe çevirir.
	assert.Equal(t, map[string]string{"_busy_timeout": "5000", "mode": "rwc"}, cfg.Options)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluentdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: mysql\nhost: file-host\nport: 3306\n"), 0o600))

	t.Setenv("FLUENTDB_HOST", "env-host")
	t.Setenv("FLUENTDB_PORT", "3310")

	cfg, err := fluentdb.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Host)
	assert.Equal(t, 3310, cfg.Port)
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	cfg, err := fluentdb.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, fluentdb.DriverMySQL, cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.NotNil(t, cfg.Options)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := fluentdb.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, fluentdb.ErrConnection)
}

func TestOpen_FromLoadedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fluentdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver: sqlite3\ndatabase: "+filepath.Join(dir, "app.db")+"\nprefix: app_\n"), 0o600))

	cfg, err := fluentdb.LoadConfig(path)
	require.NoError(t, err)

	conn, err := fluentdb.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "app_", conn.TablePrefix())
	assert.NoError(t, conn.Ping(context.Background()))
}
