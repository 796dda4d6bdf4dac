package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentdb "github.com/biyonik/go-fluent-db"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fluentdb", cmd.Use)
	assert.Contains(t, cmd.Long, "fluent SQL")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"ping", "count", "sql"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	debugFlag := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, debugFlag)
	assert.Equal(t, "false", debugFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "sql", "users"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSQLCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSQLCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"users", "-s", "id,name", "-w", "status=active", "-w", "age=30", "-l", "5"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t,
		"SELECT `id`, `name` FROM `users` WHERE `status` = ? AND `age` = ? LIMIT 5\n"+
			"  1: active (text)\n"+
			"  2: 30 (integer)\n",
		buf.String())
}

func TestSQLCommandJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSQLCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"orders", "--where", "user_id=7"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		SQL      string `json:"sql"`
		Bindings []any  `json:"bindings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "SELECT * FROM `orders` WHERE `user_id` = ?", resp.SQL)
	assert.Equal(t, []any{float64(7)}, resp.Bindings)
}

func TestSQLCommandRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad filter", []string{"users", "-w", "status"}},
		{"bad column", []string{"users", "-s", "id;drop"}},
		{"missing table", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewSQLCommand(&RootOptions{Format: "text"})
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

// sqliteConfig, iki kullanıcılı bir SQLite dosyası ve onu gösteren bir config yazar.
func sqliteConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")
	ctx := context.Background()

	conn, err := fluentdb.Open(ctx, &fluentdb.Config{Driver: fluentdb.DriverSQLite, Database: dbPath})
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, status TEXT)", nil)
	require.NoError(t, err)
	_, err = conn.Table("users").InsertAll([]map[string]any{
		{"name": "Ann", "status": "active"},
		{"name": "Bob", "status": "inactive"},
	})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	cfgPath := filepath.Join(dir, "fluentdb.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("driver: sqlite3\ndatabase: "+dbPath+"\n"), 0o600))
	return cfgPath
}

func TestCountCommand(t *testing.T) {
	cfgPath := sqliteConfig(t)

	buf := &bytes.Buffer{}
	cmd := NewCountCommand(&RootOptions{Config: cfgPath, Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"users"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "2\n", buf.String())

	buf.Reset()
	cmd = NewCountCommand(&RootOptions{Config: cfgPath, Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"users", "-w", "status=active"})
	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `{"table":"users","count":1}`, buf.String())
}

func TestPingCommand(t *testing.T) {
	cfgPath := sqliteConfig(t)

	buf := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(buf)
	root.SetArgs([]string{"--config", cfgPath, "ping"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "ok (sqlite3)\n", buf.String())
}

func TestCountCommandMissingConfig(t *testing.T) {
	cmd := NewCountCommand(&RootOptions{Config: filepath.Join(t.TempDir(), "missing.yaml"), Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"users"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, fluentdb.ErrConnection)
}
