package fluentdb_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fluentdb "github.com/biyonik/go-fluent-db"
)

const schema = `
CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT UNIQUE,
	age        INTEGER,
	status     TEXT,
	created_at TEXT
);
CREATE TABLE posts (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id   INTEGER NOT NULL,
	title     TEXT NOT NULL,
	published INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE orders (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	amount  REAL NOT NULL
);`

type user struct {
	ID        int64  `db:"id,pk"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Age       int    `db:"age"`
	Status    string `db:"status"`
	CreatedAt string `db:"created_at"`
}

// recorder, çalıştırılan sorguları saklayan test Logger'ıdır.
type recorder struct {
	mu      sync.Mutex
	queries []string
	args    [][]any
	errs    []error
}

func (r *recorder) Log(query string, args []any, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	r.errs = append(r.errs, err)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		return ""
	}
	return r.queries[len(r.queries)-1]
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

// openTestDB, şeması kurulmuş bellek içi bir SQLite Connector döndürür.
func openTestDB(t *testing.T, opts ...fluentdb.Option) *fluentdb.Connector {
	t.Helper()

	conn, err := fluentdb.Open(context.Background(), &fluentdb.Config{
		Driver:   fluentdb.DriverSQLite,
		Database: ":memory:",
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// Hazırlanmış ifadeler tek komut çalıştırır.
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err = conn.Exec(context.Background(), stmt, nil)
		require.NoError(t, err)
	}
	return conn
}

// seed, üç kullanıcı, üç gönderi ve dört sipariş ekler.
func seed(t *testing.T, conn *fluentdb.Connector) {
	t.Helper()

	users := []fluentdb.Record{
		fluentdb.Record{}.Set("name", "Ann").Set("email", "ann@example.com").Set("age", 30).Set("status", "active").Set("created_at", "2024-01-01"),
		fluentdb.Record{}.Set("name", "Bob").Set("email", "bob@example.com").Set("age", 17).Set("status", "active").Set("created_at", "2024-02-01"),
		fluentdb.Record{}.Set("name", "Cem").Set("email", "cem@example.com").Set("age", 45).Set("status", "inactive").Set("created_at", "2024-03-01"),
	}
	_, err := conn.Table("users").InsertAll(users)
	require.NoError(t, err)

	_, err = conn.Table("posts").InsertAll([]map[string]any{
		{"user_id": 1, "title": "Hello", "published": 1},
		{"user_id": 1, "title": "Draft", "published": 0},
		{"user_id": 3, "title": "Notes", "published": 1},
	})
	require.NoError(t, err)

	_, err = conn.Table("orders").InsertAll([]map[string]any{
		{"user_id": 1, "amount": 10.5},
		{"user_id": 1, "amount": 20.0},
		{"user_id": 2, "amount": 5.25},
		{"user_id": 3, "amount": 64.25},
	})
	require.NoError(t, err)
}
