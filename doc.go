// Package fluentdb provides a fluent SQL query builder and executor for Go.
//
// go-fluent-db offers a Laravel-inspired API for building parameterized SQL
// and running it over a single database/sql connection.
//
// # Quick Start
//
// Open a connector and start building queries:
//
//	conn, err := fluentdb.Open(ctx, &fluentdb.Config{
//	    Driver:   "mysql",
//	    Host:     "localhost",
//	    Database: "app",
//	    User:     "app",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
// # Select Queries
//
//	users, err := conn.Table("users").
//	    Select("id", "name", "email").
//	    Where("status", "=", "active").
//	    Order("created_at", "DESC").
//	    Limit(10).
//	    Get()
//
//	names := users.Pluck("name")
//
// Struct destinations use `db` tags:
//
//	var users []User
//	err := conn.Table("users").Where("age", ">", 18).GetInto(&users)
//
// # Where Clauses
//
//	b.Where("age", ">", 18)
//	b.OrWhere("role", "=", "admin")
//	b.WhereIn("status", []string{"active", "pending"})
//	b.WhereBetween("created_at", start, end)
//	b.WhereNull("deleted_at")
//
// An empty WhereIn renders the constant-false predicate 0 = 1.
//
// # Joins
//
// Join returns the join fragment; Builder() returns to the query:
//
//	rows, err := conn.Table("users").TableAs("users", "u").
//	    Join("posts", "p").On("p.user_id", "=", "u.id").Where("p.published", "=", 1).
//	    Builder().
//	    Get("u.name", "p.title")
//
// # Insert, Update, Delete
//
//	id, err := conn.Table("users").Insert(fluentdb.Record{}.Set("name", "John").Set("age", 30))
//	n, err := conn.Table("users").Where("id", "=", id).Update(map[string]any{"status": "inactive"})
//	n, err = conn.Table("users").Where("status", "=", "banned").Delete()
//
// # Transactions
//
// While a transaction is open, every statement issued through the connector runs
// inside it:
//
//	err := conn.Transaction(ctx, func(tx *fluentdb.Tx) error {
//	    if _, err := tx.Table("accounts").Where("id", "=", 1).Update(debit); err != nil {
//	        return err
//	    }
//	    _, err := tx.Table("accounts").Where("id", "=", 2).Update(credit)
//	    return err
//	})
//
// # Rendering Without I/O
//
//	sql, bindings, err := fluentdb.Table("users").Where("age", ">", 18).ToSQL()
//	// SELECT * FROM `users` WHERE `age` > ?
//
// # Security
//
// go-fluent-db protects against SQL injection through:
//   - Prepared statements for all values
//   - Identifier validation (table/column names)
//   - Operator whitelisting
//
// Raw expressions (WhereRaw, SelectRaw, HavingRaw, OrderRaw) are not escaped.
//
// # Thread Safety
//
// Builder and Connector instances are NOT thread-safe. Grammars are.
//
// # Supported Databases
//
//   - MySQL / MariaDB
//   - SQLite (same SQL text; used by the test suite)
package fluentdb
