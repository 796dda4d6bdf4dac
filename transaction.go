package fluentdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/biyonik/go-fluent-db/internal/validation"
)

// -----------------------------------------------------------------------------
//  Transaction Yönetimi
//
//  Connector tek bir bağlantı taşıdığı için aynı anda en fazla bir transaction
//  açık olabilir. Durum makinesi:
//
//   • Idle → Begin → InTransaction
//   • InTransaction → Commit → Committed
//   • InTransaction → Rollback (veya başarısız Commit) → RolledBack
//
//  InTransaction durumundayken Connector üzerinden çalışan her ifade (Builder
//  terminalleri dahil) transaction içinde yürür. İkinci bir Begin beklemeden
//  ErrTransactionActive ile reddedilir.
//
//  Savepoint / RollbackTo desteği Tx üzerinde korunur.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// TxState, Connector'ın transaction durumudur.
type TxState int

const (
	StateIdle TxState = iota
	StateInTransaction
	StateCommitted
	StateRolledBack
)

func (s TxState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInTransaction:
		return "in_transaction"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Tx, Connector üzerinde açılmış bir transaction'dır. Thread-safe değildir.
type Tx struct {
	c      *Connector
	tx     *sql.Tx
	closed bool
}

// State, transaction durumunu döndürür.
func (c *Connector) State() TxState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InTransaction, açık bir transaction varsa true döner.
func (c *Connector) InTransaction() bool {
	return c.State() == StateInTransaction
}

// Begin, yeni bir transaction açar. Açık bir transaction varken ErrTransactionActive döner.
//
// Örnek:
//
//	tx, err := conn.Begin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//	if _, err := tx.Table("users").Insert(user); err != nil {
//	    return err
//	}
//	return tx.Commit()
func (c *Connector) Begin(ctx context.Context) (*Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, newConnError("begin", ErrConnectionClosed)
	}
	if c.state == StateInTransaction {
		return nil, &TxError{Op: "begin", Err: ErrTransactionActive}
	}

	start := time.Now()
	sqlTx, err := c.conn.BeginTx(ctx, nil)
	c.log("BEGIN", nil, start, err)
	if err != nil {
		return nil, &TxError{Op: "begin", Err: err}
	}

	c.tx = &Tx{c: c, tx: sqlTx}
	c.state = StateInTransaction
	return c.tx, nil
}

// Commit, açık transaction'ı onaylar.
func (c *Connector) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitLocked()
}

// Rollback, açık transaction'ı geri alır.
func (c *Connector) Rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollbackLocked()
}

// commitLocked, commit başarısız olursa geri almayı dener ve iki hatayı birlikte raporlar.
func (c *Connector) commitLocked() error {
	if c.state != StateInTransaction {
		return &TxError{Op: "commit", Err: ErrNoTransaction}
	}
	t := c.tx
	c.tx = nil
	t.closed = true

	start := time.Now()
	err := t.tx.Commit()
	c.log("COMMIT", nil, start, err)
	if err == nil {
		c.state = StateCommitted
		return nil
	}

	rbErr := t.tx.Rollback()
	if errors.Is(rbErr, sql.ErrTxDone) {
		rbErr = nil
	}
	c.state = StateRolledBack
	return &TxError{Op: "commit", Err: err, RollbackErr: rbErr}
}

func (c *Connector) rollbackLocked() error {
	if c.state != StateInTransaction {
		return &TxError{Op: "rollback", Err: ErrNoTransaction}
	}
	t := c.tx
	c.tx = nil
	t.closed = true
	c.state = StateRolledBack

	start := time.Now()
	err := t.tx.Rollback()
	c.log("ROLLBACK", nil, start, err)
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return &TxError{Op: "rollback", Err: err}
	}
	return nil
}

// Transaction, work'ü bir transaction içinde çalıştırır. work hata dönerse veya panic
// ederse transaction geri alınır; aksi halde onaylanır.
//
// Örnek:
//
//	err := conn.Transaction(ctx, func(tx *fluentdb.Tx) error {
//	    if _, err := tx.Table("accounts").Where("id", "=", 1).Update(debit); err != nil {
//	        return err
//	    }
//	    _, err := tx.Table("accounts").Where("id", "=", 2).Update(credit)
//	    return err
//	})
func (c *Connector) Transaction(ctx context.Context, work func(*Tx) error) error {
	_, err := Transact(ctx, c, func(tx *Tx) (struct{}, error) {
		return struct{}{}, work(tx)
	})
	return err
}

// Transact, Transaction ile aynıdır ancak work'ün sonucunu döndürür.
//
//	id, err := fluentdb.Transact(ctx, conn, func(tx *fluentdb.Tx) (int64, error) {
//	    return tx.Table("users").Insert(user)
//	})
func Transact[T any](ctx context.Context, c *Connector, work func(*Tx) (T, error)) (T, error) {
	var zero T

	tx, err := c.Begin(ctx)
	if err != nil {
		return zero, err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	result, err := work(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return zero, errors.Join(err, rbErr)
		}
		return zero, err
	}

	// work transaction'ı kendisi kapatmış olabilir.
	if tx.IsClosed() {
		return result, nil
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return result, nil
}

// ----------------------------------------------------------------------------
// Tx
// ----------------------------------------------------------------------------

// Table, transaction içinde çalışacak bir Builder başlatır.
func (t *Tx) Table(name string) *Builder {
	return t.c.Table(name)
}

// Builder, transaction içinde çalışacak tablosuz bir Builder döndürür.
func (t *Tx) Builder() *Builder {
	return t.c.Builder()
}

// Connector, transaction'ın açıldığı Connector'ı döndürür.
func (t *Tx) Connector() *Connector {
	return t.c
}

// Commit, transaction'ı onaylar. Kapalı bir transaction için ErrNoTransaction döner.
func (t *Tx) Commit() error {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.closed {
		return &TxError{Op: "commit", Err: ErrNoTransaction}
	}
	return t.c.commitLocked()
}

// Rollback, transaction'ı geri alır. Kapalı bir transaction için nil döner.
func (t *Tx) Rollback() error {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.closed {
		return nil
	}
	return t.c.rollbackLocked()
}

// IsClosed, transaction commit veya rollback ile kapandıysa true döner.
func (t *Tx) IsClosed() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	return t.closed
}

func (t *Tx) ensureOpen(op string) error {
	if t.IsClosed() {
		return &TxError{Op: op, Err: ErrNoTransaction}
	}
	return nil
}

// Exec, ham SQL'i transaction içinde çalıştırır.
func (t *Tx) Exec(ctx context.Context, query string, bindings []Binding) (sql.Result, error) {
	if err := t.ensureOpen("exec"); err != nil {
		return nil, err
	}
	return t.c.Exec(ctx, query, bindings)
}

// Select, ham SELECT'i transaction içinde çalıştırır.
func (t *Tx) Select(ctx context.Context, query string, bindings []Binding) ([]Row, error) {
	if err := t.ensureOpen("select"); err != nil {
		return nil, err
	}
	return t.c.Select(ctx, query, bindings)
}

// Query, ham sorguyu transaction içinde çalıştırır ve satırları fn'e verir.
func (t *Tx) Query(ctx context.Context, query string, bindings []Binding, fn func(*sql.Rows) error) error {
	if err := t.ensureOpen("query"); err != nil {
		return err
	}
	return t.c.Query(ctx, query, bindings, fn)
}

// Savepoint, geri dönülebilecek bir nokta oluşturur.
// Not: Her veritabanı savepoint desteklemez.
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	return t.savepoint(ctx, "savepoint", "SAVEPOINT ", name)
}

// RollbackTo, transaction'ı bitirmeden savepoint'e geri döner.
func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	return t.savepoint(ctx, "rollbackTo", "ROLLBACK TO SAVEPOINT ", name)
}

// ReleaseSavepoint, savepoint'i serbest bırakır.
func (t *Tx) ReleaseSavepoint(ctx context.Context, name string) error {
	return t.savepoint(ctx, "releaseSavepoint", "RELEASE SAVEPOINT ", name)
}

func (t *Tx) savepoint(ctx context.Context, op, verb, name string) error {
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	if err := validation.ValidateName(name); err != nil {
		return newMalformed(op, "", err)
	}
	wrapped, err := t.c.grammar.Wrap(name)
	if err != nil {
		return newMalformed(op, "", err)
	}

	query := verb + wrapped
	start := time.Now()
	_, err = t.tx.ExecContext(ctx, query)
	t.c.log(query, nil, start, err)
	if err != nil {
		return newExecError(op, "", query, nil, err)
	}
	return nil
}

// Raw, alttaki *sql.Tx'e doğrudan erişim sağlar.
// Dikkat: bu yolla yapılan işlemler loglanmaz.
func (t *Tx) Raw() *sql.Tx {
	return t.tx
}
