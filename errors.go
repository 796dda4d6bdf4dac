package fluentdb

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/biyonik/go-fluent-db/dialect"
)

// Error kinds. Every error returned by this package, except the ErrNoRows
// not-found signal, matches exactly one of these with errors.Is.
var (
	// ErrMalformedQuery is returned when the query state cannot be rendered.
	ErrMalformedQuery = errors.New("fluentdb: malformed query")

	// ErrConnection is returned when the connection cannot be opened or used.
	ErrConnection = errors.New("fluentdb: connection error")

	// ErrBindingType is returned when a value cannot be bound to a placeholder.
	ErrBindingType = errors.New("fluentdb: unsupported binding type")

	// ErrExecution is returned when the database rejects a statement.
	ErrExecution = errors.New("fluentdb: execution error")

	// ErrTransaction is returned for transaction state and commit failures.
	ErrTransaction = errors.New("fluentdb: transaction error")
)

// Specific causes, wrapped by the kinds above.
var (
	// ErrNoTable is returned when a query is rendered without a source table.
	ErrNoTable = errors.New("fluentdb: no table specified")

	// ErrNoColumns is returned when an insert/update has no columns.
	ErrNoColumns = errors.New("fluentdb: no columns specified")

	// ErrNoRows is returned by First, Find and FirstInto when nothing matched.
	ErrNoRows = errors.New("fluentdb: no rows in result set")

	// ErrTransactionActive is returned by Begin while a transaction is open.
	ErrTransactionActive = errors.New("fluentdb: transaction already active")

	// ErrNoTransaction is returned by Commit and Rollback when no transaction is open.
	ErrNoTransaction = errors.New("fluentdb: no active transaction")

	// ErrNoConnector is returned when a terminal call is made on a render-only builder.
	ErrNoConnector = errors.New("fluentdb: builder has no connector")

	// ErrConnectionClosed is returned when the connector was already closed.
	ErrConnectionClosed = errors.New("fluentdb: connection closed")

	// ErrNotAPointer, ErrNotAStruct and ErrNotASlice describe invalid scan destinations.
	ErrNotAPointer = errors.New("fluentdb: destination must be a non-nil pointer")
	ErrNotAStruct  = errors.New("fluentdb: destination must point to a struct")
	ErrNotASlice   = errors.New("fluentdb: destination must point to a slice")
)

// QueryError wraps an error with the query it belongs to.
// Kind is one of ErrMalformedQuery, ErrConnection or ErrExecution.
type QueryError struct {
	Kind     error
	Op       string
	Table    string
	SQL      string
	Bindings []any
	// Code is the driver error number (MySQL) or extended result code (SQLite), 0 if unknown.
	Code int
	Err  error
}

func (e *QueryError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Op != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Op)
	}
	if e.Table != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Table)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error kind.
func (e *QueryError) Is(target error) bool {
	return target == e.Kind
}

// BindingError is returned when a value has no wire type.
type BindingError struct {
	Value any
	// Reason names the offending type or constraint.
	Reason string
}

func (e *BindingError) Error() string {
	return "fluentdb: cannot bind value: " + e.Reason
}

func (e *BindingError) Is(target error) bool {
	return target == ErrBindingType
}

// TxError reports a failed transaction step. When the step triggered a rollback
// that also failed, RollbackErr holds that failure.
type TxError struct {
	Op          string
	Err         error
	RollbackErr error
}

func (e *TxError) Error() string {
	msg := "fluentdb: transaction " + e.Op + ": " + e.Err.Error()
	if e.RollbackErr != nil {
		msg += " (rollback: " + e.RollbackErr.Error() + ")"
	}
	return msg
}

func (e *TxError) Unwrap() []error {
	if e.RollbackErr == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.RollbackErr}
}

func (e *TxError) Is(target error) bool {
	return target == ErrTransaction
}

// newMalformed classifies a render or build-time error as ErrMalformedQuery.
// Dialect sentinels are mapped onto the package's own.
func newMalformed(op, table string, err error) error {
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	var be *BindingError
	if errors.As(err, &be) {
		return err
	}
	switch err {
	case dialect.ErrNoTable:
		err = ErrNoTable
	case dialect.ErrNoColumns:
		err = ErrNoColumns
	}
	return &QueryError{Kind: ErrMalformedQuery, Op: op, Table: table, Err: err}
}

// newExecError wraps a driver failure as ErrExecution, lifting the driver code.
func newExecError(op, table, query string, bindings []Binding, err error) error {
	return &QueryError{
		Kind:     ErrExecution,
		Op:       op,
		Table:    table,
		SQL:      query,
		Bindings: bindingArgs(bindings),
		Code:     driverCode(err),
		Err:      err,
	}
}

// newConnError wraps a connection failure as ErrConnection.
func newConnError(op string, err error) error {
	return &QueryError{Kind: ErrConnection, Op: op, Code: driverCode(err), Err: err}
}

// driverCode extracts the numeric error code from the known drivers.
func driverCode(err error) int {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return int(myErr.Number)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return int(liteErr.ExtendedCode)
	}
	return 0
}
