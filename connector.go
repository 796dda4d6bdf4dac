package fluentdb

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/biyonik/go-fluent-db/dialect"
)

/*
=======================================================================================================================
  FLUENTDB – Connector

  Connector, tek bir canlı veritabanı bağlantısının sahibidir. *sql.DB havuzu tek bağlantıyla
  sınırlanır ve ömür boyu aynı *sql.Conn tutulur; böylece SQLite bellek içi veritabanları ve
  oturum değişkenleri tüm sorgular boyunca korunur.

  Bir transaction açıkken Connector üzerinden giden her ifade o transaction içinde çalışır.
  Builder bu yüzden transaction'dan habersizdir; yönlendirmeyi Connector yapar.

  Connector concurrent-safe değildir. Mutex yalnızca transaction durumunun bütünlüğünü korur.

  @author    Ahmet ALTUN
  @github    github.com/biyonik
  @linkedin  linkedin.com/in/biyonik
  @email     ahmet.altun60@gmail.com
=======================================================================================================================
*/

// QueryExecutor, hem *sql.Conn hem *sql.Tx tarafından sağlanan ortak yürütme fonksiyonlarıdır.
type QueryExecutor interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ QueryExecutor = (*sql.Conn)(nil)
	_ QueryExecutor = (*sql.Tx)(nil)
)

// Connector, tek bir bağlantının üzerinde grammar, scanner, logging ve prefix ayarlarını taşır.
type Connector struct {
	db     *sql.DB
	conn   *sql.Conn
	ownsDB bool

	grammar dialect.Grammar
	scanner Scanner
	logger  Logger
	debug   bool
	prefix  string

	mu     sync.Mutex
	tx     *Tx
	state  TxState
	closed bool
}

// Open, Config'ten DSN üretir, havuzu açar, tek bağlantıyı ayırır ve ping atar.
// Oluşturulan *sql.DB Connector'a aittir ve Close ile kapatılır.
//
// Örnek:
//
//	conn, err := fluentdb.Open(ctx, &fluentdb.Config{Driver: "sqlite3", Database: ":memory:"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Connector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	dsn, err := cfg.FormatDSN()
	if err != nil {
		return nil, newConnError("dsn", err)
	}

	db, err := sql.Open(cfg.DriverName(), dsn)
	if err != nil {
		return nil, newConnError("open", err)
	}

	// Config'ten gelen ayarlar önce uygulanır; açıkça verilen Option'lar onları ezer.
	var base []Option
	if cfg.Prefix != "" {
		base = append(base, WithTablePrefix(cfg.Prefix))
	}
	if cfg.Debug {
		base = append(base, WithDebug(true))
	}
	opts = append(base, opts...)

	c, err := NewConnector(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.ownsDB = true
	return c, nil
}

// NewConnector, mevcut bir *sql.DB üzerinde Connector kurar. Havuz tek bağlantıyla sınırlanır.
// db çağırana aittir; Close yalnızca ayrılan bağlantıyı bırakır.
func NewConnector(ctx context.Context, db *sql.DB, opts ...Option) (*Connector, error) {
	if db == nil {
		return nil, newConnError("connect", errors.New("nil *sql.DB"))
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, newConnError("connect", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, newConnError("ping", err)
	}

	c := &Connector{db: db, conn: conn}
	applyOptions(c, opts)
	return c, nil
}

// Grammar, aktif grameri döndürür.
func (c *Connector) Grammar() dialect.Grammar {
	return c.grammar
}

// Scanner, satır–struct tarayıcısını döndürür.
func (c *Connector) Scanner() Scanner {
	return c.scanner
}

// TablePrefix, tablo önekini döndürür.
func (c *Connector) TablePrefix() string {
	return c.prefix
}

// Table, verilen tablo üzerinde yeni bir Builder başlatır.
func (c *Connector) Table(name string) *Builder {
	return newBuilder(c).From(name)
}

// Builder, tablo atanmamış yeni bir Builder döndürür.
func (c *Connector) Builder() *Builder {
	return newBuilder(c)
}

// Ping, bağlantının canlı olduğunu doğrular.
func (c *Connector) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return newConnError("ping", ErrConnectionClosed)
	}
	if err := c.conn.PingContext(ctx); err != nil {
		return newConnError("ping", err)
	}
	return nil
}

// executor, transaction açıksa onu, değilse bağlantıyı döndürür.
func (c *Connector) executor() (QueryExecutor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, newConnError("execute", ErrConnectionClosed)
	}
	if c.state == StateInTransaction {
		return c.tx.tx, nil
	}
	return c.conn, nil
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Statement, hazırlanmış fakat henüz çalıştırılmamış bir ifadedir.
// Kullanım sonunda Close çağrılmalıdır.
type Statement struct {
	c        *Connector
	stmt     *sql.Stmt
	query    string
	bindings []Binding
}

// Statement, sorguyu hazırlar ve binding'leri ifadeye bağlar.
func (c *Connector) Statement(ctx context.Context, query string, bindings []Binding) (*Statement, error) {
	exec, err := c.executor()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stmt, err := exec.PrepareContext(ctx, query)
	if err != nil {
		c.log(query, bindings, start, err)
		return nil, newExecError("prepare", "", query, bindings, err)
	}

	return &Statement{c: c, stmt: stmt, query: query, bindings: bindings}, nil
}

// SQL, ifadenin metnini döndürür.
func (s *Statement) SQL() string {
	return s.query
}

// Bindings, ifadeye bağlı değerleri döndürür.
func (s *Statement) Bindings() []Binding {
	return s.bindings
}

// Query, ifadeyi çalıştırır ve satırları fn'e verir. Satırlar fn döndükten sonra kapatılır.
func (s *Statement) Query(ctx context.Context, fn func(*sql.Rows) error) error {
	start := time.Now()
	rows, err := s.stmt.QueryContext(ctx, bindingArgs(s.bindings)...)
	if err != nil {
		s.c.log(s.query, s.bindings, start, err)
		return newExecError("query", "", s.query, s.bindings, err)
	}
	defer rows.Close()

	if err := fn(rows); err != nil {
		s.c.log(s.query, s.bindings, start, err)
		if isScanError(err) {
			return err
		}
		return newExecError("query", "", s.query, s.bindings, err)
	}
	if err := rows.Err(); err != nil {
		s.c.log(s.query, s.bindings, start, err)
		return newExecError("query", "", s.query, s.bindings, err)
	}

	s.c.log(s.query, s.bindings, start, nil)
	return nil
}

// Exec, satır döndürmeyen ifadeyi çalıştırır.
func (s *Statement) Exec(ctx context.Context) (sql.Result, error) {
	start := time.Now()
	res, err := s.stmt.ExecContext(ctx, bindingArgs(s.bindings)...)
	s.c.log(s.query, s.bindings, start, err)
	if err != nil {
		return nil, newExecError("exec", "", s.query, s.bindings, err)
	}
	return res, nil
}

// Close, hazırlanmış ifadeyi serbest bırakır.
func (s *Statement) Close() error {
	return s.stmt.Close()
}

// Query, ifadeyi hazırlar, çalıştırır ve satırları fn'e verir.
func (c *Connector) Query(ctx context.Context, query string, bindings []Binding, fn func(*sql.Rows) error) error {
	st, err := c.Statement(ctx, query, bindings)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Query(ctx, fn)
}

// Select, sorguyu çalıştırır ve tüm satırları kolon adı–değer eşlemesi olarak döndürür.
func (c *Connector) Select(ctx context.Context, query string, bindings []Binding) ([]Row, error) {
	var out []Row
	err := c.Query(ctx, query, bindings, func(rows *sql.Rows) error {
		var err error
		out, err = scanRowMaps(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exec, ifadeyi hazırlar ve çalıştırır.
func (c *Connector) Exec(ctx context.Context, query string, bindings []Binding) (sql.Result, error) {
	st, err := c.Statement(ctx, query, bindings)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Exec(ctx)
}

// Close, açık transaction'ı geri alır, bağlantıyı ve (Open ile açıldıysa) havuzu kapatır.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	if c.state == StateInTransaction {
		if err := c.tx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		c.tx.closed = true
		c.state = StateRolledBack
	}
	if err := c.conn.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.ownsDB {
		if err := c.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return newConnError("close", errors.Join(errs...))
	}
	return nil
}

func (c *Connector) log(query string, bindings []Binding, start time.Time, err error) {
	if c.debug {
		c.logger.Log(query, bindingArgs(bindings), time.Since(start), err)
	}
}

// scanRowMaps, satırları Row'lara çevirir. []byte değerler string olur.
func scanRowMaps(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, nil
}

// isScanError, Scanner'ın hedef doğrulama hatalarını ayırt eder; bunlar sürücü hatası değildir.
func isScanError(err error) bool {
	return errors.Is(err, ErrNoRows) ||
		errors.Is(err, ErrNotAPointer) ||
		errors.Is(err, ErrNotAStruct) ||
		errors.Is(err, ErrNotASlice)
}
