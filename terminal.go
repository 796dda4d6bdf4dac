package fluentdb

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
)

// ----------------------------------------------------------------------------
//  Terminal metotlar
//
//  Bu dosyadaki metotlar sorguyu derler ve Connector üzerinden çalıştırır.
//  Her metodun context alan bir ...Context biçimi vardır; context almayan biçim
//  context.Background() kullanır.
//
//  Terminal çağrılar Builder durumunu temizlemez; aynı Builder tekrar
//  çalıştırılabilir. First, aggregate'ler ve Paginate türetilmiş bir kopya
//  üzerinde çalışır. Find ise birincil anahtar koşulunu Builder'a ekler.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// ----------------------------------------------------------------------------

// connector, terminal çağrı için Connector'ı döndürür. New ile üretilen Builder'larda hata verir.
func (b *Builder) connector(op string) (*Connector, error) {
	if b.conn == nil {
		return nil, &QueryError{Kind: ErrConnection, Op: op, Table: b.query.Table, Err: ErrNoConnector}
	}
	return b.conn, nil
}

// annotate, Connector'dan gelen hataya tablo adını ekler.
func (b *Builder) annotate(err error) error {
	var qe *QueryError
	if errors.As(err, &qe) && qe.Table == "" {
		qe.Table = b.query.Table
	}
	return err
}

func (b *Builder) projected(columns []string) *Builder {
	if len(columns) == 0 {
		return b
	}
	return b.Clone().Select(columns...)
}

// ----------------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------------

// Get, sorguyu çalıştırır ve satırları Collection olarak döndürür.
// columns verilirse bu çağrı için projeksiyonun yerine geçer.
func (b *Builder) Get(columns ...string) (*Collection, error) {
	return b.GetContext(context.Background(), columns...)
}

// GetContext, Get'in context alan biçimidir.
func (b *Builder) GetContext(ctx context.Context, columns ...string) (*Collection, error) {
	query, bindings, err := b.projected(columns).ToSQL()
	if err != nil {
		return nil, err
	}
	conn, err := b.connector("get")
	if err != nil {
		return nil, err
	}

	rows, err := conn.Select(ctx, query, bindings)
	if err != nil {
		return nil, b.annotate(err)
	}
	return NewCollection(rows), nil
}

// First, ilk satırı döndürür. Eşleşen satır yoksa ErrNoRows döner.
//
//	row, err := conn.Table("users").Where("email", "=", email).First()
//	if errors.Is(err, fluentdb.ErrNoRows) {
//	    // bulunamadı
//	}
func (b *Builder) First(columns ...string) (Row, error) {
	return b.FirstContext(context.Background(), columns...)
}

// FirstContext, First'ün context alan biçimidir.
func (b *Builder) FirstContext(ctx context.Context, columns ...string) (Row, error) {
	q := b.Clone()
	if len(columns) > 0 {
		q.Select(columns...)
	}

	coll, err := q.Limit(1).GetContext(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := coll.First()
	if !ok {
		return nil, ErrNoRows
	}
	return row, nil
}

// Find, birincil anahtara göre tek satır getirir.
// Dikkat: koşul Builder'a eklenir ve sonraki çağrılarda da geçerli kalır.
func (b *Builder) Find(id any, columns ...string) (Row, error) {
	return b.FindContext(context.Background(), id, columns...)
}

// FindContext, Find'ın context alan biçimidir.
func (b *Builder) FindContext(ctx context.Context, id any, columns ...string) (Row, error) {
	return b.Where(b.primaryKey, "=", id).FirstContext(ctx, columns...)
}

// Column, tek kolonun değerlerini satır sırasıyla döndürür.
// Projeksiyon bu çağrı için Select(column) ile değiştirilir; SelectRaw ile
// tanımlanan alias'lar bu yüzden okunamaz. Onlar için Get ve Collection.Pluck kullanın.
func (b *Builder) Column(column string) ([]any, error) {
	return b.ColumnContext(context.Background(), column)
}

// ColumnContext, Column'un context alan biçimidir.
func (b *Builder) ColumnContext(ctx context.Context, column string) ([]any, error) {
	coll, err := b.GetContext(ctx, column)
	if err != nil {
		return nil, err
	}
	return coll.Pluck(column), nil
}

// ColumnMap, key kolonunun değerinden column kolonunun değerine eşleme döndürür.
//
//	names, err := conn.Table("users").ColumnMap("name", "id") // map[id]name
func (b *Builder) ColumnMap(column, key string) (map[any]any, error) {
	return b.ColumnMapContext(context.Background(), column, key)
}

// ColumnMapContext, ColumnMap'in context alan biçimidir.
func (b *Builder) ColumnMapContext(ctx context.Context, column, key string) (map[any]any, error) {
	coll, err := b.GetContext(ctx, column, key)
	if err != nil {
		return nil, err
	}
	return coll.PluckMap(column, key), nil
}

// GetInto, satırları dest slice'ına tarar ([]T veya []*T, `db` etiketli struct'lar).
func (b *Builder) GetInto(dest any) error {
	return b.GetIntoContext(context.Background(), dest)
}

// GetIntoContext, GetInto'nun context alan biçimidir.
func (b *Builder) GetIntoContext(ctx context.Context, dest any) error {
	query, bindings, err := b.ToSQL()
	if err != nil {
		return err
	}
	conn, err := b.connector("getInto")
	if err != nil {
		return err
	}

	return b.annotate(conn.Query(ctx, query, bindings, func(rows *sql.Rows) error {
		return b.scanner.ScanRows(rows, dest)
	}))
}

// FirstInto, ilk satırı dest struct'ına tarar. Satır yoksa ErrNoRows döner.
func (b *Builder) FirstInto(dest any) error {
	return b.FirstIntoContext(context.Background(), dest)
}

// FirstIntoContext, FirstInto'nun context alan biçimidir.
func (b *Builder) FirstIntoContext(ctx context.Context, dest any) error {
	query, bindings, err := b.Clone().Limit(1).ToSQL()
	if err != nil {
		return err
	}
	conn, err := b.connector("firstInto")
	if err != nil {
		return err
	}

	return b.annotate(conn.Query(ctx, query, bindings, func(rows *sql.Rows) error {
		return b.scanner.ScanRow(rows, dest)
	}))
}

// Paginate, toplam kaydı sayar ve istenen sayfayı dest'e tarar. dest nil ise yalnızca
// meta veri hesaplanır. Mevcut LIMIT / OFFSET değerleri bu çağrı için yok sayılır.
//
//	var users []User
//	page, err := conn.Table("users").Order("id").Paginate(2, 20, &users)
func (b *Builder) Paginate(page, perPage int, dest any) (*Pagination, error) {
	return b.PaginateContext(context.Background(), page, perPage, dest)
}

// PaginateContext, Paginate'in context alan biçimidir.
func (b *Builder) PaginateContext(ctx context.Context, page, perPage int, dest any) (*Pagination, error) {
	total, err := b.CountContext(ctx)
	if err != nil {
		return nil, err
	}

	p := NewPagination(page, perPage, total)
	if dest == nil {
		return p, nil
	}
	if err := b.Clone().Limit(p.PerPage).Offset(p.Offset()).GetIntoContext(ctx, dest); err != nil {
		return nil, err
	}
	return p, nil
}

// ----------------------------------------------------------------------------
// Aggregates
// ----------------------------------------------------------------------------

// Count, eşleşen satır sayısını döndürür. column verilmezse COUNT(*) kullanılır.
func (b *Builder) Count(column ...string) (int64, error) {
	return b.CountContext(context.Background(), column...)
}

// CountContext, Count'un context alan biçimidir.
func (b *Builder) CountContext(ctx context.Context, column ...string) (int64, error) {
	col := "*"
	if len(column) > 0 {
		col = column[0]
	}
	var n sql.NullInt64
	if err := b.aggregate(ctx, "COUNT", col, &n); err != nil {
		return 0, err
	}
	return n.Int64, nil
}

// Sum, kolonun toplamını döndürür. Eşleşen satır yoksa 0 döner.
func (b *Builder) Sum(column string) (float64, error) {
	return b.SumContext(context.Background(), column)
}

// SumContext, Sum'ın context alan biçimidir.
func (b *Builder) SumContext(ctx context.Context, column string) (float64, error) {
	return b.floatAggregate(ctx, "SUM", column)
}

// Max, kolonun en büyük değerini döndürür.
func (b *Builder) Max(column string) (float64, error) {
	return b.MaxContext(context.Background(), column)
}

// MaxContext, Max'in context alan biçimidir.
func (b *Builder) MaxContext(ctx context.Context, column string) (float64, error) {
	return b.floatAggregate(ctx, "MAX", column)
}

// Min, kolonun en küçük değerini döndürür.
func (b *Builder) Min(column string) (float64, error) {
	return b.MinContext(context.Background(), column)
}

// MinContext, Min'in context alan biçimidir.
func (b *Builder) MinContext(ctx context.Context, column string) (float64, error) {
	return b.floatAggregate(ctx, "MIN", column)
}

// Avg, kolonun ortalamasını döndürür.
func (b *Builder) Avg(column string) (float64, error) {
	return b.AvgContext(context.Background(), column)
}

// AvgContext, Avg'nin context alan biçimidir.
func (b *Builder) AvgContext(ctx context.Context, column string) (float64, error) {
	return b.floatAggregate(ctx, "AVG", column)
}

func (b *Builder) floatAggregate(ctx context.Context, fn, column string) (float64, error) {
	var f sql.NullFloat64
	if err := b.aggregate(ctx, fn, column, &f); err != nil {
		return 0, err
	}
	return f.Float64, nil
}

// aggregate, FN(column) sorgusunu çalıştırır ve tek hücreyi dest'e tarar.
// GROUP BY varsa agregat gruplanmış sonuç kümesi üzerinden hesaplanır.
func (b *Builder) aggregate(ctx context.Context, fn, column string, dest any) error {
	query, bindings, err := b.toAggregateSQL(fn, column)
	if err != nil {
		return err
	}
	conn, err := b.connector(fn)
	if err != nil {
		return err
	}

	return b.annotate(conn.Query(ctx, query, bindings, func(rows *sql.Rows) error {
		if !rows.Next() {
			return rows.Err()
		}
		return rows.Scan(dest)
	}))
}

// Exists, en az bir satır eşleşiyorsa true döner.
func (b *Builder) Exists() (bool, error) {
	return b.ExistsContext(context.Background())
}

// ExistsContext, Exists'in context alan biçimidir.
func (b *Builder) ExistsContext(ctx context.Context) (bool, error) {
	query, bindings, err := b.toExistsSQL()
	if err != nil {
		return false, err
	}
	conn, err := b.connector("exists")
	if err != nil {
		return false, err
	}

	var exists int64
	err = conn.Query(ctx, query, bindings, func(rows *sql.Rows) error {
		if !rows.Next() {
			return rows.Err()
		}
		return rows.Scan(&exists)
	})
	if err != nil {
		return false, b.annotate(err)
	}
	return exists != 0, nil
}

// DoesntExist, Exists'in tersidir.
func (b *Builder) DoesntExist() (bool, error) {
	return b.DoesntExistContext(context.Background())
}

// DoesntExistContext, DoesntExist'in context alan biçimidir.
func (b *Builder) DoesntExistContext(ctx context.Context) (bool, error) {
	exists, err := b.ExistsContext(ctx)
	return !exists && err == nil, err
}

// ----------------------------------------------------------------------------
// Writes
// ----------------------------------------------------------------------------

// Insert, tek satır ekler ve son eklenen kimliği döndürür.
// row bir Record, map[string]any veya `db` etiketli bir struct olabilir.
//
//	id, err := conn.Table("users").Insert(fluentdb.Record{}.Set("name", "Ann").Set("age", 30))
func (b *Builder) Insert(row any) (int64, error) {
	return b.InsertContext(context.Background(), row)
}

// InsertContext, Insert'ün context alan biçimidir.
func (b *Builder) InsertContext(ctx context.Context, row any) (int64, error) {
	query, bindings, err := b.ToInsertSQL(row)
	if err != nil {
		return 0, err
	}
	conn, err := b.connector("insert")
	if err != nil {
		return 0, err
	}

	res, err := conn.Exec(ctx, query, bindings)
	if err != nil {
		return 0, b.annotate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newExecError("insert", b.query.Table, query, bindings, err)
	}
	return id, nil
}

// InsertAll, her satır için ayrı bir INSERT çalıştırır ve kimlikleri sırayla döndürür.
// Örtük bir transaction açılmaz; hata durumunda o ana kadar eklenen kimlikler hatayla
// birlikte döner. Atomiklik gerekiyorsa çağrıyı Transaction içine alın.
//
// rows; []Record, []map[string]any veya struct slice'ı olabilir.
func (b *Builder) InsertAll(rows any) ([]int64, error) {
	return b.InsertAllContext(context.Background(), rows)
}

// InsertAllContext, InsertAll'ın context alan biçimidir.
func (b *Builder) InsertAllContext(ctx context.Context, rows any) ([]int64, error) {
	if b.err != nil {
		return nil, b.err
	}

	items, err := rowItems(rows)
	if err != nil {
		return nil, newMalformed("insertAll", b.query.Table, err)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := b.InsertContext(ctx, item)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// rowItems, InsertAll girdisini satırlara ayırır. Tek bir Record kabul edilmez.
func rowItems(rows any) ([]any, error) {
	switch r := rows.(type) {
	case nil:
		return nil, nil
	case Record:
		return nil, errors.New("InsertAll expects a slice of rows, got a single Record")
	case []Record:
		items := make([]any, len(r))
		for i := range r {
			items[i] = r[i]
		}
		return items, nil
	case []map[string]any:
		items := make([]any, len(r))
		for i := range r {
			items[i] = r[i]
		}
		return items, nil
	}

	rv := reflect.ValueOf(rows)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, ErrNotASlice
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// Update, WHERE koşullarına uyan satırları günceller ve etkilenen satır sayısını döndürür.
func (b *Builder) Update(row any) (int64, error) {
	return b.UpdateContext(context.Background(), row)
}

// UpdateContext, Update'in context alan biçimidir.
func (b *Builder) UpdateContext(ctx context.Context, row any) (int64, error) {
	query, bindings, err := b.ToUpdateSQL(row)
	if err != nil {
		return 0, err
	}
	return b.affected(ctx, "update", query, bindings)
}

// Delete, WHERE koşullarına uyan satırları siler ve etkilenen satır sayısını döndürür.
// Koşulsuz Delete tablodaki tüm satırları siler.
func (b *Builder) Delete() (int64, error) {
	return b.DeleteContext(context.Background())
}

// DeleteContext, Delete'in context alan biçimidir.
func (b *Builder) DeleteContext(ctx context.Context) (int64, error) {
	query, bindings, err := b.ToDeleteSQL()
	if err != nil {
		return 0, err
	}
	return b.affected(ctx, "delete", query, bindings)
}

func (b *Builder) affected(ctx context.Context, op, query string, bindings []Binding) (int64, error) {
	conn, err := b.connector(op)
	if err != nil {
		return 0, err
	}

	res, err := conn.Exec(ctx, query, bindings)
	if err != nil {
		return 0, b.annotate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newExecError(op, b.query.Table, query, bindings, err)
	}
	return n, nil
}

// ----------------------------------------------------------------------------
// Transactions
// ----------------------------------------------------------------------------

// Transaction, work'ü aynı Connector üzerinde açılan bir transaction içinde çalıştırır.
// work'e verilen Builder aynı tablo, alias ve birincil anahtarla başlar; koşulları taşımaz.
//
//	err := conn.Table("users").Transaction(func(q *fluentdb.Builder) error {
//	    if _, err := q.Insert(a); err != nil {
//	        return err
//	    }
//	    _, err := q.Insert(b)
//	    return err
//	})
func (b *Builder) Transaction(work func(*Builder) error) error {
	return b.TransactionContext(context.Background(), work)
}

// TransactionContext, Transaction'ın context alan biçimidir.
func (b *Builder) TransactionContext(ctx context.Context, work func(*Builder) error) error {
	conn, err := b.connector("transaction")
	if err != nil {
		return err
	}

	return conn.Transaction(ctx, func(tx *Tx) error {
		q := tx.Builder()
		q.query.Table = b.query.Table
		q.query.Alias = b.query.Alias
		q.primaryKey = b.primaryKey
		return work(q)
	})
}
