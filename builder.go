package fluentdb

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/biyonik/go-fluent-db/dialect"
	"github.com/biyonik/go-fluent-db/internal/validation"
)

// DefaultPrimaryKey, Find tarafından kullanılan varsayılan anahtar kolondur.
const DefaultPrimaryKey = "id"

// JOIN türleri.
const (
	JoinInner = dialect.JoinInner
	JoinLeft  = dialect.JoinLeft
	JoinRight = dialect.JoinRight
	JoinCross = dialect.JoinCross
)

// Builder, SQL sorgularını akıcı bir arayüz (fluent interface) ile oluşturmak için kullanılan ana yapıdır.
//
// Zincirleme çağrılar aynı Builder'ı değiştirir ve geri döndürür; hiçbir çağrı terminal bir
// metot (Get, First, Count, Insert ...) çağrılana kadar veritabanına gitmez. Her placeholder
// üreten çağrı, aynı çağrıda eşit sayıda Binding ekler. Binding'ler cümle bazında ayrı
// tutulur ve Grammar'ın cümleleri yazdığı sırayla birleştirilir; böylece Having, Where'den
// önce çağrılsa bile N. "?" her zaman N. binding'e karşılık gelir.
//
// Builder örnekleri concurrent-safe değildir; paralel kullanım için Clone() ile çoğaltın.
//
// Genel kullanım örneği:
//
//	users, err := conn.Table("users").
//	    Select("id", "name", "email").
//	    Where("status", "=", "active").
//	    Order("created_at", "desc").
//	    Limit(10).
//	    Get()
//
// Oluşturma sırasında yapılan hatalar (desteklenmeyen binding tipi, geçersiz argüman)
// Builder üzerinde biriktirilir ve bir sonraki terminal çağrıda veya ToSQL'de döndürülür.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
type Builder struct {
	conn    *Connector
	grammar dialect.Grammar
	scanner Scanner
	prefix  string

	query      dialect.Query
	joins      []*Join
	primaryKey string

	// Binding buckets, concatenated in clause order.
	selectBindings []Binding
	whereBindings  []Binding
	havingBindings []Binding

	// Accumulated error
	err error
}

// newBuilder, Connector'ın grammar, scanner ve prefix ayarlarını devralan boş bir Builder oluşturur.
func newBuilder(c *Connector) *Builder {
	return &Builder{
		conn:       c,
		grammar:    c.grammar,
		scanner:    c.scanner,
		prefix:     c.prefix,
		primaryKey: DefaultPrimaryKey,
	}
}

// child, iç içe koşullar için aynı grammar'ı kullanan bağlantısız bir Builder döndürür.
func (b *Builder) child() *Builder {
	return &Builder{grammar: b.grammar, scanner: b.scanner, prefix: b.prefix, primaryKey: b.primaryKey}
}

// fail, ilk hatayı saklar; sonraki hatalar yok sayılır.
func (b *Builder) fail(op string, err error) {
	if b.err == nil {
		b.err = newMalformed(op, b.query.Table, err)
	}
}

func (b *Builder) prefixed(table string) string {
	if table == "" {
		return ""
	}
	return b.prefix + table
}

// ----------------------------------------------------------------------------
// Source
// ----------------------------------------------------------------------------

// From, sorgunun kaynak tablosunu ve isteğe bağlı alias'ını ayarlar.
// Boş tablo adı render sırasında ErrNoTable ile reddedilir.
func (b *Builder) From(table string, alias ...string) *Builder {
	b.query.Table = b.prefixed(table)
	b.query.Alias = ""
	switch len(alias) {
	case 0:
	case 1:
		b.query.Alias = alias[0]
	default:
		b.fail("from", errors.New("at most one alias is allowed"))
	}
	return b
}

// Table, From(name) ile aynıdır.
func (b *Builder) Table(name string) *Builder {
	return b.From(name)
}

// TableAs, tablo adı ve aliasını ayarlar.
func (b *Builder) TableAs(name, alias string) *Builder {
	return b.From(name, alias)
}

// PrimaryKey, Find tarafından kullanılan anahtar kolonu ayarlar.
func (b *Builder) PrimaryKey(column string) *Builder {
	b.primaryKey = column
	return b
}

// Model, birincil anahtarı bir struct'ın `db:"...,pk"` etiketinden alır.
// Etiket bulunamazsa mevcut anahtar korunur.
//
//	conn.Table("users").Model(User{}).Find(7) // WHERE `user_id` = ?
func (b *Builder) Model(model any) *Builder {
	keyer, ok := b.scanner.(interface{ PrimaryKey(any) string })
	if !ok {
		keyer = defaultScanner
	}
	if pk := keyer.PrimaryKey(model); pk != "" {
		b.primaryKey = pk
	}
	return b
}

// ----------------------------------------------------------------------------
// Projection
// ----------------------------------------------------------------------------

// Select, seçilecek kolonları değiştirir. Argümansız çağrı "*" anlamına gelir.
// Daha önce SelectRaw ile eklenen ifadeler ve binding'leri de silinir.
func (b *Builder) Select(columns ...string) *Builder {
	b.query.Columns = lo.Map(columns, func(c string, _ int) dialect.Column {
		return dialect.Column{Name: c}
	})
	b.selectBindings = nil
	return b
}

// AddSelect, mevcut projeksiyona kolon ekler.
func (b *Builder) AddSelect(columns ...string) *Builder {
	for _, c := range columns {
		b.query.Columns = append(b.query.Columns, dialect.Column{Name: c})
	}
	return b
}

// SelectRaw, ham bir select ifadesi ekler. İfadedeki her "?" için bir binding verilmelidir.
// Dikkat: ifade tırnaklanmaz; yalnızca güvenilir girdi kullanın.
func (b *Builder) SelectRaw(expr string, bindings ...any) *Builder {
	bs, ok := b.rawBindings("selectRaw", expr, bindings)
	if !ok {
		return b
	}
	b.query.Columns = append(b.query.Columns, dialect.Column{Name: expr, Raw: true})
	b.selectBindings = append(b.selectBindings, bs...)
	return b
}

// Distinct, sorguyu DISTINCT olarak işaretler.
func (b *Builder) Distinct() *Builder {
	b.query.Distinct = true
	return b
}

// ----------------------------------------------------------------------------
// WHERE
// ----------------------------------------------------------------------------

// Where, bir koşul ekler.
//
// Tek değerle "column op ?" yazılır ve bir binding eklenir. Değer verilmezse
// "column op" literal olarak yazılır; bu biçim yalnızca IS NULL ve IS NOT NULL için geçerlidir.
//
//	b.Where("age", ">", 18)        // `age` > ?
//	b.Where("deleted_at", "IS NULL") // `deleted_at` IS NULL
func (b *Builder) Where(column, operator string, value ...any) *Builder {
	return b.where("where", dialect.WhereBooleanAnd, column, operator, value)
}

// OrWhere, OR ile bağlanan bir koşul ekler.
func (b *Builder) OrWhere(column, operator string, value ...any) *Builder {
	return b.where("orWhere", dialect.WhereBooleanOr, column, operator, value)
}

func (b *Builder) where(op string, boolean dialect.WhereBoolean, column, operator string, values []any) *Builder {
	clause, binding, ok := b.predicate(op, boolean, column, operator, values)
	if !ok {
		return b
	}
	b.query.Wheres = append(b.query.Wheres, clause)
	b.whereBindings = append(b.whereBindings, binding...)
	return b
}

// predicate, Where / Having / Join.Where için ortak koşul kurucusudur.
func (b *Builder) predicate(op string, boolean dialect.WhereBoolean, column, operator string, values []any) (dialect.WhereClause, []Binding, bool) {
	switch len(values) {
	case 0:
		if !validation.IsLiteralOperator(operator) {
			b.fail(op, errors.New("operator '"+operator+"' requires a value"))
			return dialect.WhereClause{}, nil, false
		}
		return dialect.WhereClause{
			Type:     dialect.WhereTypeLiteral,
			Boolean:  boolean,
			Column:   column,
			Operator: operator,
		}, nil, true
	case 1:
		binding, err := NewBinding(values[0])
		if err != nil {
			b.fail(op, err)
			return dialect.WhereClause{}, nil, false
		}
		return dialect.WhereClause{
			Type:     dialect.WhereTypeBasic,
			Boolean:  boolean,
			Column:   column,
			Operator: operator,
		}, []Binding{binding}, true
	}
	b.fail(op, errors.New("at most one value is allowed"))
	return dialect.WhereClause{}, nil, false
}

// WhereNull, `column` IS NULL koşulu ekler.
func (b *Builder) WhereNull(column string) *Builder {
	return b.Where(column, "IS NULL")
}

// WhereNotNull, `column` IS NOT NULL koşulu ekler.
func (b *Builder) WhereNotNull(column string) *Builder {
	return b.Where(column, "IS NOT NULL")
}

// OrWhereNull, OR `column` IS NULL koşulu ekler.
func (b *Builder) OrWhereNull(column string) *Builder {
	return b.OrWhere(column, "IS NULL")
}

// OrWhereNotNull, OR `column` IS NOT NULL koşulu ekler.
func (b *Builder) OrWhereNotNull(column string) *Builder {
	return b.OrWhere(column, "IS NOT NULL")
}

// WhereLike, `column` LIKE ? koşulu ekler.
func (b *Builder) WhereLike(column string, pattern any) *Builder {
	return b.Where(column, "LIKE", pattern)
}

// WhereNotLike, `column` NOT LIKE ? koşulu ekler.
func (b *Builder) WhereNotLike(column string, pattern any) *Builder {
	return b.Where(column, "NOT LIKE", pattern)
}

// WhereIn, `column` IN (?, ...) koşulu ekler. values bir slice veya dizi olmalıdır.
// Boş küme her zaman yanlış olan "0 = 1" koşulunu üretir ve binding eklemez.
//
//	b.WhereIn("id", []int{1, 2, 3}) // `id` IN (?, ?, ?)
func (b *Builder) WhereIn(column string, values any) *Builder {
	return b.whereIn("whereIn", dialect.WhereBooleanAnd, dialect.WhereTypeIn, column, values)
}

// OrWhereIn, OR `column` IN (?, ...) koşulu ekler.
func (b *Builder) OrWhereIn(column string, values any) *Builder {
	return b.whereIn("orWhereIn", dialect.WhereBooleanOr, dialect.WhereTypeIn, column, values)
}

// WhereNotIn, `column` NOT IN (?, ...) koşulu ekler.
// Boş küme her zaman doğru olan "1 = 1" koşulunu üretir.
func (b *Builder) WhereNotIn(column string, values any) *Builder {
	return b.whereIn("whereNotIn", dialect.WhereBooleanAnd, dialect.WhereTypeNotIn, column, values)
}

func (b *Builder) whereIn(op string, boolean dialect.WhereBoolean, typ dialect.WhereType, column string, values any) *Builder {
	bs, err := expandValues(values)
	if err != nil {
		b.fail(op, err)
		return b
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    typ,
		Boolean: boolean,
		Column:  column,
		Count:   len(bs),
	})
	b.whereBindings = append(b.whereBindings, bs...)
	return b
}

// expandValues, bir slice veya diziyi binding listesine çevirir. nil boş küme sayılır.
func expandValues(values any) ([]Binding, error) {
	if values == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &BindingError{Value: values, Reason: "IN expects a slice, got " + rv.Type().String()}
	}
	if _, isBytes := values.([]byte); isBytes {
		return nil, &BindingError{Value: values, Reason: "IN expects a slice of values, got []byte"}
	}
	out := make([]Binding, rv.Len())
	for i := range out {
		bind, err := NewBinding(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = bind
	}
	return out, nil
}

// WhereBetween, `column` BETWEEN ? AND ? koşulu ekler.
func (b *Builder) WhereBetween(column string, start, end any) *Builder {
	return b.whereBetween("whereBetween", dialect.WhereTypeBetween, column, start, end)
}

// WhereNotBetween, `column` NOT BETWEEN ? AND ? koşulu ekler.
func (b *Builder) WhereNotBetween(column string, start, end any) *Builder {
	return b.whereBetween("whereNotBetween", dialect.WhereTypeNotBetween, column, start, end)
}

func (b *Builder) whereBetween(op string, typ dialect.WhereType, column string, start, end any) *Builder {
	bs, err := NewBindings(start, end)
	if err != nil {
		b.fail(op, err)
		return b
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    typ,
		Boolean: dialect.WhereBooleanAnd,
		Column:  column,
		Count:   2,
	})
	b.whereBindings = append(b.whereBindings, bs...)
	return b
}

// WhereRaw, ham SQL koşulu ekler. İfadedeki her "?" için bir binding verilmelidir.
// Named ile oluşturulan isimli binding'ler sayıma katılmaz.
func (b *Builder) WhereRaw(sqlExpr string, bindings ...any) *Builder {
	return b.whereRaw("whereRaw", dialect.WhereBooleanAnd, sqlExpr, bindings)
}

// OrWhereRaw, OR ile bağlanan ham SQL koşulu ekler.
func (b *Builder) OrWhereRaw(sqlExpr string, bindings ...any) *Builder {
	return b.whereRaw("orWhereRaw", dialect.WhereBooleanOr, sqlExpr, bindings)
}

func (b *Builder) whereRaw(op string, boolean dialect.WhereBoolean, sqlExpr string, bindings []any) *Builder {
	bs, ok := b.rawBindings(op, sqlExpr, bindings)
	if !ok {
		return b
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    dialect.WhereTypeRaw,
		Boolean: boolean,
		Raw:     sqlExpr,
	})
	b.whereBindings = append(b.whereBindings, bs...)
	return b
}

// rawBindings, ham ifadenin "?" sayısının konumsal binding sayısına eşit olduğunu doğrular.
func (b *Builder) rawBindings(op, expr string, values []any) ([]Binding, bool) {
	if strings.TrimSpace(expr) == "" {
		b.fail(op, errors.New("raw expression cannot be empty"))
		return nil, false
	}
	bs, err := NewBindings(values...)
	if err != nil {
		b.fail(op, err)
		return nil, false
	}
	positional := len(lo.Filter(bs, func(x Binding, _ int) bool { return x.Name == "" }))
	if want := strings.Count(expr, "?"); want != positional {
		b.fail(op, errors.New("raw expression has "+strconv.Itoa(want)+" placeholders but "+strconv.Itoa(positional)+" bindings"))
		return nil, false
	}
	return bs, true
}

// WhereNested, parantez içinde gruplanmış koşullar ekler.
// fn'e verilen Builder yalnızca WHERE koşulları kabul eder; JOIN, GROUP BY, HAVING,
// ORDER BY, LIMIT veya projeksiyon eklenirse Builder hata biriktirir.
//
//	b.Where("active", "=", true).WhereNested(func(q *fluentdb.Builder) {
//	    q.Where("role", "=", "admin").OrWhere("role", "=", "editor")
//	})
//	// `active` = ? AND (`role` = ? OR `role` = ?)
func (b *Builder) WhereNested(fn func(*Builder)) *Builder {
	return b.whereNested(dialect.WhereBooleanAnd, fn)
}

// OrWhereNested, OR ile bağlanan parantezli koşul grubu ekler.
func (b *Builder) OrWhereNested(fn func(*Builder)) *Builder {
	return b.whereNested(dialect.WhereBooleanOr, fn)
}

func (b *Builder) whereNested(boolean dialect.WhereBoolean, fn func(*Builder)) *Builder {
	nested := b.child()
	fn(nested)
	if nested.err != nil {
		if b.err == nil {
			b.err = nested.err
		}
		return b
	}
	if nested.hasNonWhereState() {
		b.fail("whereNested", errors.New("nested conditions accept only where clauses"))
		return b
	}
	b.query.Wheres = append(b.query.Wheres, dialect.WhereClause{
		Type:    dialect.WhereTypeNested,
		Boolean: boolean,
		Nested:  nested.query.Wheres,
	})
	b.whereBindings = append(b.whereBindings, nested.whereBindings...)
	return b
}

// hasNonWhereState, iç içe Builder'da WHERE dışında bir cümle biriktiyse true döner.
func (b *Builder) hasNonWhereState() bool {
	q := b.query
	return q.Table != "" || len(q.Columns) > 0 || q.Distinct || len(b.joins) > 0 ||
		len(q.Groups) > 0 || len(q.Havings) > 0 || len(q.Orders) > 0 ||
		q.Limit != nil || q.Offset != nil
}

// ----------------------------------------------------------------------------
// JOIN
// ----------------------------------------------------------------------------

// Join, yeni bir JOIN parçası ekler ve onu döndürür. kind verilmezse INNER kullanılır.
//
//	conn.Table("users").TableAs("users", "u").
//	    Join("posts", "p").On("p.user_id", "=", "u.id").
//	    Builder().
//	    Get()
func (b *Builder) Join(table, alias string, kind ...dialect.JoinType) *Join {
	typ := dialect.JoinInner
	switch len(kind) {
	case 0:
	case 1:
		typ = kind[0]
	default:
		b.fail("join", errors.New("at most one join kind is allowed"))
	}
	j := &Join{
		parent: b,
		clause: dialect.JoinClause{Type: typ, Table: b.prefixed(table), Alias: alias},
	}
	b.joins = append(b.joins, j)
	return j
}

// LeftJoin, LEFT JOIN parçası ekler.
func (b *Builder) LeftJoin(table, alias string) *Join {
	return b.Join(table, alias, dialect.JoinLeft)
}

// RightJoin, RIGHT JOIN parçası ekler.
func (b *Builder) RightJoin(table, alias string) *Join {
	return b.Join(table, alias, dialect.JoinRight)
}

// CrossJoin, CROSS JOIN ekler. CROSS JOIN koşul almaz.
func (b *Builder) CrossJoin(table, alias string) *Builder {
	b.Join(table, alias, dialect.JoinCross)
	return b
}

// ----------------------------------------------------------------------------
// GROUP BY / HAVING / ORDER BY
// ----------------------------------------------------------------------------

// Group, GROUP BY kolonları ekler.
func (b *Builder) Group(columns ...string) *Builder {
	b.query.Groups = append(b.query.Groups, columns...)
	return b
}

// Having, HAVING koşulu ekler. Where ile aynı değer kurallarına uyar.
func (b *Builder) Having(column, operator string, value ...any) *Builder {
	clause, bs, ok := b.predicate("having", dialect.WhereBooleanAnd, column, operator, value)
	if !ok {
		return b
	}
	b.query.Havings = append(b.query.Havings, clause)
	b.havingBindings = append(b.havingBindings, bs...)
	return b
}

// HavingRaw, ham HAVING ifadesi ekler.
func (b *Builder) HavingRaw(sqlExpr string, bindings ...any) *Builder {
	bs, ok := b.rawBindings("havingRaw", sqlExpr, bindings)
	if !ok {
		return b
	}
	b.query.Havings = append(b.query.Havings, dialect.WhereClause{
		Type:    dialect.WhereTypeRaw,
		Boolean: dialect.WhereBooleanAnd,
		Raw:     sqlExpr,
	})
	b.havingBindings = append(b.havingBindings, bs...)
	return b
}

// Order, ORDER BY ekler. direction verilmezse ASC; yalnızca ASC ve DESC kabul edilir.
func (b *Builder) Order(column string, direction ...string) *Builder {
	dir := ""
	switch len(direction) {
	case 0:
	case 1:
		dir = direction[0]
	default:
		b.fail("order", errors.New("at most one direction is allowed"))
	}
	b.query.Orders = append(b.query.Orders, dialect.OrderClause{
		Column:    column,
		Direction: dialect.OrderDirection(dir),
	})
	return b
}

// OrderRaw, ham ORDER BY ifadesi ekler. İfade placeholder içeremez.
func (b *Builder) OrderRaw(expr string) *Builder {
	if strings.TrimSpace(expr) == "" || strings.Contains(expr, "?") {
		b.fail("orderRaw", errors.New("raw order must be non-empty and cannot contain placeholders"))
		return b
	}
	b.query.Orders = append(b.query.Orders, dialect.OrderClause{Raw: expr})
	return b
}

// Latest, verilen kolona (varsayılan created_at) göre azalan sıralar.
func (b *Builder) Latest(column ...string) *Builder {
	return b.Order(timestampColumn(column), "DESC")
}

// Oldest, verilen kolona (varsayılan created_at) göre artan sıralar.
func (b *Builder) Oldest(column ...string) *Builder {
	return b.Order(timestampColumn(column), "ASC")
}

func timestampColumn(column []string) string {
	if len(column) > 0 {
		return column[0]
	}
	return "created_at"
}

// ----------------------------------------------------------------------------
// LIMIT / OFFSET
// ----------------------------------------------------------------------------

// Limit, LIMIT ayarlar.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		b.fail("limit", errors.New("limit cannot be negative"))
		return b
	}
	b.query.Limit = &n
	return b
}

// Offset, OFFSET ayarlar. LIMIT verilmemişse Grammar sınırsız bir LIMIT yazar.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		b.fail("offset", errors.New("offset cannot be negative"))
		return b
	}
	b.query.Offset = &n
	return b
}

// ForPage, sayfa bazlı limit ve offset belirler. page 1'den başlar.
func (b *Builder) ForPage(page, perPage int) *Builder {
	if page < 1 {
		page = 1
	}
	return b.Limit(perPage).Offset((page - 1) * perPage)
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// When, condition doğruysa fn'i uygular.
func (b *Builder) When(condition bool, fn func(*Builder)) *Builder {
	if condition {
		fn(b)
	}
	return b
}

// Unless, When'in tersidir.
func (b *Builder) Unless(condition bool, fn func(*Builder)) *Builder {
	return b.When(!condition, fn)
}

// Clone, Builder'ın derin kopyasını oluşturur. Kopya aynı Connector'ı paylaşır.
func (b *Builder) Clone() *Builder {
	c := *b
	c.query = *b.query.Clone()
	c.selectBindings = append([]Binding(nil), b.selectBindings...)
	c.whereBindings = append([]Binding(nil), b.whereBindings...)
	c.havingBindings = append([]Binding(nil), b.havingBindings...)
	c.joins = lo.Map(b.joins, func(j *Join, _ int) *Join {
		return j.clone(&c)
	})
	return &c
}

// Reset, tüm sorgu durumunu temizler (connector, grammar, prefix ve primary key hariç).
func (b *Builder) Reset() *Builder {
	b.query = dialect.Query{}
	b.joins = nil
	b.selectBindings = nil
	b.whereBindings = nil
	b.havingBindings = nil
	b.err = nil
	return b
}

// Err, birikmiş hatayı döndürür.
func (b *Builder) Err() error {
	return b.err
}

// Connector, Builder'ın bağlı olduğu Connector'ı döndürür (bağlantısızsa nil).
func (b *Builder) Connector() *Connector {
	return b.conn
}

// TableName, kaynak tablo adını (prefix dahil) döndürür.
func (b *Builder) TableName() string {
	return b.query.Table
}

// ----------------------------------------------------------------------------
// Rendering
// ----------------------------------------------------------------------------

// state, Join parçalarıyla birleştirilmiş Query kopyasını döndürür.
func (b *Builder) state() *dialect.Query {
	q := b.query.Clone()
	q.Joins = lo.Map(b.joins, func(j *Join, _ int) dialect.JoinClause {
		return j.clause
	})
	return q
}

// Bindings, SELECT için sıralı binding listesini döndürür:
// select ifadeleri, join'ler, where ve having.
func (b *Builder) Bindings() []Binding {
	return b.bindings(true)
}

func (b *Builder) bindings(withSelect bool) []Binding {
	var out []Binding
	if withSelect {
		out = append(out, b.selectBindings...)
	}
	for _, j := range b.joins {
		out = append(out, j.bindings...)
	}
	out = append(out, b.whereBindings...)
	out = append(out, b.havingBindings...)
	return out
}

// ToSQL, SELECT sorgusunu SQL metni ve sıralı binding'lerle döndürür. I/O yapmaz.
//
//	sql, bindings, err := fluentdb.Table("users").Where("age", ">", 18).ToSQL()
//	// SELECT * FROM `users` WHERE `age` > ?   [18]
func (b *Builder) ToSQL() (string, []Binding, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	sql, err := b.grammar.CompileSelect(b.state())
	if err != nil {
		return "", nil, newMalformed("select", b.query.Table, err)
	}
	return sql, b.bindings(true), nil
}

// ToInsertSQL, tek satırlık INSERT sorgusunu derler. row bir Record, map[string]any
// veya `db` etiketli bir struct olabilir.
func (b *Builder) ToInsertSQL(row any) (string, []Binding, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	columns, bindings, err := b.rowBindings("insert", row)
	if err != nil {
		return "", nil, err
	}
	sql, err := b.grammar.CompileInsert(b.state(), columns)
	if err != nil {
		return "", nil, newMalformed("insert", b.query.Table, err)
	}
	return sql, bindings, nil
}

// ToUpdateSQL, UPDATE sorgusunu derler. SET binding'leri WHERE binding'lerinden önce gelir.
func (b *Builder) ToUpdateSQL(row any) (string, []Binding, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	columns, bindings, err := b.rowBindings("update", row)
	if err != nil {
		return "", nil, err
	}
	sql, err := b.grammar.CompileUpdate(b.state(), columns)
	if err != nil {
		return "", nil, newMalformed("update", b.query.Table, err)
	}
	return sql, append(bindings, b.whereBindings...), nil
}

// ToDeleteSQL, DELETE sorgusunu derler.
func (b *Builder) ToDeleteSQL() (string, []Binding, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	sql, err := b.grammar.CompileDelete(b.state())
	if err != nil {
		return "", nil, newMalformed("delete", b.query.Table, err)
	}
	return sql, append([]Binding(nil), b.whereBindings...), nil
}

// toAggregateSQL, projeksiyonu FN(column) ile değiştirir. Select binding'leri yalnızca
// sorgu alt sorgu olarak sarıldığında (GROUP BY veya DISTINCT *) korunur.
func (b *Builder) toAggregateSQL(fn, column string) (string, []Binding, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	q := b.state()
	sql, err := b.grammar.CompileAggregate(q, fn, column)
	if err != nil {
		return "", nil, newMalformed(strings.ToLower(fn), b.query.Table, err)
	}
	return sql, b.bindings(q.AggregatesOverSubquery(column)), nil
}

func (b *Builder) toExistsSQL() (string, []Binding, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	sql, err := b.grammar.CompileExists(b.state())
	if err != nil {
		return "", nil, newMalformed("exists", b.query.Table, err)
	}
	return sql, b.bindings(true), nil
}

// rowBindings, bir satırı kolon listesine ve aynı sıradaki binding'lere ayırır.
func (b *Builder) rowBindings(op string, row any) ([]string, []Binding, error) {
	record, err := b.recordOf(row)
	if err != nil {
		return nil, nil, newMalformed(op, b.query.Table, err)
	}
	if len(record) == 0 {
		return nil, nil, newMalformed(op, b.query.Table, ErrNoColumns)
	}
	columns := make([]string, len(record))
	bindings := make([]Binding, len(record))
	for i, f := range record {
		bind, err := NewBinding(f.Value)
		if err != nil {
			return nil, nil, err
		}
		columns[i] = f.Column
		bindings[i] = bind
	}
	return columns, bindings, nil
}

// recordOf, desteklenen satır biçimlerini Record'a çevirir.
// map anahtarları deterministik çıktı için sıralanır.
func (b *Builder) recordOf(row any) (Record, error) {
	switch r := row.(type) {
	case Record:
		return r, nil
	case map[string]any:
		return RecordFromMap(r), nil
	case nil:
		return nil, ErrNoColumns
	}
	if ext, ok := b.scanner.(RecordExtractor); ok {
		return ext.RecordOf(row)
	}
	return defaultScanner.RecordOf(row)
}
