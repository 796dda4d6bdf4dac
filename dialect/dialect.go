// Package dialect, sorgu durumunu (Query State) ve bu durumu veritabanına özgü SQL
// metnine çeviren Grammar sözleşmesini tanımlar.
//
// Builder, zincirleme çağrılar boyunca bir Query değerini doldurur; Grammar ise bu
// değeri okuyup yalnızca SQL metni üretir. Değerler (bindings) bu pakete hiç girmez:
// her cümle yalnızca kaç tane placeholder ürettiğini bilir, değerlerin kendisi
// Builder'da tutulur. Böylece Grammar saf bir çevirmendir ve aynı örnek eşzamanlı
// olarak farklı sorgular için güvenle kullanılabilir.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package dialect

// ----------------------------------------------------------------------------
// Grammar Interface
// ----------------------------------------------------------------------------

// Grammar, sorgu bileşenlerini veritabanına özgü SQL ifadelerine çevirir.
// Compile metotları Query değerini değiştirmez.
type Grammar interface {
	// Name, gramerin kimliğini döndürür (örn. "mysql").
	Name() string

	// Wrap, bir sütun adını veritabanına özgü tırnaklarla sarar.
	// "*", "table.*" ve "column as alias" biçimlerini tanır.
	Wrap(identifier string) (string, error)

	// WrapTable, tablo adını ve varsa alias'ını sarar.
	WrapTable(table, alias string) (string, error)

	// Placeholder, index. (0 tabanlı) parametre için yer tutucuyu döndürür.
	Placeholder(index int) string

	// CompileSelect, SELECT sorgusunu derler.
	CompileSelect(q *Query) (string, error)

	// CompileAggregate, projeksiyonu tek bir agregat ifadeyle değiştirerek derler.
	CompileAggregate(q *Query, fn, column string) (string, error)

	// CompileExists, sorguyu SELECT EXISTS(...) içine sarar.
	CompileExists(q *Query) (string, error)

	// CompileInsert, verilen kolon sırasıyla tek satırlık INSERT derler.
	CompileInsert(q *Query, columns []string) (string, error)

	// CompileUpdate, verilen kolonlar için UPDATE ... SET derler.
	CompileUpdate(q *Query, columns []string) (string, error)

	// CompileDelete, DELETE sorgusunu derler.
	CompileDelete(q *Query) (string, error)
}

// ----------------------------------------------------------------------------
// Query State
// ----------------------------------------------------------------------------

// Query, tek bir Builder'ın biriktirdiği sorgu durumudur.
// Cümlelerin sırası, SQL metnindeki sırayı belirler.
type Query struct {
	Table    string
	Alias    string
	Columns  []Column
	Distinct bool
	Joins    []JoinClause
	Wheres   []WhereClause
	Groups   []string
	Havings  []WhereClause
	Orders   []OrderClause
	Limit    *int
	Offset   *int
}

// AggregatesOverSubquery, agregatın gruplanmış veya DISTINCT * sorgunun
// kendisini alt sorgu olarak sarması gerekip gerekmediğini bildirir. Bu durumda
// alt sorgu projeksiyonu korunur; select binding'leri de sorguya dahildir.
func (q *Query) AggregatesOverSubquery(column string) bool {
	return len(q.Groups) > 0 || (q.Distinct && column == "*")
}

// Clone, Query'nin derin kopyasını döndürür.
func (q *Query) Clone() *Query {
	c := *q
	c.Columns = append([]Column(nil), q.Columns...)
	c.Wheres = cloneWheres(q.Wheres)
	c.Havings = cloneWheres(q.Havings)
	c.Groups = append([]string(nil), q.Groups...)
	c.Orders = append([]OrderClause(nil), q.Orders...)
	c.Joins = make([]JoinClause, len(q.Joins))
	for i, j := range q.Joins {
		j.Clauses = cloneWheres(j.Clauses)
		c.Joins[i] = j
	}
	if q.Limit != nil {
		n := *q.Limit
		c.Limit = &n
	}
	if q.Offset != nil {
		n := *q.Offset
		c.Offset = &n
	}
	return &c
}

func cloneWheres(in []WhereClause) []WhereClause {
	if in == nil {
		return nil
	}
	out := make([]WhereClause, len(in))
	for i, w := range in {
		w.Nested = cloneWheres(w.Nested)
		out[i] = w
	}
	return out
}

// Column, projeksiyondaki tek bir ifadedir.
// Raw true ise ifade tırnaklanmadan yazılır; yalnızca güvenilir girdi için kullanın.
type Column struct {
	Name string
	Raw  bool
}

// ----------------------------------------------------------------------------
// WHERE Clause Types
// ----------------------------------------------------------------------------

// WhereType, WHERE koşulunun türünü belirtir.
type WhereType int

const (
	WhereTypeBasic WhereType = iota
	WhereTypeLiteral
	WhereTypeIn
	WhereTypeNotIn
	WhereTypeBetween
	WhereTypeNotBetween
	WhereTypeRaw
	WhereTypeNested
	WhereTypeColumn
)

// String, WhereType'ın string temsilini döndürür.
func (t WhereType) String() string {
	names := [...]string{
		"Basic", "Literal", "In", "NotIn", "Between", "NotBetween",
		"Raw", "Nested", "Column",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// WhereBoolean, AND veya OR bağlacını belirtir.
type WhereBoolean int

const (
	WhereBooleanAnd WhereBoolean = iota
	WhereBooleanOr
)

// String, SQL için boolean kelimesini döndürür.
func (b WhereBoolean) String() string {
	if b == WhereBooleanOr {
		return "OR"
	}
	return "AND"
}

// WhereClause, tek bir WHERE / HAVING / JOIN ON koşulunu temsil eder.
//
// Değerler burada tutulmaz. Count yalnızca IN / NOT IN için placeholder sayısını,
// Second ise kolon-kolon karşılaştırmasında (JOIN ON) sağ kolonu taşır.
type WhereClause struct {
	Type     WhereType
	Boolean  WhereBoolean
	Column   string
	Operator string
	Second   string
	Count    int
	Nested   []WhereClause
	Raw      string
}

// ----------------------------------------------------------------------------
// ORDER BY Types
// ----------------------------------------------------------------------------

// OrderDirection, sıralama yönünü belirtir.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// OrderClause, ORDER BY ifadesini temsil eder.
type OrderClause struct {
	Column    string
	Direction OrderDirection
	Raw       string
}

// ----------------------------------------------------------------------------
// JOIN Types
// ----------------------------------------------------------------------------

// JoinType, JOIN türünü belirtir.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinCross JoinType = "CROSS"
)

// IsValid, JOIN türünün desteklenip desteklenmediğini döndürür.
func (t JoinType) IsValid() bool {
	switch t {
	case JoinInner, JoinLeft, JoinRight, JoinCross:
		return true
	}
	return false
}

// JoinClause, tek bir JOIN parçasını ve kendi ON / WHERE koşullarını temsil eder.
type JoinClause struct {
	Type    JoinType
	Table   string
	Alias   string
	Clauses []WhereClause
}

// ----------------------------------------------------------------------------
// Sentinel Errors (dialect-specific)
// ----------------------------------------------------------------------------

// Dialect implementasyonları için ortak hatalar.
// Ana paket bunları MalformedQuery olarak sınıflandırır.
var (
	ErrNoTable          = &DialectError{Message: "no table specified"}
	ErrNoColumns        = &DialectError{Message: "no columns specified"}
	ErrInvalidBetween   = &DialectError{Message: "BETWEEN requires exactly 2 values"}
	ErrInvalidAggregate = &DialectError{Message: "unsupported aggregate function"}
	ErrInvalidJoin      = &DialectError{Message: "unsupported join type"}
	ErrUnknownWhere     = &DialectError{Message: "unknown where type"}
)

// DialectError, dialect'e özgü hataları temsil eder.
type DialectError struct {
	Message string
}

// Error, hatayı string olarak döndürür.
func (e *DialectError) Error() string {
	return "dialect: " + e.Message
}
