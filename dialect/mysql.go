package dialect

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/biyonik/go-fluent-db/internal/validation"
)

/*
 * ----------------------------------------------------------------------------
 * MYSQL GRAMMAR IMPLEMENTATION
 * ----------------------------------------------------------------------------
 *
 * Bu dosya, Builder'ın biriktirdiği Query durumunu MySQL/MariaDB uyumlu SQL
 * metnine çeviren katmandır. Üretilen metin backtick tırnaklama ve "?" yer
 * tutucuları kullanır; SQLite da aynı sözdizimini kabul eder.
 *
 * Sorumluluklar:
 * 1. Sanitization: Her tablo ve kolon adı doğrulanır ve tırnaklanır.
 * 2. Compilation: Cümleler sabit sırada birleştirilir
 *    (SELECT -> FROM -> JOIN -> WHERE -> GROUP BY -> HAVING -> ORDER BY -> LIMIT).
 * 3. Parity: Her placeholder, Builder'daki bir binding'e karşılık gelir;
 *    değerin kendisi metne asla yazılmaz.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// AggregateAlias, agregat sorgularında tek projeksiyona verilen sabit isimdir.
const AggregateAlias = "aggregate"

// ExistsAlias, EXISTS sorgusunun tek hücresine verilen isimdir.
const ExistsAlias = "exists"

// AggregateTableAlias, gruplanmış agregatlarda alt sorguya verilen isimdir.
const AggregateTableAlias = "aggregate_table"

// maxLimit, OFFSET tek başına kullanıldığında yazılan üst sınırdır.
// MySQL ve SQLite OFFSET için LIMIT ister.
const maxLimit = "9223372036854775807"

var aggregateFunctions = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"MAX":   true,
	"MIN":   true,
	"AVG":   true,
}

// BaseGrammar, gramerler arasında ortak alanları taşır.
type BaseGrammar struct {
	name string
}

// Name, gramerin adını döndürür.
func (g *BaseGrammar) Name() string {
	return g.name
}

// MySQLGrammar, Grammar arayüzünü MySQL ve MariaDB için implemente eder.
type MySQLGrammar struct {
	BaseGrammar
}

var _ Grammar = (*MySQLGrammar)(nil)

// MySQL, yeni bir MySQL dilbilgisi örneği oluşturur.
func MySQL() *MySQLGrammar {
	return &MySQLGrammar{BaseGrammar: BaseGrammar{name: "mysql"}}
}

// NewMySQLGrammar, MySQL() için bir takma addır.
func NewMySQLGrammar() *MySQLGrammar {
	return MySQL()
}

// quote, doğrulanmış tekil bir ismi backtick ile sarar.
func quote(name string) string {
	return "`" + name + "`"
}

// wrapSegments, "table.column" biçimindeki referansı parça parça sarar.
// Örnek: "users.name" -> "`users`.`name`"
func wrapSegments(ref string) string {
	return strings.Join(lo.Map(strings.Split(ref, "."), func(part string, _ int) string {
		return quote(part)
	}), ".")
}

// Wrap, bir kolon ifadesini doğrular ve sarar.
//
//	"*"              -> *
//	"users.*"        -> `users`.*
//	"users.name"     -> `users`.`name`
//	"name as n"      -> `name` AS `n`
func (g *MySQLGrammar) Wrap(identifier string) (string, error) {
	if identifier == "*" {
		return "*", nil
	}

	if table, ok := strings.CutSuffix(identifier, ".*"); ok {
		if err := validation.ValidateName(table); err != nil {
			return "", err
		}
		return quote(table) + ".*", nil
	}

	name, alias, err := validation.SplitAlias(identifier)
	if err != nil {
		return "", err
	}

	wrapped := wrapSegments(name)
	if alias != "" {
		wrapped += " AS " + quote(alias)
	}
	return wrapped, nil
}

// wrapPlain, alias kabul etmeyen kolon adlarını (INSERT / UPDATE) sarar.
func (g *MySQLGrammar) wrapPlain(column string) (string, error) {
	if err := validation.ValidateIdentifier(column); err != nil {
		return "", err
	}
	return wrapSegments(column), nil
}

// WrapTable, tablo adını ve alias'ını sarar. alias boşsa "users as u" biçimi de kabul edilir.
func (g *MySQLGrammar) WrapTable(table, alias string) (string, error) {
	name, inline, err := validation.ValidateTableWithAlias(table)
	if err != nil {
		return "", err
	}
	if alias == "" {
		alias = inline
	}

	wrapped := wrapSegments(name)
	if alias != "" {
		if err := validation.ValidateName(alias); err != nil {
			return "", err
		}
		wrapped += " AS " + quote(alias)
	}
	return wrapped, nil
}

// Placeholder, MySQL için her zaman "?" döndürür.
func (g *MySQLGrammar) Placeholder(int) string {
	return "?"
}

// params, tek bir derleme boyunca placeholder sırasını sayar.
// Her Compile çağrısı kendi sayacını oluşturur; gramerin kendisi durum tutmaz.
type params struct {
	g Grammar
	n int
}

func (p *params) next() string {
	s := p.g.Placeholder(p.n)
	p.n++
	return s
}

// skip, ham SQL içindeki "?" işaretlerini sayaca ekler.
func (p *params) skip(raw string) {
	p.n += strings.Count(raw, "?")
}

// CompileSelect, bir SELECT sorgusunu parçalarından birleştirerek inşa eder.
func (g *MySQLGrammar) CompileSelect(q *Query) (string, error) {
	if q.Table == "" {
		return "", ErrNoTable
	}

	p := &params{g: g}
	columns, err := g.compileColumns(q, p)
	if err != nil {
		return "", err
	}

	return g.compileComponents(q, columns, p, true)
}

// CompileAggregate, projeksiyonu FN(column) AS `aggregate` ile değiştirir.
// ORDER BY, LIMIT ve OFFSET tek hücrelik sonuçta anlamsız olduğundan yazılmaz.
func (g *MySQLGrammar) CompileAggregate(q *Query, fn, column string) (string, error) {
	if q.Table == "" {
		return "", ErrNoTable
	}

	fn = strings.ToUpper(strings.TrimSpace(fn))
	if !aggregateFunctions[fn] {
		return "", ErrInvalidAggregate
	}

	if column == "" || (column == "*" && fn != "COUNT") {
		return "", ErrNoColumns
	}

	if q.AggregatesOverSubquery(column) {
		return g.compileSubqueryAggregate(q, fn, column)
	}

	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", err
	}
	if q.Distinct {
		wrapped = "DISTINCT " + wrapped
	}

	expr := fn + "(" + wrapped + ") AS " + quote(AggregateAlias)
	return g.compileComponents(q, "SELECT "+expr, &params{g: g}, false)
}

// compileSubqueryAggregate, sorguyu ORDER BY / LIMIT olmadan alt sorgu olarak sarar:
//
//	SELECT COUNT(*) AS `aggregate` FROM (SELECT ... GROUP BY ...) AS `aggregate_table`
//
// Kolon, alt sorgunun projeksiyonundaki adıyla (alias ya da son segment) okunur.
func (g *MySQLGrammar) compileSubqueryAggregate(q *Query, fn, column string) (string, error) {
	p := &params{g: g}
	columns, err := g.compileColumns(q, p)
	if err != nil {
		return "", err
	}
	inner, err := g.compileComponents(q, columns, p, false)
	if err != nil {
		return "", err
	}

	target := "*"
	if column != "*" {
		name, alias, err := validation.SplitAlias(column)
		if err != nil {
			return "", err
		}
		if alias == "" {
			alias = name[strings.LastIndex(name, ".")+1:]
		}
		target = quote(alias)
	}

	return "SELECT " + fn + "(" + target + ") AS " + quote(AggregateAlias) +
		" FROM (" + inner + ") AS " + quote(AggregateTableAlias), nil
}

// CompileExists, SELECT sorgusunu EXISTS içine sarar.
func (g *MySQLGrammar) CompileExists(q *Query) (string, error) {
	inner, err := g.CompileSelect(q)
	if err != nil {
		return "", err
	}
	return "SELECT EXISTS(" + inner + ") AS " + quote(ExistsAlias), nil
}

// CompileInsert, INSERT INTO table (cols) VALUES (?, ...) üretir.
// Kolon sırası verilen sıradır; placeholder sayısı kolon sayısına eşittir.
func (g *MySQLGrammar) CompileInsert(q *Query, columns []string) (string, error) {
	if q.Table == "" {
		return "", ErrNoTable
	}
	if len(columns) == 0 {
		return "", ErrNoColumns
	}

	table, err := g.wrapPlain(q.Table)
	if err != nil {
		return "", err
	}

	wrapped := make([]string, len(columns))
	for i, col := range columns {
		if wrapped[i], err = g.wrapPlain(col); err != nil {
			return "", err
		}
	}

	p := &params{g: g}
	placeholders := lo.Times(len(columns), func(int) string { return p.next() })

	var sql strings.Builder
	sql.WriteString("INSERT INTO ")
	sql.WriteString(table)
	sql.WriteString(" (")
	sql.WriteString(strings.Join(wrapped, ", "))
	sql.WriteString(") VALUES (")
	sql.WriteString(strings.Join(placeholders, ", "))
	sql.WriteString(")")

	return sql.String(), nil
}

// CompileUpdate, UPDATE table SET col = ?, ... [WHERE ...] üretir.
// SET placeholder'ları WHERE placeholder'larından önce gelir.
func (g *MySQLGrammar) CompileUpdate(q *Query, columns []string) (string, error) {
	if q.Table == "" {
		return "", ErrNoTable
	}
	if len(columns) == 0 {
		return "", ErrNoColumns
	}

	table, err := g.wrapPlain(q.Table)
	if err != nil {
		return "", err
	}

	p := &params{g: g}
	sets := make([]string, len(columns))
	for i, col := range columns {
		wrapped, err := g.wrapPlain(col)
		if err != nil {
			return "", err
		}
		sets[i] = wrapped + " = " + p.next()
	}

	sql := "UPDATE " + table + " SET " + strings.Join(sets, ", ")
	where, err := g.compileWhereClause(q.Wheres, p)
	if err != nil {
		return "", err
	}
	return sql + where, nil
}

// CompileDelete, DELETE FROM table [WHERE ...] üretir.
func (g *MySQLGrammar) CompileDelete(q *Query) (string, error) {
	if q.Table == "" {
		return "", ErrNoTable
	}

	table, err := g.wrapPlain(q.Table)
	if err != nil {
		return "", err
	}

	where, err := g.compileWhereClause(q.Wheres, &params{g: g})
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + table + where, nil
}

// compileColumns, "SELECT [DISTINCT] ..." bölümünü üretir.
func (g *MySQLGrammar) compileColumns(q *Query, p *params) (string, error) {
	prefix := "SELECT "
	if q.Distinct {
		prefix += "DISTINCT "
	}

	if len(q.Columns) == 0 {
		return prefix + "*", nil
	}

	parts := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		if col.Raw {
			p.skip(col.Name)
			parts[i] = col.Name
			continue
		}
		wrapped, err := g.Wrap(col.Name)
		if err != nil {
			return "", err
		}
		parts[i] = wrapped
	}
	return prefix + strings.Join(parts, ", "), nil
}

// compileComponents, projeksiyondan sonra gelen cümleleri sabit sırada ekler.
func (g *MySQLGrammar) compileComponents(q *Query, projection string, p *params, withTail bool) (string, error) {
	var sql strings.Builder
	sql.WriteString(projection)

	table, err := g.WrapTable(q.Table, q.Alias)
	if err != nil {
		return "", err
	}
	sql.WriteString(" FROM ")
	sql.WriteString(table)

	for _, join := range q.Joins {
		joinSQL, err := g.compileJoin(join, p)
		if err != nil {
			return "", err
		}
		sql.WriteString(" ")
		sql.WriteString(joinSQL)
	}

	where, err := g.compileWhereClause(q.Wheres, p)
	if err != nil {
		return "", err
	}
	sql.WriteString(where)

	if len(q.Groups) > 0 {
		groups := make([]string, len(q.Groups))
		for i, col := range q.Groups {
			if groups[i], err = g.Wrap(col); err != nil {
				return "", err
			}
		}
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(groups, ", "))
	}

	if len(q.Havings) > 0 {
		having, err := g.compileWheres(q.Havings, p)
		if err != nil {
			return "", err
		}
		sql.WriteString(" HAVING ")
		sql.WriteString(having)
	}

	if !withTail {
		return sql.String(), nil
	}

	if len(q.Orders) > 0 {
		orders, err := g.compileOrders(q.Orders)
		if err != nil {
			return "", err
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(orders)
	}

	switch {
	case q.Limit != nil:
		sql.WriteString(" LIMIT ")
		sql.WriteString(strconv.Itoa(*q.Limit))
	case q.Offset != nil:
		sql.WriteString(" LIMIT " + maxLimit)
	}
	if q.Offset != nil {
		sql.WriteString(" OFFSET ")
		sql.WriteString(strconv.Itoa(*q.Offset))
	}

	return sql.String(), nil
}

func (g *MySQLGrammar) compileOrders(orders []OrderClause) (string, error) {
	parts := make([]string, len(orders))
	for i, order := range orders {
		if order.Raw != "" {
			parts[i] = order.Raw
			continue
		}
		wrapped, err := g.Wrap(order.Column)
		if err != nil {
			return "", err
		}
		dir, err := validation.ValidateDirection(string(order.Direction))
		if err != nil {
			return "", err
		}
		parts[i] = wrapped + " " + dir
	}
	return strings.Join(parts, ", "), nil
}

// compileWhereClause, koşul varsa " WHERE ..." döndürür.
func (g *MySQLGrammar) compileWhereClause(wheres []WhereClause, p *params) (string, error) {
	if len(wheres) == 0 {
		return "", nil
	}
	sql, err := g.compileWheres(wheres, p)
	if err != nil {
		return "", err
	}
	return " WHERE " + sql, nil
}

// compileWheres, koşulları kendi bağlaçlarıyla birleştirir. İlk koşulun bağlacı yazılmaz.
func (g *MySQLGrammar) compileWheres(wheres []WhereClause, p *params) (string, error) {
	var sql strings.Builder
	for i, where := range wheres {
		if i > 0 {
			sql.WriteString(" ")
			sql.WriteString(where.Boolean.String())
			sql.WriteString(" ")
		}

		clause, err := g.compileWhere(where, p)
		if err != nil {
			return "", err
		}
		sql.WriteString(clause)
	}
	return sql.String(), nil
}

// compileWhere, tek bir koşulu derler.
func (g *MySQLGrammar) compileWhere(where WhereClause, p *params) (string, error) {
	switch where.Type {
	case WhereTypeRaw:
		p.skip(where.Raw)
		return where.Raw, nil
	case WhereTypeNested:
		if len(where.Nested) == 0 {
			return "1 = 1", nil
		}
		nested, err := g.compileWheres(where.Nested, p)
		if err != nil {
			return "", err
		}
		return "(" + nested + ")", nil
	}

	column, err := g.Wrap(where.Column)
	if err != nil {
		return "", err
	}

	switch where.Type {
	case WhereTypeBasic:
		op, err := validation.ValidateOperator(where.Operator)
		if err != nil {
			return "", err
		}
		return column + " " + op + " " + p.next(), nil

	case WhereTypeLiteral:
		op, err := validation.ValidateLiteralOperator(where.Operator)
		if err != nil {
			return "", err
		}
		return column + " " + op, nil

	case WhereTypeIn, WhereTypeNotIn:
		// Boş küme: IN () geçersiz SQL'dir; sabit bir koşul yazılır.
		if where.Count == 0 {
			if where.Type == WhereTypeIn {
				return "0 = 1", nil
			}
			return "1 = 1", nil
		}
		op := "IN"
		if where.Type == WhereTypeNotIn {
			op = "NOT IN"
		}
		placeholders := lo.Times(where.Count, func(int) string { return p.next() })
		return column + " " + op + " (" + strings.Join(placeholders, ", ") + ")", nil

	case WhereTypeBetween, WhereTypeNotBetween:
		if where.Count != 2 {
			return "", ErrInvalidBetween
		}
		op := "BETWEEN"
		if where.Type == WhereTypeNotBetween {
			op = "NOT BETWEEN"
		}
		return column + " " + op + " " + p.next() + " AND " + p.next(), nil

	case WhereTypeColumn:
		op, err := validation.ValidateOperator(where.Operator)
		if err != nil {
			return "", err
		}
		second, err := g.Wrap(where.Second)
		if err != nil {
			return "", err
		}
		return column + " " + op + " " + second, nil
	}

	return "", ErrUnknownWhere
}

// compileJoin, tek bir JOIN parçasını derler.
func (g *MySQLGrammar) compileJoin(join JoinClause, p *params) (string, error) {
	if !join.Type.IsValid() {
		return "", ErrInvalidJoin
	}

	table, err := g.WrapTable(join.Table, join.Alias)
	if err != nil {
		return "", err
	}

	sql := string(join.Type) + " JOIN " + table
	if join.Type == JoinCross || len(join.Clauses) == 0 {
		return sql, nil
	}

	on, err := g.compileWheres(join.Clauses, p)
	if err != nil {
		return "", err
	}
	return sql + " ON " + on, nil
}
