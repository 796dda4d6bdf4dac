package fluentdb

import (
	"github.com/samber/lo"

	"github.com/biyonik/go-fluent-db/internal/validation"
)

// Collection, Get tarafından döndürülen sıralı satır listesidir.
type Collection struct {
	rows []Row
}

// NewCollection, satırları bir Collection içine sarar.
func NewCollection(rows []Row) *Collection {
	if rows == nil {
		rows = []Row{}
	}
	return &Collection{rows: rows}
}

// All, satırları döndürür.
func (c *Collection) All() []Row {
	return c.rows
}

// Len, satır sayısını döndürür.
func (c *Collection) Len() int {
	return len(c.rows)
}

// IsEmpty, koleksiyon boşsa true döner.
func (c *Collection) IsEmpty() bool {
	return len(c.rows) == 0
}

// First, ilk satırı döndürür.
func (c *Collection) First() (Row, bool) {
	if len(c.rows) == 0 {
		return nil, false
	}
	return c.rows[0], true
}

// Pluck, bir kolonun değerlerini satır sırasıyla döndürür.
// "users.name" ve "name as n" gibi ifadeler sonuç kolon adına (name, n) çözülür.
func (c *Collection) Pluck(column string) []any {
	key := resultColumn(column)
	return lo.Map(c.rows, func(r Row, _ int) any { return r[key] })
}

// PluckMap, key kolonunun değerinden column kolonunun değerine eşleme döndürür.
// Aynı anahtar birden fazla kez geçerse son satır kazanır.
func (c *Collection) PluckMap(column, key string) map[any]any {
	col, k := resultColumn(column), resultColumn(key)
	return lo.Associate(c.rows, func(r Row) (any, any) {
		return r[k], r[col]
	})
}

// KeyBy, satırları verilen kolonun değerine göre indeksler.
func (c *Collection) KeyBy(column string) map[any]Row {
	key := resultColumn(column)
	return lo.KeyBy(c.rows, func(r Row) any { return r[key] })
}

// Filter, predicate'i sağlayan satırlarla yeni bir Collection döndürür.
func (c *Collection) Filter(predicate func(Row) bool) *Collection {
	return NewCollection(lo.Filter(c.rows, func(r Row, _ int) bool { return predicate(r) }))
}

// Each, her satır için fn'i çağırır.
func (c *Collection) Each(fn func(Row, int)) {
	lo.ForEach(c.rows, fn)
}

// resultColumn, bir select ifadesinin sonuç kümesindeki kolon adını döndürür.
func resultColumn(expr string) string {
	name, alias, err := validation.SplitAlias(expr)
	if err != nil {
		return expr
	}
	if alias != "" {
		return alias
	}
	if _, column, err := validation.SplitTableColumn(name); err == nil {
		return column
	}
	return name
}
