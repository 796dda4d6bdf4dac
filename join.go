package fluentdb

import (
	"errors"

	"github.com/biyonik/go-fluent-db/dialect"
)

// Join, tek bir JOIN parçasını ve kendi ON / WHERE koşullarını tanımlar.
// Ebeveyn Builder'a aittir ve onun parçası olarak derlenir; kendi binding'lerini taşır,
// bu yüzden iki join hangi sırayla doldurulursa doldurulsun placeholder sırası korunur.
type Join struct {
	parent   *Builder
	clause   dialect.JoinClause
	bindings []Binding
}

// On, iki kolonu karşılaştıran bir ON koşulu ekler.
//
//	b.Join("posts", "p").On("p.user_id", "=", "u.id")
func (j *Join) On(first, operator, second string) *Join {
	return j.on(dialect.WhereBooleanAnd, first, operator, second)
}

// OrOn, OR ile bağlanan kolon karşılaştırması ekler.
func (j *Join) OrOn(first, operator, second string) *Join {
	return j.on(dialect.WhereBooleanOr, first, operator, second)
}

func (j *Join) on(boolean dialect.WhereBoolean, first, operator, second string) *Join {
	if j.clause.Type == dialect.JoinCross {
		j.parent.fail("join", errors.New("CROSS JOIN does not take ON conditions"))
		return j
	}
	j.clause.Clauses = append(j.clause.Clauses, dialect.WhereClause{
		Type:     dialect.WhereTypeColumn,
		Boolean:  boolean,
		Column:   first,
		Operator: operator,
		Second:   second,
	})
	return j
}

// Where, join koşuluna değer karşılaştırması ekler: `column` op ?.
func (j *Join) Where(column, operator string, value ...any) *Join {
	return j.where(dialect.WhereBooleanAnd, column, operator, value)
}

// OrWhere, OR ile bağlanan değer karşılaştırması ekler.
func (j *Join) OrWhere(column, operator string, value ...any) *Join {
	return j.where(dialect.WhereBooleanOr, column, operator, value)
}

func (j *Join) where(boolean dialect.WhereBoolean, column, operator string, values []any) *Join {
	if j.clause.Type == dialect.JoinCross {
		j.parent.fail("join", errors.New("CROSS JOIN does not take ON conditions"))
		return j
	}
	clause, bs, ok := j.parent.predicate("join", boolean, column, operator, values)
	if !ok {
		return j
	}
	j.clause.Clauses = append(j.clause.Clauses, clause)
	j.bindings = append(j.bindings, bs...)
	return j
}

// Builder, zincire ebeveyn Builder üzerinden devam etmek için onu döndürür.
func (j *Join) Builder() *Builder {
	return j.parent
}

func (j *Join) clone(parent *Builder) *Join {
	c := &Join{
		parent:   parent,
		clause:   j.clause,
		bindings: append([]Binding(nil), j.bindings...),
	}
	c.clause.Clauses = append([]dialect.WhereClause(nil), j.clause.Clauses...)
	return c
}
