package fluentdb

import (
	"database/sql"
	"database/sql/driver"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// BindingType, bir placeholder'a gönderilecek değerin kablo (wire) tipidir.
type BindingType int

const (
	// BindInteger, tüm Go tamsayı türleri için kullanılır; değer int64'e normalize edilir.
	BindInteger BindingType = iota
	// BindText, diğer tüm desteklenen değerler için kullanılır; değer sürücüye olduğu gibi gider.
	BindText
)

// String, BindingType'ın okunabilir adını döndürür.
func (t BindingType) String() string {
	switch t {
	case BindInteger:
		return "integer"
	case BindText:
		return "text"
	}
	return "unknown"
}

// Binding, tek bir placeholder'ı dolduran tipli değerdir.
// Name doluysa değer sql.Named ile isimli parametre olarak gönderilir.
type Binding struct {
	Value any
	Type  BindingType
	Name  string
}

// Arg, sürücüye gönderilecek argümanı döndürür.
func (b Binding) Arg() any {
	if b.Name != "" {
		return sql.Named(b.Name, b.Value)
	}
	return b.Value
}

// NamedArg, Named ile oluşturulan isimli değerdir.
type NamedArg struct {
	Name  string
	Value any
}

// Named, isimli placeholder (":name") için bir değer oluşturur.
//
//	conn.Select(ctx, "SELECT * FROM users WHERE id = :id", fluentdb.MustBind(fluentdb.Named("id", 7)))
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// NewBinding, değerin tipini çıkarır.
//
// Tamsayılar BindInteger; string, []byte, float, bool, time.Time ve driver.Valuer
// BindText olur. nil ve bileşik değerler (map, slice, struct, func, chan)
// BindingError döndürür. Pointer'lar gösterdikleri değere indirgenir.
func NewBinding(value any) (Binding, error) {
	switch v := value.(type) {
	case nil:
		return Binding{}, &BindingError{Reason: "nil has no wire type; use WhereNull or WhereNotNull"}
	case Binding:
		return v, nil
	case NamedArg:
		if v.Name == "" {
			return Binding{}, &BindingError{Value: value, Reason: "named binding requires a name"}
		}
		b, err := NewBinding(v.Value)
		if err != nil {
			return Binding{}, err
		}
		b.Name = v.Name
		return b, nil
	case driver.Valuer:
		return Binding{Value: v, Type: BindText}, nil
	case time.Time, []byte, string, bool, float32, float64:
		return Binding{Value: v, Type: BindText}, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Binding{Value: rv.Int(), Type: BindInteger}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Binding{}, &BindingError{Value: value, Reason: "unsigned value " + strconv.FormatUint(u, 10) + " overflows int64"}
		}
		return Binding{Value: int64(u), Type: BindInteger}, nil
	case reflect.String:
		return Binding{Value: rv.String(), Type: BindText}, nil
	case reflect.Bool:
		return Binding{Value: rv.Bool(), Type: BindText}, nil
	case reflect.Float32, reflect.Float64:
		return Binding{Value: rv.Float(), Type: BindText}, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Binding{}, &BindingError{Value: value, Reason: "nil pointer of type " + rv.Type().String()}
		}
		return NewBinding(rv.Elem().Interface())
	}

	return Binding{}, &BindingError{Value: value, Reason: "unsupported type " + rv.Type().String()}
}

// NewBindings, değerleri sırayla bağlar. İlk hatada durur.
func NewBindings(values ...any) ([]Binding, error) {
	out := make([]Binding, 0, len(values))
	for _, v := range values {
		b, err := NewBinding(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// MustBind, NewBindings gibidir ancak hata durumunda panic yapar.
// Sabit değerlerle yazılmış testler ve ham sorgular için.
func MustBind(values ...any) []Binding {
	bs, err := NewBindings(values...)
	if err != nil {
		panic(err)
	}
	return bs
}

// bindingArgs, binding listesini sürücü argümanlarına çevirir.
func bindingArgs(bindings []Binding) []any {
	return lo.Map(bindings, func(b Binding, _ int) any { return b.Arg() })
}
