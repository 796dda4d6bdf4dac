package fluentdb

import (
	"database/sql"
	"reflect"
	"strings"
	"sync"
)

//
// =====================================================================================
// FLUENTDB – SCANNER BİRİMİ
// -------------------------------------------------------------------------------------
// Veritabanından gelen satırları `db:"column"` etiketli Go struct'larına aktaran ve
// INSERT / UPDATE için struct'ları sıralı Record'lara çeviren katman.
//
//   1. Struct field'ları reflection ile taranır
//   2. `db:"column,pk"` tag'lerine göre kolon–field eşlemesi oluşturulur
//   3. Sonuç tip bazında cache'e alınır
//   4. Satırdaki kolonlar adlarına göre eşlenir; eşleşmeyen kolonlar atlanır
//
// YAZAR BİLGİSİ
// @author    Ahmet ALTUN
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik
// @email     ahmet.altun60@gmail.com
// =====================================================================================
//

// Scanner, sorgu sonuçlarını Go değerlerine aktaran sözleşmedir.
// rows'u kapatmak çağıranın sorumluluğundadır.
type Scanner interface {
	// ScanRow, ilk satırı dest struct'ına yazar. Satır yoksa ErrNoRows döner.
	ScanRow(rows *sql.Rows, dest any) error

	// ScanRows, tüm satırları dest slice'ına ekler ([]T veya []*T).
	ScanRows(rows *sql.Rows, dest any) error
}

// RecordExtractor, bir struct'ı INSERT / UPDATE için Record'a çevirebilen Scanner'ların
// ek olarak implemente ettiği arayüzdür.
type RecordExtractor interface {
	RecordOf(v any) (Record, error)
}

// DefaultScanner, `db` etiketleriyle çalışan varsayılan tarayıcıdır.
// Etiketsiz alanlar küçük harfli alan adıyla eşlenir; `db:"-"` alanı atlar.
type DefaultScanner struct {
	cache sync.Map // reflect.Type → *structInfo
}

var (
	_ Scanner         = (*DefaultScanner)(nil)
	_ RecordExtractor = (*DefaultScanner)(nil)
)

// defaultScanner, RecordExtractor olmayan özel Scanner'lar için kullanılır.
var defaultScanner = NewDefaultScanner()

// NewDefaultScanner, varsayılan scanner oluşturur.
func NewDefaultScanner() *DefaultScanner {
	return &DefaultScanner{}
}

type structInfo struct {
	fields  []fieldInfo
	columns map[string]int
}

type fieldInfo struct {
	index []int
	name  string
	isPK  bool
}

// ScanRow, ilk satırı struct'a tarar.
func (s *DefaultScanner) ScanRow(rows *sql.Rows, dest any) error {
	elem, err := structPointer(dest)
	if err != nil {
		return err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNoRows
	}

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	info := s.getStructInfo(elem.Type())
	return rows.Scan(info.targets(elem, columns)...)
}

// ScanRows, satırları slice'a tarar.
func (s *DefaultScanner) ScanRows(rows *sql.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotAPointer
	}

	sliceVal := v.Elem()
	if sliceVal.Kind() != reflect.Slice {
		return ErrNotASlice
	}

	elemType := sliceVal.Type().Elem()
	isPtr := elemType.Kind() == reflect.Pointer
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return ErrNotAStruct
	}

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	info := s.getStructInfo(elemType)
	for rows.Next() {
		elemVal := reflect.New(elemType).Elem()
		if err := rows.Scan(info.targets(elemVal, columns)...); err != nil {
			return err
		}
		if isPtr {
			sliceVal.Set(reflect.Append(sliceVal, elemVal.Addr()))
		} else {
			sliceVal.Set(reflect.Append(sliceVal, elemVal))
		}
	}

	return rows.Err()
}

// RecordOf, struct alanlarını tanım sırasıyla Record'a çevirir.
// Sıfır değerli `pk` alanları (henüz üretilmemiş anahtarlar) atlanır.
func (s *DefaultScanner) RecordOf(v any) (Record, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNotAPointer
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, ErrNotAStruct
	}

	info := s.getStructInfo(rv.Type())
	record := make(Record, 0, len(info.fields))
	for _, f := range info.fields {
		fv := rv.FieldByIndex(f.index)
		if f.isPK && fv.IsZero() {
			continue
		}
		record = append(record, Field{Column: f.name, Value: fv.Interface()})
	}
	return record, nil
}

// PrimaryKey, struct'ın `pk` etiketli kolonunu döndürür; yoksa "id" alanı varsa onu.
func (s *DefaultScanner) PrimaryKey(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ""
	}

	info := s.getStructInfo(t)
	for _, f := range info.fields {
		if f.isPK {
			return f.name
		}
	}
	if _, ok := info.columns[DefaultPrimaryKey]; ok {
		return DefaultPrimaryKey
	}
	return ""
}

func structPointer(dest any) (reflect.Value, error) {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, ErrNotAPointer
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotAStruct
	}
	return elem, nil
}

// targets, her kolon için bir Scan hedefi üretir. Eşleşmeyen kolonlar atılır.
func (info *structInfo) targets(elem reflect.Value, columns []string) []any {
	dests := make([]any, len(columns))
	for i, col := range columns {
		idx, ok := info.columns[strings.ToLower(col)]
		if !ok {
			dests[i] = new(any)
			continue
		}
		dests[i] = elem.FieldByIndex(info.fields[idx].index).Addr().Interface()
	}
	return dests
}

func (s *DefaultScanner) getStructInfo(t reflect.Type) *structInfo {
	if cached, ok := s.cache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := &structInfo{columns: make(map[string]int)}
	parseStruct(t, nil, info)
	actual, _ := s.cache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

// parseStruct, gömülü struct'lar dahil tüm dışa açık alanları tarar.
func parseStruct(t reflect.Type, index []int, info *structInfo) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldIndex := append(append([]int{}, index...), i)

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct && tag == "" {
			parseStruct(field.Type, fieldIndex, info)
			continue
		}

		fi := fieldInfo{index: fieldIndex, name: strings.ToLower(field.Name)}
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				fi.name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "pk" {
					fi.isPK = true
				}
			}
		}

		info.columns[strings.ToLower(fi.name)] = len(info.fields)
		info.fields = append(info.fields, fi)
	}
}
