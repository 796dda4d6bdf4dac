package fluentdb

import (
	"sort"
	"strconv"

	"github.com/samber/lo"
)

/*
 * ----------------------------------------------------------------------------
 * FLUENTDB TYPE DEFINITIONS
 * ----------------------------------------------------------------------------
 *
 * Bu dosya, Builder'a giren ve Builder'dan çıkan satırların biçimlerini tanımlar.
 *
 * 1. Row: Sorgu sonucundaki tek satır; kolon adından değere eşleme.
 * 2. Record: INSERT / UPDATE için sıralı kolon-değer listesi. Alan sırası
 *    kolon sırasıdır.
 * 3. Pagination: LIMIT / OFFSET hesaplamaları ve sayfa meta verisi.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// ----------------------------------------------------------------------------
// Row
// ----------------------------------------------------------------------------

// Row, tek bir sonuç satırıdır. Metin kolonları string olarak gelir.
type Row map[string]any

// Get, kolon değerini ve kolonun var olup olmadığını döndürür.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

// String, kolon değerini string olarak döndürür. NULL veya eksik kolon "" olur.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Int64, kolon değerini int64 olarak döndürür. Dönüştürülemeyen değerlerde ok false olur.
func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// ----------------------------------------------------------------------------
// Record
// ----------------------------------------------------------------------------

// Field, bir Record içindeki tek kolon-değer çiftidir.
type Field struct {
	Column string
	Value  any
}

// Record, sıralı kolon-değer listesidir. INSERT ve UPDATE kolonları bu sırayla yazılır.
//
//	fluentdb.Record{}.Set("name", "Ann").Set("age", 30)
//	// INSERT INTO `users` (`name`, `age`) VALUES (?, ?)
type Record []Field

// Set, kolonu günceller; kolon yoksa sona ekler.
func (r Record) Set(column string, value any) Record {
	for i := range r {
		if r[i].Column == column {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Column: column, Value: value})
}

// Columns, kolon adlarını sırayla döndürür.
func (r Record) Columns() []string {
	return lo.Map(r, func(f Field, _ int) string { return f.Column })
}

// RecordFromMap, map'i anahtarları sıralanmış bir Record'a çevirir.
func RecordFromMap(m map[string]any) Record {
	keys := lo.Keys(m)
	sort.Strings(keys)

	r := make(Record, len(keys))
	for i, k := range keys {
		r[i] = Field{Column: k, Value: m[k]}
	}
	return r
}

// ----------------------------------------------------------------------------
// Pagination Types
// ----------------------------------------------------------------------------

// Pagination, sayfalama meta verisidir.
type Pagination struct {
	Page       int   // Mevcut sayfa numarası (1'den başlar)
	PerPage    int   // Sayfa başına kayıt sayısı
	Total      int64 // Toplam kayıt sayısı
	TotalPages int   // Toplam sayfa sayısı
	HasMore    bool  // Sonraki sayfa var mı
}

// DefaultPerPage, perPage verilmediğinde kullanılan sayfa boyutudur.
const DefaultPerPage = 15

// NewPagination, geçersiz parametreleri varsayılanlara çekerek bir Pagination oluşturur.
func NewPagination(page, perPage int, total int64) *Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int(total / int64(perPage))
	if total%int64(perPage) > 0 {
		totalPages++
	}

	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// Offset, sayfa için atlanacak kayıt sayısıdır.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev, önceki sayfa olup olmadığını döndürür.
func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext, sonraki sayfa olup olmadığını döndürür.
func (p *Pagination) HasNext() bool {
	return p.HasMore
}
