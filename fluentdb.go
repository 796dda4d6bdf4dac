// Package fluentdb, database/sql üzerine akıcı bir SQL sorgu oluşturma ve çalıştırma katmanı sunar.
// Sorgular zincirleme çağrılarla kurulur, dialect.Grammar ile parametreli SQL'e derlenir ve
// tek bağlantılı bir Connector üzerinden çalıştırılır.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package fluentdb

// Version, go-fluent-db kütüphanesinin mevcut sürümünü belirtir.
const Version = "0.2.0-alpha"

// New, veritabanı bağlantısı olmadan yeni bir Builder oluşturur.
// SQL stringleri oluşturmak ve sorgu yürütmeden hazırlık yapmak için kullanılır.
// Bu Builder üzerindeki terminal çağrılar ErrNoConnector döndürür.
//
// Örnek:
//
//	sql, bindings, err := fluentdb.New().Table("users").
//	    Select("id", "name").
//	    Where("status", "=", "active").
//	    ToSQL()
func New(opts ...Option) *Builder {
	// Sadece seçenekleri çıkarmak için geçici Connector oluştur
	c := &Connector{}
	applyOptions(c, opts)

	b := newBuilder(c)
	b.conn = nil
	return b
}

// Table, bağlantısız yeni bir Builder oluşturup tablo adını ayarlamak için kısayoldur.
//
// Örnek:
//
//	sql, bindings, err := fluentdb.Table("users").
//	    Where("status", "=", "active").
//	    ToSQL()
func Table(name string) *Builder {
	return New().Table(name)
}
