// Package validation, SQL sorgularında kullanılan tablolar, kolonlar ve alias isimlerini
// güvenli bir şekilde doğrulamak için dahili yardımcı fonksiyonlar sağlar. Grammar
// katmanı bir identifier'ı tırnaklamadan önce buradan geçirir; böylece kullanıcıdan
// gelen isimler hiçbir zaman SQL metnine doğrulanmadan yazılmaz.
//
// Tüm fonksiyonlar, doğrulama başarısız olduğunda detaylı bir `IdentifierError` döndürür.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
package validation

import (
	"regexp"
	"strings"
)

// MaxIdentifierLength, tek bir identifier için izin verilen en uzun değerdir.
const MaxIdentifierLength = 128

// identifierRegex, SQL tabloları ve kolonları için geçerli identifier'ları doğrular.
// Noktalar (.) yalnızca bir kez, table.column referansı için kullanılabilir.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// simpleRegex, nokta içermeyen tekil isimleri (tablo adı, alias) doğrular.
var simpleRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// aliasRegex, "name as alias" veya "name alias" formatlarını eşler.
var aliasRegex = regexp.MustCompile(`(?i)^([a-zA-Z_][a-zA-Z0-9_.]*)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)$`)

// ValidateIdentifier, verilen identifier'ın geçerli bir SQL identifier olup olmadığını kontrol eder.
// "*" ve "table.*" burada kabul edilmez; yıldız ifadeleri Grammar tarafından ayrıca ele alınır.
func ValidateIdentifier(id string) error {
	if id == "" {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier cannot be empty",
		}
	}

	if len(id) > MaxIdentifierLength {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier exceeds maximum length of 128 characters",
		}
	}

	if !identifierRegex.MatchString(id) {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier contains invalid characters; only letters, numbers, underscores, and dots are allowed",
		}
	}

	return nil
}

// ValidateName, nokta içermeyen tekil bir ismi (tablo, alias, savepoint) doğrular.
func ValidateName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if !simpleRegex.MatchString(name) {
		return &IdentifierError{
			Identifier: name,
			Reason:     "name cannot contain a dot",
		}
	}
	return nil
}

// SplitAlias, "name", "name alias" ve "name as alias" formatlarını ayrıştırır.
// Döndürür: isim, alias (varsa) ve hata. İsim table.column biçiminde olabilir.
func SplitAlias(expr string) (name, alias string, err error) {
	if expr == "" {
		return "", "", &IdentifierError{
			Identifier: expr,
			Reason:     "identifier cannot be empty",
		}
	}

	if matches := aliasRegex.FindStringSubmatch(expr); matches != nil {
		name, alias = matches[1], matches[2]
		if err := ValidateIdentifier(name); err != nil {
			return "", "", err
		}
		if err := ValidateName(alias); err != nil {
			return "", "", &IdentifierError{
				Identifier: alias,
				Reason:     "invalid alias: " + err.Error(),
			}
		}
		return name, alias, nil
	}

	if err := ValidateIdentifier(expr); err != nil {
		return "", "", err
	}
	return expr, "", nil
}

// ValidateTableWithAlias, bir tablo referansını (alias ile birlikte olabilir) doğrular.
// Tablo adı nokta içerebilir (schema.table).
func ValidateTableWithAlias(table string) (name, alias string, err error) {
	if strings.TrimSpace(table) == "" {
		return "", "", &IdentifierError{
			Identifier: table,
			Reason:     "table name cannot be empty",
		}
	}
	return SplitAlias(table)
}

// SplitTableColumn, "table.column" formatındaki referansı parçalar.
// Döndürür: tablo (yoksa ""), kolon ve hata.
func SplitTableColumn(ref string) (table, column string, err error) {
	if err := ValidateIdentifier(ref); err != nil {
		return "", "", err
	}
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:], nil
	}
	return "", ref, nil
}

// IdentifierError, identifier doğrulama hatalarını temsil eder.
type IdentifierError struct {
	Identifier string
	Reason     string
}

// Error, error arayüzünü uygular.
func (e *IdentifierError) Error() string {
	if e.Identifier == "" {
		return "fluentdb: invalid identifier: " + e.Reason
	}
	return "fluentdb: invalid identifier '" + e.Identifier + "': " + e.Reason
}
