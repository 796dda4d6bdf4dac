package validation

import "strings"

// allowedOperators, WHERE / HAVING / JOIN ON cümlelerinde kabul edilen
// karşılaştırma operatörleridir. Bu operatörler her zaman bir değer (placeholder)
// veya karşı kolon bekler.
var allowedOperators = map[string]bool{
	"=":        true,
	"!=":       true,
	"<>":       true,
	"<":        true,
	">":        true,
	"<=":       true,
	">=":       true,
	"<=>":      true,
	"LIKE":     true,
	"NOT LIKE": true,
}

// literalOperators, değer almayan ve SQL metnine doğrudan yazılan operatörlerdir.
var literalOperators = map[string]bool{
	"IS NULL":     true,
	"IS NOT NULL": true,
}

// NormalizeOperator, bir operatörü büyük harfe çevirip fazla boşlukları temizler.
// "is  not   null" → "IS NOT NULL"
func NormalizeOperator(op string) string {
	return strings.ToUpper(strings.Join(strings.Fields(op), " "))
}

// ValidateOperator, değer alan bir operatörün izin verilen listede olup olmadığını kontrol eder.
// Başarılıysa normalize edilmiş operatörü döndürür.
func ValidateOperator(op string) (string, error) {
	normalized := NormalizeOperator(op)
	if !allowedOperators[normalized] {
		return "", &OperatorError{
			Operator: op,
			Reason:   "operator not in allowed list",
		}
	}
	return normalized, nil
}

// ValidateLiteralOperator, değer almadan yazılan operatörleri (IS NULL, IS NOT NULL) doğrular.
func ValidateLiteralOperator(op string) (string, error) {
	normalized := NormalizeOperator(op)
	if !literalOperators[normalized] {
		return "", &OperatorError{
			Operator: op,
			Reason:   "operator requires a value",
		}
	}
	return normalized, nil
}

// IsLiteralOperator, operatörün değer almadan yazılan bir operatör olup olmadığını döndürür.
func IsLiteralOperator(op string) bool {
	return literalOperators[NormalizeOperator(op)]
}

// ValidateDirection, ORDER BY yönünü doğrular ve normalize eder. Boş yön ASC kabul edilir.
func ValidateDirection(dir string) (string, error) {
	normalized := NormalizeOperator(dir)
	switch normalized {
	case "":
		return "ASC", nil
	case "ASC", "DESC":
		return normalized, nil
	default:
		return "", &OperatorError{
			Operator: dir,
			Reason:   "order direction must be ASC or DESC",
		}
	}
}

// OperatorError, operatör doğrulama hatasını temsil eder.
type OperatorError struct {
	Operator string
	Reason   string
}

// Error, error arayüzünü uygular.
func (e *OperatorError) Error() string {
	return "fluentdb: invalid operator '" + e.Operator + "': " + e.Reason
}
