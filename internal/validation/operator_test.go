package validation_test

import (
	"testing"

	"github.com/biyonik/go-fluent-db/internal/validation"
)

func TestValidateOperator(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		want     string
		wantErr  bool
	}{
		{"equals", "=", "=", false},
		{"not equals", "!=", "!=", false},
		{"not equals alt", "<>", "<>", false},
		{"greater or equal", ">=", ">=", false},
		{"null safe equals", "<=>", "<=>", false},
		{"like lowercase", "like", "LIKE", false},
		{"not like spaced", "not   like", "NOT LIKE", false},
		{"equals with space", " = ", "=", false},

		{"empty", "", "", true},
		{"literal operator", "IS NULL", "", true},
		{"set operator", "IN", "", true},
		{"sql injection", "= OR 1=1", "", true},
		{"semicolon", ";", "", true},
		{"comment", "--", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validation.ValidateOperator(tt.operator)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOperator(%q) error = %v, wantErr %v", tt.operator, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ValidateOperator(%q) = %q, want %q", tt.operator, got, tt.want)
			}
		})
	}
}

func TestValidateLiteralOperator(t *testing.T) {
	tests := []struct {
		operator string
		want     string
		wantErr  bool
	}{
		{"IS NULL", "IS NULL", false},
		{"is not null", "IS NOT NULL", false},
		{"=", "", true},
		{"IS NULL; DROP TABLE users", "", true},
	}

	for _, tt := range tests {
		got, err := validation.ValidateLiteralOperator(tt.operator)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLiteralOperator(%q) error = %v, wantErr %v", tt.operator, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateLiteralOperator(%q) = %q, want %q", tt.operator, got, tt.want)
		}
	}

	if !validation.IsLiteralOperator("is null") {
		t.Error("IsLiteralOperator(is null) = false, want true")
	}
}

func TestValidateDirection(t *testing.T) {
	tests := []struct {
		dir     string
		want    string
		wantErr bool
	}{
		{"", "ASC", false},
		{"asc", "ASC", false},
		{"Desc", "DESC", false},
		{"DESC; DROP", "", true},
		{"up", "", true},
	}

	for _, tt := range tests {
		got, err := validation.ValidateDirection(tt.dir)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDirection(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateDirection(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestOperatorError(t *testing.T) {
	err := &validation.OperatorError{Operator: "DROP", Reason: "operator not in allowed list"}
	expected := "fluentdb: invalid operator 'DROP': operator not in allowed list"
	if err.Error() != expected {
		t.Errorf("OperatorError.Error() = %q, want %q", err.Error(), expected)
	}
}
