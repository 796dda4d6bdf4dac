package fluentdb_test

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentdb "github.com/biyonik/go-fluent-db"
)

type status string

func TestNewBinding(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	n := 42

	tests := []struct {
		name  string
		in    any
		value any
		typ   fluentdb.BindingType
	}{
		{"int", 7, int64(7), fluentdb.BindInteger},
		{"int8", int8(-3), int64(-3), fluentdb.BindInteger},
		{"uint32", uint32(9), int64(9), fluentdb.BindInteger},
		{"pointer", &n, int64(42), fluentdb.BindInteger},
		{"string", "ann", "ann", fluentdb.BindText},
		{"named string type", status("active"), "active", fluentdb.BindText},
		{"float", 1.5, 1.5, fluentdb.BindText},
		{"bool", true, true, fluentdb.BindText},
		{"bytes", []byte("raw"), []byte("raw"), fluentdb.BindText},
		{"time", now, now, fluentdb.BindText},
		{"valuer", sql.NullString{String: "x", Valid: true}, sql.NullString{String: "x", Valid: true}, fluentdb.BindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := fluentdb.NewBinding(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.value, b.Value)
			assert.Equal(t, tt.typ, b.Type)
			assert.Empty(t, b.Name)
		})
	}
}

func TestNewBinding_Rejects(t *testing.T) {
	var nilPtr *int

	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"nil pointer", nilPtr},
		{"slice", []int{1, 2}},
		{"map", map[string]any{"a": 1}},
		{"struct", struct{ A int }{1}},
		{"func", func() {}},
		{"overflow", uint64(math.MaxUint64)},
		{"unnamed", fluentdb.Named("", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fluentdb.NewBinding(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, fluentdb.ErrBindingType)

			var be *fluentdb.BindingError
			assert.ErrorAs(t, err, &be)
		})
	}
}

func TestNamedBinding(t *testing.T) {
	b, err := fluentdb.NewBinding(fluentdb.Named("id", 5))
	require.NoError(t, err)
	assert.Equal(t, "id", b.Name)
	assert.Equal(t, int64(5), b.Value)
	assert.Equal(t, sql.Named("id", int64(5)), b.Arg())

	plain := fluentdb.MustBind("x")[0]
	assert.Equal(t, "x", plain.Arg())
}

func TestMustBindPanics(t *testing.T) {
	assert.Panics(t, func() { fluentdb.MustBind(1, nil) })
}

func TestBindingTypeString(t *testing.T) {
	assert.Equal(t, "integer", fluentdb.BindInteger.String())
	assert.Equal(t, "text", fluentdb.BindText.String())
	assert.Equal(t, "unknown", fluentdb.BindingType(9).String())
}
