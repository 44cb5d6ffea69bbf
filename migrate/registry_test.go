package migrate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func noop(tx *gorm.DB) error { return nil }

func def(version, name string) Definition {
	return Definition{Version: version, Name: name, Up: noop, Down: noop}
}

func TestNewRegistry_SortsAscending(t *testing.T) {
	reg, err := NewRegistry(
		def("1721395868456", "b"),
		def("999", "c"),
		def("1718013016123", "a"),
	)
	require.NoError(t, err)

	defs := reg.Definitions()
	require.Len(t, defs, 3)

	// "999" is numerically smallest even though it sorts last
	// lexicographically.
	assert.Equal(t, "999", defs[0].Version)
	assert.Equal(t, "1718013016123", defs[1].Version)
	assert.Equal(t, "1721395868456", defs[2].Version)
}

func TestNewRegistry_RejectsDuplicateVersion(t *testing.T) {
	_, err := NewRegistry(def("100", "a"), def("100", "b"))

	var ordErr *OrderingError
	require.ErrorAs(t, err, &ordErr)
	assert.Equal(t, "100", ordErr.Version)
}

func TestNewRegistry_RejectsDuplicateName(t *testing.T) {
	_, err := NewRegistry(def("100", "same"), def("200", "same"))

	var ordErr *OrderingError
	require.ErrorAs(t, err, &ordErr)
	assert.Equal(t, "200", ordErr.Version)
}

func TestNewRegistry_RejectsBadVersions(t *testing.T) {
	cases := []string{"", "v1", "2024-06-10", "10a", " 100"}

	for _, version := range cases {
		_, err := NewRegistry(def(version, "x"))

		var ordErr *OrderingError
		assert.ErrorAs(t, err, &ordErr, "version %q", version)
	}
}

func TestNewRegistry_RejectsMissingProcedures(t *testing.T) {
	_, err := NewRegistry(Definition{Version: "100", Name: "no-down", Up: noop})
	require.Error(t, err)

	_, err = NewRegistry(Definition{Version: "100", Name: "no-up", Down: noop})
	require.Error(t, err)

	_, err = NewRegistry(Definition{Version: "100", Up: noop, Down: noop})
	require.Error(t, err)

	var ordErr *OrderingError
	assert.True(t, errors.As(err, &ordErr))
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := NewRegistry(def("100", "a"), def("200", "b"))
	require.NoError(t, err)

	d, ok := reg.Lookup("200")
	require.True(t, ok)
	assert.Equal(t, "b", d.Name)

	_, ok = reg.Lookup("300")
	assert.False(t, ok)
}

func TestLessVersion(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1", "2", true},
		{"2", "1", false},
		{"999", "1000", true},
		{"1718013016123", "1721395868456", true},
		{"100", "100", false},
	}

	for _, tt := range cases {
		assert.Equal(t, tt.want, lessVersion(tt.a, tt.b), "lessVersion(%q, %q)", tt.a, tt.b)
	}
}
