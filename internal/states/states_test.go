package states

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_FixedTable(t *testing.T) {
	all := All()
	require.Len(t, all, 51)
	assert.Equal(t, Count, len(all))
	assert.Equal(t, State{Code: "AL", Name: "Alabama"}, all[0])
	assert.Equal(t, State{Code: "DC", Name: "Washington D.C."}, all[7])
	assert.Equal(t, State{Code: "WY", Name: "Wyoming"}, all[50])

	seenCodes := map[string]bool{}
	seenNames := map[string]bool{}
	for _, s := range all {
		assert.False(t, seenCodes[s.Code], "duplicate code %s", s.Code)
		assert.False(t, seenNames[s.Name], "duplicate name %s", s.Name)
		seenCodes[s.Code] = true
		seenNames[s.Name] = true
	}

	// Mutating the returned slice must not leak into the table.
	all[0].Name = "Nowhere"
	n, err := Name("AL")
	require.NoError(t, err)
	assert.Equal(t, "Alabama", n)
}

func TestName(t *testing.T) {
	n, err := Name("CA")
	require.NoError(t, err)
	assert.Equal(t, "California", n)

	_, err = Name("ZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCode))
	var ice *InvalidCodeError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "ZZ", ice.Code)

	// Codes are matched exactly.
	assert.False(t, Valid("ca"))
	assert.True(t, Valid("CA"))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"TX", State{"TX", "Texas"}},
		{"tx", State{"TX", "Texas"}},
		{"  New York ", State{"NY", "New York"}},
		{"washington d.c.", State{"DC", "Washington D.C."}},
		{"WASHINGTON", State{"WA", "Washington"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Resolve("ZZ")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = Resolve("Atlantis")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestTitleName(t *testing.T) {
	assert.Equal(t, "New York", TitleName("new york"))
	assert.Equal(t, "North Carolina", TitleName("  NORTH carolina"))
}
