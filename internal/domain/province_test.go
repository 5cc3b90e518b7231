package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvince(t *testing.T) {
	tests := []struct {
		input    string
		expected Province
	}{
		{"ON", Ontario},
		{"on", Ontario},
		{" qc ", Quebec},
		{"Ab", Alberta},
	}

	for _, tt := range tests {
		p, err := ParseProvince(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, p)
	}
}

func TestParseProvince_Unknown(t *testing.T) {
	for _, input := range []string{"", "ZZ", "Ontario"} {
		_, err := ParseProvince(input)
		require.Error(t, err, "input %q", input)

		var unavailable *DataUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	}
}

func TestProvince_Name(t *testing.T) {
	assert.Equal(t, "Newfoundland and Labrador", Newfoundland.Name())
	assert.Equal(t, "XX", Province("XX").Name())
}

func TestAllProvinces(t *testing.T) {
	provinces := AllProvinces()
	assert.Len(t, provinces, 13)

	seen := map[Province]bool{}
	for _, p := range provinces {
		assert.False(t, seen[p], "duplicate province %s", p)
		seen[p] = true
		assert.NotEmpty(t, p.Name())
	}
}
