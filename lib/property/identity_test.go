package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIdentity(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		city     string
		address  string
		expected string
	}{
		{"example listing", "New York", "New York", "123 Main St", "NEW-NEWY-123"},
		{"city whitespace removed", "New York", "New York City", "12 Main St", "NEW-NEWY-12"},
		{"short parts", "NY", "LA", "9", "NY-LA-9"},
		{"digits collected across address", "California", "San Jose", "Apt 4, 1200 Elm Rd", "CAL-SANJ-41200"},
		{"no digits", "Texas", "Austin", "Main Street", "TEX-AUST-"},
		{"state cut then trimmed", "NY State", "Albany", "1 State St", "NY-ALBA-1"},
		{"leading state whitespace counts", "  New York", "New York", "1 Main St", "N-NEWY-1"},
		{"state whitespace only", "   ", "Austin", "5", "-AUST-5"},
		{"empty input", "", "", "", "--"},
		{"multibyte runes", "Zürich", "Genève  Ville", "1", "ZÜR-GENÈ-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildIdentity(tt.state, tt.city, tt.address))
		})
	}
}

func TestBuildIdentityIsDeterministic(t *testing.T) {
	inputs := [][3]string{
		{"New York", "New York", "123 Main St"},
		{"new york", "new   york", "123 main st"},
		{"Washington", "Seattle", "400 Broad St #12"},
	}
	for _, in := range inputs {
		first := BuildIdentity(in[0], in[1], in[2])
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, BuildIdentity(in[0], in[1], in[2]))
		}
	}

	// same triple modulo case and city whitespace collides
	assert.Equal(t,
		BuildIdentity("New York", "New York City", "12 Main St"),
		BuildIdentity("new york", "NewYork", "12 main st"),
	)
}
