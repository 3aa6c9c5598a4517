package catalog

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandOf_partition(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{10, "10-20"},
		{19.99, "10-20"},
		{20, "20-30"},
		{29.5, "20-30"},
		{30, "30-40"},
		{39.99, "30-40"},
		{40, "40-up"},
		{500, "40-up"},
	}
	for _, tt := range tests {
		band, ok := BandOf(tt.price)
		require.True(t, ok, "price %v", tt.price)
		assert.Equal(t, tt.want, band.Name, "price %v", tt.price)
	}

	for price := 10.0; price < 100; price += 0.25 {
		matches := 0
		for _, b := range Bands {
			if b.Contains(price) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "price %v", price)
	}

	_, ok := BandOf(5)
	assert.False(t, ok)
	assert.True(t, AnyPrice.Contains(5))
}

func TestParsePriceBand(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		exact bool
	}{
		{"", "all", false},
		{"All", "all", false},
		{"10-20", "10-20", false},
		{"20-30", "20-30", false},
		{" 30-40 ", "30-40", false},
		{"40-up", "40-up", false},
		{"40+", "40-up", false},
		{"40 ", "40-up", false},
		{" 40+ ", "40-up", false},
		{"40", "40", true},
		{"30", "30", true},
		{"30$", "30", true},
		{"27.5", "27.5", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := ParsePriceBand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.String())
			assert.Equal(t, tt.exact, b.Exact)
		})
	}

	for _, bad := range []string{"cheap", "-5", "10-", "NaN"} {
		_, err := ParsePriceBand(bad)
		assert.True(t, errors.Is(err, ErrInvalidCriteria), bad)
	}
}

func TestParseCriteria(t *testing.T) {
	c, err := ParseCriteria(" Spanish ", "all", "20-30")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", c.Language)
	assert.Equal(t, "", c.Level)
	assert.Equal(t, Band20_30, c.Price)

	c, err = ParseCriteria("all", "B1 Intermediate", "")
	require.NoError(t, err)
	assert.Equal(t, "", c.Language)
	assert.Equal(t, "B1 Intermediate", c.Level)
	assert.True(t, c.Price.IsAll())

	_, err = ParseCriteria("", "B7 Wizard", "")
	assert.True(t, errors.Is(err, ErrInvalidCriteria))
}

func TestCriteria_Equal(t *testing.T) {
	a := Criteria{Language: "all", Price: AnyPrice}
	b := Criteria{}
	assert.True(t, a.Equal(b))
	assert.True(t, Criteria{Language: "french"}.Equal(Criteria{Language: "French"}))
	assert.False(t, Criteria{Price: Band10_20}.Equal(Criteria{Price: Band20_30}))
}
