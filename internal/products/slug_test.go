package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugifyJoinsPartsWithHyphens(t *testing.T) {
	cases := []struct {
		parts []string
		want  string
	}{
		{[]string{"Trail Runner", "42", "Blue"}, "trail-runner-42-blue"},
		{[]string{"Kids' Hoodie", "M", ""}, "kids-hoodie-m"},
		{[]string{"Denim  Jacket", "L", "Stone Wash"}, "denim-jacket-l-stone-wash"},
		{[]string{"Tee", "", "Black/White"}, "tee-black-white"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.parts...))
	}
}

func TestSlugifyEmptyInputFallsBack(t *testing.T) {
	slug := slugify("", "   ", "!!!")
	require.Len(t, slug, 8)
	assert.NotEqual(t, slugify("", "   ", "!!!"), slug)
}

func TestNewBarcodeIsTwelveDigits(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := newBarcode()
		require.Len(t, code, 12)
		for _, r := range code {
			assert.GreaterOrEqual(t, r, '0')
			assert.LessOrEqual(t, r, '9')
		}
		seen[code] = true
	}
	// Collisions over 50 draws would point at a broken derivation.
	assert.Greater(t, len(seen), 1)
}
