package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_LengthAndDigits(t *testing.T) {
	for _, n := range []int{1, 4, 6, 8} {
		c := Generate(n)
		assert.Len(t, c, n)
		assert.True(t, IsCanonical(c, n), c)
	}
}

func TestGenerate_DefaultLength(t *testing.T) {
	assert.Len(t, Generate(0), DefaultLength)
}

func TestGenerate_CoversAllDigits(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 200; i++ {
		for _, r := range Generate(DefaultLength) {
			seen[r] = true
		}
	}
	// 1200 draws over 10 symbols; a missing digit means the generator is broken.
	assert.Len(t, seen, 10)
}

func TestIsCanonical(t *testing.T) {
	cases := map[string]bool{
		"004213":  true,
		"482913":  true,
		"12a45":   false,
		"1234":    false,
		"1234567": false,
		"12 456":  false,
		"١٢٣٤٥٦":  false, // Arabic-Indic digits are not ASCII
		"":        false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsCanonical(in, DefaultLength), in)
	}
}
