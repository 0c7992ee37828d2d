package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Don't Stop Me Now!", []string{"dont", "stop", "me", "now"}},
		{"  Beyoncé – Halo  ", []string{"beyonce", "halo"}},
		{"AC/DC 1979", []string{"ac", "dc", "1979"}},
		{"", nil},
		{"!!!", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVocabularyCorrect(t *testing.T) {
	v := NewVocabulary([]string{
		"Bohemian Rhapsody", "Queen", "rock",
		"Love Story", "Love Me Do", "Live Forever",
		"cat", "car", "Beyoncé", "1999",
	})

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"known words unchanged", "Bohemian Rhapsody", "bohemian rhapsody"},
		{"one typo in a long word", "bohemian rapsody", "bohemian rhapsody"},
		{"two typos in a long word", "bohemain rapsodi", "bohemian rhapsody"},
		{"short word needs one edit", "quen", "queen"},
		{"frequency breaks ties", "lave", "love"},
		{"lexicographic breaks remaining ties", "caz", "car"},
		{"accents folded", "BEYONCE", "beyonce"},
		{"too short to correct", "xo", "xo"},
		{"numbers kept", "1998", "1998"},
		{"no close word", "zzzzzz", "zzzzzz"},
		{"punctuation dropped", "  Queen!! ", "queen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Correct(tt.query))
		})
	}
}

func TestVocabularyEmpty(t *testing.T) {
	v := NewVocabulary(nil)
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, "anything", v.Correct("anything"))
}

func TestHashedEncoder(t *testing.T) {
	enc := NewHashedEncoder(64)
	enc.Fit([]string{"shape of you", "blinding lights", "shape shifter"})
	ctx := context.Background()

	a, err := enc.Encode(ctx, "Shape of You")
	require.NoError(t, err)
	b, err := enc.Encode(ctx, "shape of you")
	require.NoError(t, err)
	assert.Equal(t, a, b, "encoding is case-insensitive and deterministic")
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, float64(dot(a, a)), 1e-5)

	zero, err := enc.Encode(ctx, "")
	require.NoError(t, err)
	assert.True(t, isZero(zero))

	// A misspelling shares more features with its source than with an unrelated title.
	typo, _ := enc.Encode(ctx, "blindng lights")
	right, _ := enc.Encode(ctx, "blinding lights")
	other, _ := enc.Encode(ctx, "shape of you")
	assert.Greater(t, dot(typo, right), dot(typo, other))

	assert.Equal(t, 384, NewHashedEncoder(0).Dim())
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, v, 1e-6)

	z := []float32{0, 0}
	Normalize(z)
	assert.Equal(t, []float32{0, 0}, z)
}
