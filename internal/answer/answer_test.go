package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, world!", "hello world"},
		{"  I love coffee.  ", "i love coffee"},
		{"It's 5 o'clock", "its 5 oclock"},
		{"snake_case stays", "snake_case stays"},
		{"hello  world", "hello  world"},
		{"...", ""},
		{"Café", "caf"},
		{"hello\u0085world", "helloworld"},
		{"\ufeffhello\u00a0world\ufeff", "hello\u00a0world"},
		{"hello\u2028world", "hello\u2028world"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target string
		want   bool
	}{
		{"punctuation and case", "Hello, world!", "hello world", true},
		{"trailing period", "i love coffee", "I love coffee.", true},
		{"surrounding whitespace", "   i love coffee\t", "I love coffee.", true},
		{"internal whitespace run", "hello  world", "hello world", false},
		{"next line is not whitespace", "hello\u0085world", "helloworld", true},
		{"word order", "coffee love i", "I love coffee.", false},
		{"missing word", "i coffee", "I love coffee.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compare(tt.input, tt.target)
			assert.Equal(t, tt.want, res.Correct)
			assert.Equal(t, tt.input, res.Input)
			assert.Equal(t, tt.target, res.Target)
		})
	}
}

func TestSubmittable(t *testing.T) {
	assert.False(t, Submittable(""))
	assert.False(t, Submittable("   \t\n"))
	assert.True(t, Submittable(" a "))
	assert.False(t, Submittable("\ufeff\u3000"))
	// Punctuation-only input is submittable; it just never matches.
	assert.True(t, Submittable("?!"))
}
