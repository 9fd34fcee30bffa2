package game

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanAnswer(t *testing.T) {
	assert.Equal(t, "hello", cleanAnswer("  hello  "))
	assert.Equal(t, NoAnswer, cleanAnswer(""))
	assert.Equal(t, NoAnswer, cleanAnswer("   \t  "))

	long := strings.Repeat("x", MaxAnswerLength+40)
	assert.Len(t, cleanAnswer(long), MaxAnswerLength)
}

func TestCleanAnswerClipsRunesNotBytes(t *testing.T) {
	long := strings.Repeat("ü", MaxAnswerLength+10)
	got := cleanAnswer(long)
	assert.Equal(t, MaxAnswerLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))

	// An answer at the limit in runes survives even though it is over the
	// limit in bytes.
	exact := strings.Repeat("é", MaxAnswerLength)
	assert.Equal(t, exact, cleanAnswer(exact))
}

func TestValidateWordLash(t *testing.T) {
	letters := []string{"B", "T", "S"}

	assert.Empty(t, validateLastLashAnswer(ModeWordLash, letters, "big tasty sandwich"))
	assert.Empty(t, validateLastLashAnswer(ModeWordLash, letters, "Big Tasty Sandwich with extras"),
		"extra words beyond the letters are allowed")

	warn := validateLastLashAnswer(ModeWordLash, letters, "big tasty")
	assert.Contains(t, warn, "at least 3 words")

	warn = validateLastLashAnswer(ModeWordLash, letters, "big nasty sandwich")
	assert.Contains(t, warn, "word 2")
}

func TestValidateAcroLash(t *testing.T) {
	letters := []string{"F", "B", "I"}

	assert.Empty(t, validateLastLashAnswer(ModeAcroLash, letters, "fancy bread inspector"))

	warn := validateLastLashAnswer(ModeAcroLash, letters, "fancy bread inspector deluxe")
	assert.Contains(t, warn, "exactly 3 words")

	warn = validateLastLashAnswer(ModeAcroLash, letters, "fancy bread")
	assert.Contains(t, warn, "exactly 3 words")
}

func TestValidateFlashbackNeverWarns(t *testing.T) {
	assert.Empty(t, validateLastLashAnswer(ModeFlashback, nil, "anything at all"))
	assert.Empty(t, validateLastLashAnswer(ModeFlashback, nil, ""))
}
