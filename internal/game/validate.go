package game

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// validateLastLashAnswer checks a finale answer against the mode's shape.
// The result is a warning attached to the stored answer, never a rejection.
func validateLastLashAnswer(mode LastLashMode, letters []string, answer string) string {
	switch mode {
	case ModeWordLash:
		return checkInitials(letters, answer, false)
	case ModeAcroLash:
		return checkInitials(letters, answer, true)
	}
	return ""
}

func checkInitials(letters []string, answer string, exact bool) string {
	words := strings.Fields(answer)
	if exact && len(words) != len(letters) {
		return fmt.Sprintf("expected exactly %d words, got %d", len(letters), len(words))
	}
	if len(words) < len(letters) {
		return fmt.Sprintf("expected at least %d words, got %d", len(letters), len(words))
	}
	for i, letter := range letters {
		first := []rune(words[i])[0]
		want := []rune(letter)[0]
		if unicode.ToUpper(first) != unicode.ToUpper(want) {
			return fmt.Sprintf("word %d should start with %s", i+1, letter)
		}
	}
	return ""
}

// cleanAnswer trims, clips to the length limit, and substitutes the sentinel
// for empty submissions. Limits count runes so a clip never splits a
// multi-byte character.
func cleanAnswer(text string) string {
	text = strings.TrimSpace(text)
	text = clipRunes(text, MaxAnswerLength)
	if text == "" {
		return NoAnswer
	}
	return text
}

// clipRunes truncates s to at most limit runes.
func clipRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
