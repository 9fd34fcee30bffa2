package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSourceGeneratesDistinctPrompts(t *testing.T) {
	s := NewLocalSource()
	seen := make(map[string]struct{})

	first, err := s.GeneratePrompts(context.Background(), 10, seen, "")
	require.NoError(t, err)
	require.Len(t, first, 10)

	second, err := s.GeneratePrompts(context.Background(), 10, seen, "")
	require.NoError(t, err)

	all := map[string]bool{}
	for _, text := range append(first, second...) {
		assert.False(t, all[text], "duplicate prompt %q", text)
		all[text] = true
		_, marked := seen[text]
		assert.True(t, marked, "prompt %q not recorded as seen", text)
	}
}

func TestLocalSourceSaltsBeyondPoolSize(t *testing.T) {
	s := NewLocalSource()
	seen := make(map[string]struct{})

	// More prompts than template x fillword combinations exist.
	want := len(promptTemplates)*len(fillWords) + 50
	out, err := s.GeneratePrompts(context.Background(), want, seen, "")
	require.NoError(t, err)
	assert.Len(t, out, want)
	assert.Len(t, seen, want)
}

func TestGenerateLastLashModes(t *testing.T) {
	s := NewLocalSource()
	modes := map[string]bool{}

	for i := 0; i < 200; i++ {
		finale, err := s.GenerateLastLash(context.Background(), map[string]struct{}{}, "")
		require.NoError(t, err)
		modes[finale.Mode] = true
		assert.NotEmpty(t, finale.Prompt)
		assert.NotEmpty(t, finale.Instructions)

		switch finale.Mode {
		case ModeFlashback:
			assert.Empty(t, finale.Letters)
		case ModeWordLash:
			assert.Len(t, finale.Letters, 3)
		case ModeAcroLash:
			assert.GreaterOrEqual(t, len(finale.Letters), 3)
			assert.LessOrEqual(t, len(finale.Letters), 5)
		default:
			t.Fatalf("unknown mode %q", finale.Mode)
		}
	}

	for _, mode := range []string{ModeFlashback, ModeWordLash, ModeAcroLash} {
		assert.True(t, modes[mode], "mode %s never drawn", mode)
	}
}

func TestRandomLettersNoConsecutiveRepeats(t *testing.T) {
	for i := 0; i < 100; i++ {
		letters := randomLetters(5)
		require.Len(t, letters, 5)
		for j, letter := range letters {
			assert.Len(t, letter, 1)
			assert.GreaterOrEqual(t, letter[0], byte('A'))
			assert.LessOrEqual(t, letter[0], byte('Z'))
			if j > 0 {
				assert.NotEqual(t, letters[j-1], letter)
			}
		}
	}
}

func TestFallbackTopsUpShortBatches(t *testing.T) {
	log := discardLogger()
	f := NewFallback(shortSource{}, log)
	seen := make(map[string]struct{})

	out, err := f.GeneratePrompts(context.Background(), 6, seen, "")
	require.NoError(t, err)
	assert.Len(t, out, 6)
	assert.Equal(t, "remote prompt", out[0])
}

func TestFallbackWithoutPrimaryIsLocal(t *testing.T) {
	f := NewFallback(nil, discardLogger())
	assert.False(t, f.HasPrimary())

	out, err := f.GeneratePrompts(context.Background(), 4, map[string]struct{}{}, "")
	require.NoError(t, err)
	assert.Len(t, out, 4)

	f.SetPrimary(shortSource{})
	assert.True(t, f.HasPrimary())
}
