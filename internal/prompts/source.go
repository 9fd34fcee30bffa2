// Package prompts produces the question material for a game: batches of
// distinct prompt strings for regular rounds and a single finale descriptor.
// The engine consumes the Source interface only, so the remote generator's
// failure modes never leak past the fallback wrapper.
package prompts

import "context"

// Finale modes. Mirrored by the engine's LastLashMode values.
const (
	ModeFlashback = "FLASHBACK"
	ModeWordLash  = "WORD_LASH"
	ModeAcroLash  = "ACRO_LASH"
)

// Finale describes the last-round prompt.
type Finale struct {
	Prompt       string
	Mode         string
	Letters      []string // WORD_LASH: 3, ACRO_LASH: 3-5, otherwise nil
	Instructions string
}

// Source produces prompt material. Implementations must be safe for
// concurrent use, return exactly count strings absent from seen, and add
// every returned string to seen.
type Source interface {
	GeneratePrompts(ctx context.Context, count int, seen map[string]struct{}, theme string) ([]string, error)
	GenerateLastLash(ctx context.Context, seen map[string]struct{}, theme string) (Finale, error)
}
