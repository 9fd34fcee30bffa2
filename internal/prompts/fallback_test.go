package prompts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// shortSource returns one prompt then reports a shortfall, the way the remote
// generator does when the model under-delivers.
type shortSource struct{}

func (shortSource) GeneratePrompts(_ context.Context, count int, seen map[string]struct{}, _ string) ([]string, error) {
	seen["remote prompt"] = struct{}{}
	return []string{"remote prompt"}, fmt.Errorf("returned 1 usable prompts, wanted %d", count)
}

func (shortSource) GenerateLastLash(_ context.Context, _ map[string]struct{}, _ string) (Finale, error) {
	return Finale{}, fmt.Errorf("remote finale unavailable")
}
